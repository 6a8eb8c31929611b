package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kittisap.shop/app/internal/config"
	apphttp "kittisap.shop/app/internal/http"
	"kittisap.shop/app/internal/http/handlers"
	adminhandlers "kittisap.shop/app/internal/http/handlers/admin"
	"kittisap.shop/app/internal/http/middleware"
	"kittisap.shop/app/internal/mailer"
	"kittisap.shop/app/internal/modules/broadcast"
	"kittisap.shop/app/internal/modules/catalog"
	"kittisap.shop/app/internal/modules/coupons"
	"kittisap.shop/app/internal/modules/customers"
	"kittisap.shop/app/internal/modules/inventory"
	"kittisap.shop/app/internal/modules/orders"
	"kittisap.shop/app/internal/modules/subscribers"
	"kittisap.shop/app/internal/storage"
)

func main() {
	// .env is optional; prod uses real env vars.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if cfg.DB.DSN == "" {
		log.Fatal("DB_DSN environment variable is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	store, err := storage.FromConfig(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("failed to init storage: %v", err)
	}
	files := store.Storage

	catalogRepo := catalog.NewRepo(db)
	couponSvc := coupons.NewService(db)
	stockGW := inventory.NewGateway(db, logger)
	profileRepo := customers.NewRepo(db)
	subscriberRepo := subscribers.NewRepo(db)

	orderRepo := orders.NewRepo(db)
	orderSvc := orders.NewService(orderRepo, catalogRepo, stockGW, couponSvc, profileRepo, files, cfg.PromptPay, logger)

	mail := mailer.NewSMTPMailer(cfg.SMTP)
	dispatcher := broadcast.NewDispatcher(cfg.Broadcast.Workers, mail, cfg.SMTP.FromAddr, cfg.SMTP.FromName, logger)
	broadcastRepo := broadcast.NewRepo(db)
	broadcastSvc := broadcast.NewService(broadcastRepo, subscriberRepo, dispatcher, logger)

	r := apphttp.NewRouter(apphttp.RouterDeps{
		Log:  logger,
		Auth: middleware.HeaderAuthenticator{},

		Products:    handlers.NewProductsHandler(catalogRepo),
		Orders:      handlers.NewOrdersHandler(orderSvc, orderRepo),
		Coupons:     handlers.NewCouponsHandler(couponSvc),
		Subscribers: handlers.NewSubscribersHandler(subscriberRepo),

		AdminOrders:    adminhandlers.NewOrdersHandler(orderSvc, orderRepo, files),
		AdminBroadcast: adminhandlers.NewBroadcastHandler(broadcastSvc, broadcastRepo),
	})

	logger.Info("listening", slog.String("addr", cfg.App.Addr))
	if err := r.Run(cfg.App.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
