package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS products (
	  id CHAR(36) NOT NULL,
	  sku VARCHAR(64) NOT NULL,
	  slug VARCHAR(160) NOT NULL,
	  title VARCHAR(255) NOT NULL,
	  description TEXT,
	  price_satang INT NOT NULL,
	  stock INT NOT NULL DEFAULT 0,
	  status VARCHAR(16) NOT NULL DEFAULT 'active',
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id),
	  CONSTRAINT ux_products_sku UNIQUE (sku),
	  CONSTRAINT ux_products_slug UNIQUE (slug)
	);

	CREATE TABLE IF NOT EXISTS coupons (
	  id CHAR(36) NOT NULL,
	  code VARCHAR(64) NOT NULL,
	  discount_type VARCHAR(16) NOT NULL,
	  discount_value DOUBLE PRECISION NOT NULL,
	  min_spend_satang INT NOT NULL DEFAULT 0,
	  active BOOLEAN NOT NULL DEFAULT TRUE,
	  expires_at TIMESTAMPTZ,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id),
	  CONSTRAINT ux_coupons_code UNIQUE (code)
	);

	CREATE TABLE IF NOT EXISTS customer_profiles (
	  id CHAR(36) NOT NULL,
	  full_name VARCHAR(255) NOT NULL,
	  phone VARCHAR(32) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id)
	);

	CREATE TABLE IF NOT EXISTS orders (
	  id CHAR(36) NOT NULL,
	  order_number VARCHAR(32) NOT NULL,
	  customer_id CHAR(36) NOT NULL,
	  customer_name VARCHAR(255) NOT NULL,
	  customer_phone VARCHAR(32) NOT NULL,
	  customer_email VARCHAR(255) NOT NULL,
	  subtotal_satang INT NOT NULL,
	  discount_satang INT NOT NULL DEFAULT 0,
	  shipping_satang INT NOT NULL DEFAULT 0,
	  grand_total_satang INT NOT NULL,
	  status VARCHAR(32) NOT NULL,
	  payment_status VARCHAR(32) NOT NULL,
	  payment_method VARCHAR(32) NOT NULL,
	  payment_merchant_id VARCHAR(64) NOT NULL,
	  payment_uri VARCHAR(512) NOT NULL,
	  coupon_code VARCHAR(64),
	  paid_at TIMESTAMPTZ,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id),
	  CONSTRAINT ux_orders_number UNIQUE (order_number)
	);
	CREATE INDEX IF NOT EXISTS ix_orders_customer ON orders (customer_id);
	CREATE INDEX IF NOT EXISTS ix_orders_status ON orders (status);

	CREATE TABLE IF NOT EXISTS order_items (
	  id CHAR(36) NOT NULL,
	  order_id CHAR(36) NOT NULL,
	  product_id CHAR(36) NOT NULL,
	  sku VARCHAR(64) NOT NULL,
	  title VARCHAR(255) NOT NULL,
	  unit_price_satang INT NOT NULL,
	  qty INT NOT NULL,
	  line_total_satang INT NOT NULL,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id),
	  CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS ix_order_items_order ON order_items (order_id);

	CREATE TABLE IF NOT EXISTS payment_slips (
	  id CHAR(36) NOT NULL,
	  order_id CHAR(36) NOT NULL,
	  file_key VARCHAR(512) NOT NULL,
	  file_url VARCHAR(512) NOT NULL,
	  status VARCHAR(32) NOT NULL,
	  note VARCHAR(500),
	  reviewer_id CHAR(36),
	  uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  reviewed_at TIMESTAMPTZ,
	  PRIMARY KEY (id),
	  CONSTRAINT fk_payment_slips_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS ix_payment_slips_order ON payment_slips (order_id);

	CREATE TABLE IF NOT EXISTS order_events (
	  id CHAR(36) NOT NULL,
	  order_id CHAR(36) NOT NULL,
	  actor_id CHAR(36) NOT NULL,
	  action VARCHAR(32) NOT NULL,
	  from_status VARCHAR(32) NOT NULL,
	  to_status VARCHAR(32) NOT NULL,
	  note VARCHAR(500),
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id),
	  CONSTRAINT fk_order_events_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS ix_order_events_order ON order_events (order_id);

	CREATE TABLE IF NOT EXISTS subscribers (
	  id CHAR(36) NOT NULL,
	  full_name VARCHAR(255) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  is_active BOOLEAN NOT NULL DEFAULT TRUE,
	  unsubscribed_at TIMESTAMPTZ,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id),
	  CONSTRAINT ux_subscribers_email UNIQUE (email)
	);

	CREATE TABLE IF NOT EXISTS broadcast_messages (
	  id CHAR(36) NOT NULL,
	  mode VARCHAR(16) NOT NULL,
	  subject VARCHAR(255) NOT NULL,
	  headline VARCHAR(255) NOT NULL DEFAULT '',
	  body TEXT NOT NULL,
	  sent_count INT NOT NULL DEFAULT 0,
	  failed_count INT NOT NULL DEFAULT 0,
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  completed_at TIMESTAMPTZ,
	  PRIMARY KEY (id)
	);

	CREATE TABLE IF NOT EXISTS broadcast_recipients (
	  id CHAR(36) NOT NULL,
	  broadcast_id CHAR(36) NOT NULL,
	  subscriber_id CHAR(36) NOT NULL,
	  email_snapshot VARCHAR(255) NOT NULL,
	  status VARCHAR(16) NOT NULL,
	  error_message VARCHAR(500),
	  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	  PRIMARY KEY (id),
	  CONSTRAINT fk_broadcast_recipients_broadcast FOREIGN KEY (broadcast_id) REFERENCES broadcast_messages(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS ix_broadcast_recipients_broadcast ON broadcast_recipients (broadcast_id);

	CREATE OR REPLACE FUNCTION reserve_stock(p_product_id CHAR(36), p_qty INT)
	RETURNS BOOLEAN AS $$
	DECLARE
	  updated INT;
	BEGIN
	  UPDATE products
	     SET stock = stock - p_qty, updated_at = now()
	   WHERE id = p_product_id AND stock >= p_qty;
	  GET DIAGNOSTICS updated = ROW_COUNT;
	  RETURN updated = 1;
	END;
	$$ LANGUAGE plpgsql;

	CREATE OR REPLACE FUNCTION release_stock(p_product_id CHAR(36), p_qty INT)
	RETURNS VOID AS $$
	BEGIN
	  UPDATE products
	     SET stock = stock + p_qty, updated_at = now()
	   WHERE id = p_product_id;
	END;
	$$ LANGUAGE plpgsql;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	log.Println("schema created")
}
