package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// ByIDs returns products of any status. The order path uses this so it can
// distinguish a missing product from an inactive one.
func (r *Repo) ByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// ActiveByIDs returns only active products. Missing or inactive ids are
// simply absent from the map; callers must detect and fail.
func (r *Repo) ActiveByIDs(ctx context.Context, ids []string) (map[string]Product, error) {
	out := make(map[string]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []Product
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, StatusActive).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *Repo) BySlug(ctx context.Context, slug string) (Product, bool, error) {
	var p Product
	err := r.db.WithContext(ctx).
		First(&p, "slug = ? AND status = ?", slug, StatusActive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}
	return p, true, nil
}

func (r *Repo) ListActive(ctx context.Context) ([]Product, error) {
	var items []Product
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Order("updated_at DESC").
		Find(&items).Error
	return items, err
}
