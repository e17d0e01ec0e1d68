package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sweetshop/internal/domain"
)

type SweetRepo struct{ db *gorm.DB }

func NewSweetRepo(db *gorm.DB) *SweetRepo { return &SweetRepo{db: db} }

func (r *SweetRepo) Create(ctx context.Context, s *domain.Sweet) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SweetRepo) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	var s domain.Sweet
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}

func (r *SweetRepo) FindAll(ctx context.Context) ([]domain.Sweet, error) {
	var items []domain.Sweet
	err := r.db.WithContext(ctx).Find(&items).Error
	return items, err
}

func (r *SweetRepo) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	q := r.db.WithContext(ctx).Model(&domain.Sweet{})
	if s := strings.TrimSpace(f.Name); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.Category); s != "" {
		q = q.Where("category = ?", s)
	}
	var items []domain.Sweet
	err := q.Find(&items).Error
	return items, err
}

func (r *SweetRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*domain.Sweet, error) {
	res := r.db.WithContext(ctx).Model(&domain.Sweet{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	// MySQL 值未变化时 RowsAffected 也可能为 0，存在性以回查为准
	return r.FindByID(ctx, id)
}

func (r *SweetRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sweet{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementStock 单条条件 UPDATE，库存不会被并发扣成负数
func (r *SweetRepo) DecrementStock(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Sweet{}).
		Where("id = ? AND quantity > 0", id).
		Update("quantity", gorm.Expr("quantity - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SweetRepo) IncrementStock(ctx context.Context, id string, n int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Sweet{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
