package domain

import (
	"context"
	"time"
)

type Sweet struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null;index" json:"name"`
	Category  string    `gorm:"size:64;not null;index" json:"category"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Sweet) TableName() string { return "sweets" }

// SweetFilter 搜索条件：name 子串（不区分大小写），category 精确匹配
type SweetFilter struct {
	Name     string
	Category string
}

type SweetRepository interface {
	Create(ctx context.Context, s *Sweet) error
	FindByID(ctx context.Context, id string) (*Sweet, error)
	FindAll(ctx context.Context) ([]Sweet, error)
	Search(ctx context.Context, f SweetFilter) ([]Sweet, error)
	// UpdateFields 只更新给定列，返回更新后的记录；id 不存在返回 nil
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*Sweet, error)
	// Delete 删除记录，未命中返回 false
	Delete(ctx context.Context, id string) (bool, error)
	// DecrementStock 单条条件更新：quantity>0 才扣减，未命中返回 false
	DecrementStock(ctx context.Context, id string) (bool, error)
	// IncrementStock 单条条件更新：按 n 增加库存，未命中返回 false
	IncrementStock(ctx context.Context, id string, n int) (bool, error)
}
