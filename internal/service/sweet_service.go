package service

import (
	"context"
	"strings"
	"time"

	"sweetshop/internal/apperr"
	"sweetshop/internal/core/cache"
	"sweetshop/internal/domain"
	"sweetshop/pkg/utils"
)

const keySweetsAll = "sweets:all"

type CreateSweetInput struct {
	Name     string
	Category string
	Price    float64
	Quantity int
}

// UpdateSweetInput 指针字段区分 "未传" 和 "传了零值"
type UpdateSweetInput struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int
}

type SweetService struct {
	sweets   domain.SweetRepository
	cache    *cache.Cache // 可为 nil（未配置 redis）
	cacheTTL time.Duration
}

func NewSweetService(sweets domain.SweetRepository, c *cache.Cache, cacheTTL time.Duration) *SweetService {
	return &SweetService{sweets: sweets, cache: c, cacheTTL: cacheTTL}
}

func (s *SweetService) Create(ctx context.Context, in CreateSweetInput) (*domain.Sweet, error) {
	name := strings.TrimSpace(in.Name)
	category := strings.TrimSpace(in.Category)
	if name == "" || category == "" {
		return nil, apperr.BadRequest("name and category are required")
	}
	if in.Price < 0 {
		return nil, apperr.BadRequest("price must not be negative")
	}
	if in.Quantity < 0 {
		return nil, apperr.BadRequest("quantity must not be negative")
	}

	sw := &domain.Sweet{
		ID:       utils.NewID(),
		Name:     name,
		Category: category,
		Price:    in.Price,
		Quantity: in.Quantity,
	}
	if err := s.sweets.Create(ctx, sw); err != nil {
		return nil, apperr.Internal("create sweet failed", err)
	}
	s.invalidate(ctx)
	return sw, nil
}

func (s *SweetService) FindAll(ctx context.Context) ([]domain.Sweet, error) {
	if s.cache == nil {
		return s.findAll(ctx)
	}
	items, err := cache.GetOrLoadJSON(s.cache, ctx, keySweetsAll, s.cacheTTL, s.findAll)
	if err != nil {
		// 缓存故障降级直连
		return s.findAll(ctx)
	}
	return items, nil
}

func (s *SweetService) findAll(ctx context.Context) ([]domain.Sweet, error) {
	items, err := s.sweets.FindAll(ctx)
	if err != nil {
		return nil, apperr.Internal("list sweets failed", err)
	}
	if items == nil {
		items = []domain.Sweet{}
	}
	return items, nil
}

func (s *SweetService) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	items, err := s.sweets.Search(ctx, f)
	if err != nil {
		return nil, apperr.Internal("search sweets failed", err)
	}
	if items == nil {
		items = []domain.Sweet{}
	}
	return items, nil
}

func (s *SweetService) Update(ctx context.Context, id string, in UpdateSweetInput) (*domain.Sweet, error) {
	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.BadRequest("name must not be empty")
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			return nil, apperr.BadRequest("category must not be empty")
		}
		fields["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, apperr.BadRequest("price must not be negative")
		}
		fields["price"] = *in.Price
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, apperr.BadRequest("quantity must not be negative")
		}
		fields["quantity"] = *in.Quantity
	}

	if len(fields) == 0 {
		sw, err := s.sweets.FindByID(ctx, id)
		if err != nil {
			return nil, apperr.Internal("find sweet failed", err)
		}
		if sw == nil {
			return nil, apperr.NotFound("sweet not found")
		}
		return sw, nil
	}

	sw, err := s.sweets.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, apperr.Internal("update sweet failed", err)
	}
	if sw == nil {
		return nil, apperr.NotFound("sweet not found")
	}
	s.invalidate(ctx)
	return sw, nil
}

// Delete 返回删除前的快照
func (s *SweetService) Delete(ctx context.Context, id string) (*domain.Sweet, error) {
	sw, err := s.sweets.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find sweet failed", err)
	}
	if sw == nil {
		return nil, apperr.NotFound("sweet not found")
	}
	ok, err := s.sweets.Delete(ctx, id)
	if err != nil {
		return nil, apperr.Internal("delete sweet failed", err)
	}
	if !ok {
		return nil, apperr.NotFound("sweet not found")
	}
	s.invalidate(ctx)
	return sw, nil
}

// Purchase 扣减 1 件库存。条件更新未命中时回查一次，区分 404 和售罄
func (s *SweetService) Purchase(ctx context.Context, id string) (*domain.Sweet, error) {
	ok, err := s.sweets.DecrementStock(ctx, id)
	if err != nil {
		return nil, apperr.Internal("purchase sweet failed", err)
	}
	if !ok {
		sw, err := s.sweets.FindByID(ctx, id)
		if err != nil {
			return nil, apperr.Internal("find sweet failed", err)
		}
		if sw == nil {
			return nil, apperr.NotFound("sweet not found")
		}
		return nil, apperr.Conflict("sweet is out of stock")
	}
	s.invalidate(ctx)
	sw, err := s.sweets.FindByID(ctx, id)
	if err != nil || sw == nil {
		return nil, apperr.Internal("find sweet failed", err)
	}
	return sw, nil
}

func (s *SweetService) Restock(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest("quantity must be greater than 0")
	}
	ok, err := s.sweets.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, apperr.Internal("restock sweet failed", err)
	}
	if !ok {
		return nil, apperr.NotFound("sweet not found")
	}
	s.invalidate(ctx)
	sw, err := s.sweets.FindByID(ctx, id)
	if err != nil || sw == nil {
		return nil, apperr.Internal("find sweet failed", err)
	}
	return sw, nil
}

func (s *SweetService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, keySweetsAll)
	}
}
