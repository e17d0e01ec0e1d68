package service

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"sweetshop/internal/apperr"
	"sweetshop/internal/domain"
)

// mockSweetRepo 与真实仓储同契约：扣减/增加是带条件的单步操作
type mockSweetRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Sweet
}

func newMockSweetRepo(items ...domain.Sweet) *mockSweetRepo {
	m := &mockSweetRepo{items: make(map[string]*domain.Sweet)}
	for i := range items {
		it := items[i]
		m.items[it.ID] = &it
	}
	return m
}

func (m *mockSweetRepo) Create(ctx context.Context, s *domain.Sweet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockSweetRepo) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (m *mockSweetRepo) FindAll(ctx context.Context) ([]domain.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Sweet, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockSweetRepo) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Sweet
	for _, it := range m.items {
		if f.Name != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockSweetRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*domain.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["name"]; ok {
		it.Name = v.(string)
	}
	if v, ok := fields["category"]; ok {
		it.Category = v.(string)
	}
	if v, ok := fields["price"]; ok {
		it.Price = v.(float64)
	}
	if v, ok := fields["quantity"]; ok {
		it.Quantity = v.(int)
	}
	cp := *it
	return &cp, nil
}

func (m *mockSweetRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}

func (m *mockSweetRepo) DecrementStock(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.Quantity <= 0 {
		return false, nil
	}
	it.Quantity--
	return true, nil
}

func (m *mockSweetRepo) IncrementStock(ctx context.Context, id string, n int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return false, nil
	}
	it.Quantity += n
	return true, nil
}

func newSweetSvc(repo domain.SweetRepository) *SweetService {
	return NewSweetService(repo, nil, 0)
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	if got := apperr.Status(err); got != status {
		t.Fatalf("expected status %d, got %d (%v)", status, got, err)
	}
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	repo := newMockSweetRepo()
	svc := newSweetSvc(repo)

	sw, err := svc.Create(context.Background(), CreateSweetInput{Name: "Ladoo", Category: "Mithai", Price: 10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sw.ID == "" || sw.Quantity != 0 {
		t.Errorf("expected generated id and zero quantity, got %+v", sw)
	}

	_, err = svc.Create(context.Background(), CreateSweetInput{Name: "", Category: "Mithai", Price: 1})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.Create(context.Background(), CreateSweetInput{Name: "x", Category: "y", Price: -1})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestPurchase_Success(t *testing.T) {
	repo := newMockSweetRepo(domain.Sweet{ID: "s1", Name: "Ladoo", Category: "Mithai", Price: 10, Quantity: 5})
	svc := newSweetSvc(repo)

	sw, err := svc.Purchase(context.Background(), "s1")
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if sw.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", sw.Quantity)
	}
}

func TestPurchase_NotFound(t *testing.T) {
	svc := newSweetSvc(newMockSweetRepo())
	_, err := svc.Purchase(context.Background(), "missing")
	wantStatus(t, err, http.StatusNotFound)
}

func TestPurchase_OutOfStock(t *testing.T) {
	repo := newMockSweetRepo(domain.Sweet{ID: "s1", Name: "Ladoo", Category: "Mithai", Quantity: 0})
	svc := newSweetSvc(repo)
	_, err := svc.Purchase(context.Background(), "s1")
	wantStatus(t, err, http.StatusConflict)
}

func TestPurchase_Concurrent(t *testing.T) {
	initialStock := 20
	totalRequests := 50

	repo := newMockSweetRepo(domain.Sweet{ID: "s1", Name: "Ladoo", Category: "Mithai", Quantity: initialStock})
	svc := newSweetSvc(repo)

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Purchase(context.Background(), "s1"); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if successCount.Load() != int32(initialStock) {
		t.Errorf("expected %d successes, got %d", initialStock, successCount.Load())
	}
	sw, _ := repo.FindByID(context.Background(), "s1")
	if sw.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", sw.Quantity)
	}
}

func TestRestock_ThenPurchaseExactly(t *testing.T) {
	repo := newMockSweetRepo(domain.Sweet{ID: "s1", Name: "Ladoo", Category: "Mithai", Quantity: 0})
	svc := newSweetSvc(repo)

	sw, err := svc.Restock(context.Background(), "s1", 3)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if sw.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", sw.Quantity)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Purchase(context.Background(), "s1"); err != nil {
			t.Fatalf("purchase %d failed: %v", i+1, err)
		}
	}
	_, err = svc.Purchase(context.Background(), "s1")
	wantStatus(t, err, http.StatusConflict)
}

func TestRestock_Validation(t *testing.T) {
	repo := newMockSweetRepo(domain.Sweet{ID: "s1", Name: "Ladoo", Category: "Mithai"})
	svc := newSweetSvc(repo)

	_, err := svc.Restock(context.Background(), "s1", 0)
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.Restock(context.Background(), "missing", 5)
	wantStatus(t, err, http.StatusNotFound)
}

func TestSearch_NameSubstringCaseInsensitive(t *testing.T) {
	repo := newMockSweetRepo(
		domain.Sweet{ID: "1", Name: "Chocolate Bar", Category: "Chocolate"},
		domain.Sweet{ID: "2", Name: "Dark choc", Category: "Chocolate"},
		domain.Sweet{ID: "3", Name: "Vanilla", Category: "Bakery"},
	)
	svc := newSweetSvc(repo)

	items, err := svc.Search(context.Background(), domain.SweetFilter{Name: "choc"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 matches, got %d", len(items))
	}

	// 无过滤条件等价于 FindAll
	all, err := svc.Search(context.Background(), domain.SweetFilter{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 items, got %d", len(all))
	}

	none, err := svc.Search(context.Background(), domain.SweetFilter{Name: "choc", Category: "Bakery"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty result, got %d", len(none))
	}
}

func TestUpdate_PartialAndNotFound(t *testing.T) {
	repo := newMockSweetRepo(domain.Sweet{ID: "s1", Name: "Ladoo", Category: "Mithai", Price: 10, Quantity: 5})
	svc := newSweetSvc(repo)

	price := 12.5
	sw, err := svc.Update(context.Background(), "s1", UpdateSweetInput{Price: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if sw.Price != 12.5 || sw.Name != "Ladoo" || sw.Quantity != 5 {
		t.Errorf("partial update touched unrelated fields: %+v", sw)
	}

	neg := -1
	_, err = svc.Update(context.Background(), "s1", UpdateSweetInput{Quantity: &neg})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.Update(context.Background(), "missing", UpdateSweetInput{Price: &price})
	wantStatus(t, err, http.StatusNotFound)
}

func TestDelete_SnapshotAndNotFound(t *testing.T) {
	repo := newMockSweetRepo(domain.Sweet{ID: "s1", Name: "Ladoo", Category: "Mithai", Quantity: 5})
	svc := newSweetSvc(repo)

	sw, err := svc.Delete(context.Background(), "s1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if sw.Name != "Ladoo" || sw.Quantity != 5 {
		t.Errorf("expected pre-deletion snapshot, got %+v", sw)
	}

	_, err = svc.Delete(context.Background(), "s1")
	wantStatus(t, err, http.StatusNotFound)
}
