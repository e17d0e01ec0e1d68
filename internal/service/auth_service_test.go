package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sweetshop/internal/core/auth"
	"sweetshop/internal/domain"
)

type mockUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byEmail: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return errDup
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

type dupError struct{}

func (dupError) Error() string { return "Error 1062: Duplicate entry for key 'email'" }

var errDup = dupError{}

func newAuthSvc(users domain.UserRepository) *AuthService {
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	return NewAuthService(users, jwter, bcrypt.MinCost)
}

func TestRegister_ThenLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthSvc(repo)

	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "Alice@Example.com", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %q", u.Email)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("expected default role USER, got %q", u.Role)
	}
	if u.PasswordHash == "secret1" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	tok, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if tok == "" {
		t.Fatal("expected non-empty token")
	}
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "secret1")
	_, errWrongPw := svc.Login(context.Background(), "alice@example.com", "wrong")

	for _, err := range []error{errUnknown, errWrongPw} {
		if err == nil {
			t.Fatal("expected login to fail")
		}
	}
	// 两种失败不能通过响应区分
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("errors differ: %q vs %q", errUnknown.Error(), errWrongPw.Error())
	}
	wantStatus(t, errUnknown, http.StatusUnauthorized)
	wantStatus(t, errWrongPw, http.StatusUnauthorized)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newAuthSvc(repo)

	in := RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), in)
	wantStatus(t, err, http.StatusConflict)
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuthSvc(newMockUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{Name: "", Email: "a@b.c", Password: "x"})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.c", Password: "x", Role: "ROOT"})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestRegister_AdminRole(t *testing.T) {
	svc := newAuthSvc(newMockUserRepo())

	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Boss", Email: "boss@example.com", Password: "secret1", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Errorf("expected role ADMIN, got %q", u.Role)
	}
}
