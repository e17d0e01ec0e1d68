package service

import (
	"context"
	"strings"

	"sweetshop/internal/apperr"
	"sweetshop/internal/core/auth"
	"sweetshop/internal/domain"
	"sweetshop/internal/repo"
	"sweetshop/pkg/utils"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type AuthService struct {
	users      domain.UserRepository
	jwter      *auth.JWTer
	bcryptCost int
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer, bcryptCost int) *AuthService {
	return &AuthService{users: users, jwter: jwter, bcryptCost: bcryptCost}
}

// Register 注册：密码只存 bcrypt 哈希，邮箱小写归一化
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.BadRequest("name, email and password are required")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, apperr.BadRequest("invalid role")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("hash password failed", err)
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if repo.IsDupKey(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("create user failed", err)
	}
	return u, nil
}

// Login 登录：查不到用户和密码不对返回同一条错误，不暴露哪一步失败
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("find user failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return "", apperr.Unauthorized("invalid email or password")
	}

	tok, err := s.jwter.Issue(u.ID, u.Role)
	if err != nil || tok == "" {
		return "", apperr.Internal("issue token failed", err)
	}
	return tok, nil
}
