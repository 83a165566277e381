package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/prestasys/loan-origination/internal/domain"
	"github.com/prestasys/loan-origination/internal/repository"
	customError "github.com/prestasys/loan-origination/pkg/errors"
)

// Service authenticates staff users and manages their accounts.
type Service struct {
	users       repository.UserRepository
	jwtSecret   []byte
	tokenExpiry time.Duration
	now         func() time.Time
}

func NewService(users repository.UserRepository, jwtSecret string, tokenExpiry time.Duration) *Service {
	return &Service{
		users:       users,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
		now:         time.Now,
	}
}

// AuthState is the authenticated session returned by Login.
type AuthState struct {
	User        *domain.User     `json:"user"`
	Token       string           `json:"token"`
	Permissions *RolePermissions `json:"permissions"`
}

// Claims is the JWT payload for a staff session.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Login verifies credentials, records the login time and issues a session
// token carrying the user's role.
func (s *Service) Login(ctx context.Context, username, password string) (*AuthState, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.NewBusinessError(customError.ErrCodeInvalidCredentials, "Invalid username or password", customError.ErrInvalidCredentials)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidCredentials, "Invalid username or password", customError.ErrInvalidCredentials)
	}

	if !user.Active {
		return nil, customError.NewBusinessError(customError.ErrCodeUserInactive, "User is inactive, contact an administrator", customError.ErrUserInactive)
	}

	loginAt := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		// Session issuance must not fail on bookkeeping.
		log.Printf("failed to record last login for %s: %v", username, err)
	}
	user.LastLogin = &loginAt

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthState{
		User:        user,
		Token:       token,
		Permissions: PermissionsForRole(user.Role),
	}, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, req *domain.ChangePasswordRequest) error {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapUserNotFound(req.Username)
		}
		return customError.WrapDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return customError.NewBusinessError(customError.ErrCodeInvalidCredentials, "Current password is incorrect", customError.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

func (s *Service) issueToken(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ParseToken validates a session token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// CreateUser registers a staff account. Usernames are unique.
func (s *Service) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}
	if existing != nil {
		return nil, customError.WrapUsernameTaken(req.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
		Active:       req.Active,
		CreatedAt:    s.now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return user, nil
}

// UpdateUser applies a partial update to a staff account.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *domain.UpdateUserRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapUserNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return user, nil
}

// DeleteUser removes a staff account.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapUserNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// ListUsers returns all staff accounts.
func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return users, nil
}

// SeedDefaultUsers creates the bootstrap admin/manager/agent accounts when no
// users exist yet.
func (s *Service) SeedDefaultUsers(ctx context.Context) error {
	existing, err := s.users.List(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []domain.CreateUserRequest{
		{Username: "admin", Password: "admin123", FullName: "Administrador Principal", Email: "admin@prestamos.com", Role: domain.RoleAdmin, Active: true},
		{Username: "manager", Password: "manager123", FullName: "Gerente de Préstamos", Email: "gerente@prestamos.com", Role: domain.RoleManager, Active: true},
		{Username: "agent", Password: "agent123", FullName: "Agente de Préstamos", Email: "agente@prestamos.com", Role: domain.RoleAgent, Active: true},
	}

	for i := range defaults {
		if _, err := s.CreateUser(ctx, &defaults[i]); err != nil {
			return err
		}
	}

	log.Printf("seeded %d default users", len(defaults))
	return nil
}
