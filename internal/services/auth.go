package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/intentbot-backend/internal/config"
	"github.com/yungbote/intentbot-backend/internal/domain"
	pkgerrors "github.com/yungbote/intentbot-backend/internal/pkg/errors"
	"github.com/yungbote/intentbot-backend/internal/platform/dbctx"
	"github.com/yungbote/intentbot-backend/internal/platform/logger"
	"github.com/yungbote/intentbot-backend/internal/repos"
)

type RegisterInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Register(dc dbctx.Context, input RegisterInput) (*domain.User, error)
	Login(dc dbctx.Context, email, password string) (string, *domain.User, error)
	GetUser(dc dbctx.Context, id uuid.UUID) (*domain.User, error)
	ParseToken(token string) (uuid.UUID, error)
}

type authService struct {
	users repos.UserRepo
	cfg   config.AuthConfig
	log   *logger.Logger
}

func NewAuthService(users repos.UserRepo, cfg config.AuthConfig, baseLog *logger.Logger) AuthService {
	return &authService{
		users: users,
		cfg:   cfg,
		log:   baseLog.With("service", "AuthService"),
	}
}

func (s *authService) Register(dc dbctx.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email must not be empty", pkgerrors.ErrInvalidArgument)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", pkgerrors.ErrInvalidArgument)
	}

	exists, err := s.users.EmailExists(dc.Ctx, dc.Tx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email already registered", pkgerrors.ErrInvalidArgument)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		FullName:     strings.TrimSpace(input.FullName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if _, err := s.users.Create(dc.Ctx, dc.Tx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID, "email", email)
	return user, nil
}

func (s *authService) Login(dc dbctx.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(dc.Ctx, dc.Tx, email)
	if err != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, fmt.Errorf("%w: invalid credentials", pkgerrors.ErrUnauthorized)
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *authService) GetUser(dc dbctx.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(dc.Ctx, dc.Tx, id)
}

// ParseToken validates a bearer token and returns the subject user id.
func (s *authService) ParseToken(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", pkgerrors.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: invalid token claims", pkgerrors.ErrUnauthorized)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid token subject", pkgerrors.ErrUnauthorized)
	}
	return id, nil
}
