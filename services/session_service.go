package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"flappion-backend/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminSession is the capability every dashboard operation requires. Only
// SessionService can produce a valid one.
type AdminSession struct {
	sessionID string
	accountID string
	email     string
	expiresAt time.Time
}

func (a AdminSession) Valid() bool { return a.sessionID != "" && a.accountID != "" }
func (a AdminSession) AccountID() string { return a.accountID }
func (a AdminSession) Email() string { return a.email }
func (a AdminSession) ExpiresAt() time.Time { return a.expiresAt }

func requireAdmin(admin AdminSession) error {
	if !admin.Valid() {
		return ErrForbidden
	}
	return nil
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type SessionService struct {
	DB       *gorm.DB
	Accounts *AccountService
	Secret   []byte
	TTL      time.Duration
	Clock    Clock
}

func NewSessionService(db *gorm.DB, accounts *AccountService, secret string, ttl time.Duration, clock Clock) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &SessionService{DB: db, Accounts: accounts, Secret: []byte(secret), TTL: ttl, Clock: clock}
}

type LoginResult struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// Login only opens a session for accounts holding the admin role.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.Accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	isAdmin, err := s.Accounts.HasRole(ctx, account.ID, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrForbidden
	}

	now := s.Clock.Now()
	session := models.AdminSession{
		ID:        uuid.NewString(),
		AccountID: account.ID,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := s.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}).SignedString(s.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return &LoginResult{Token: token, Email: account.Email, ExpiresAt: session.ExpiresAt}, nil
}

// Authorize resolves a bearer token into an AdminSession. A live session whose
// account has lost the admin role is revoked and ErrForbidden returned.
func (s *SessionService) Authorize(ctx context.Context, token string) (AdminSession, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.Clock.Now))
	if err != nil || claims.ID == "" {
		return AdminSession{}, ErrUnauthenticated
	}

	var session models.AdminSession
	err = s.DB.WithContext(ctx).
		Where("id = ? AND expires_at > ?", claims.ID, s.Clock.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdminSession{}, ErrUnauthenticated
		}
		return AdminSession{}, fmt.Errorf("lookup session: %w", err)
	}
	if session.AccountID != claims.Subject {
		return AdminSession{}, ErrUnauthenticated
	}

	var account models.Account
	if err := s.DB.WithContext(ctx).First(&account, "id = ?", session.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.revoke(ctx, session.ID)
			return AdminSession{}, ErrUnauthenticated
		}
		return AdminSession{}, fmt.Errorf("lookup account: %w", err)
	}

	isAdmin, err := s.Accounts.HasRole(ctx, account.ID, models.RoleAdmin)
	if err != nil {
		return AdminSession{}, err
	}
	if !isAdmin {
		s.revoke(ctx, session.ID)
		return AdminSession{}, ErrForbidden
	}

	return AdminSession{
		sessionID: session.ID,
		accountID: account.ID,
		email:     account.Email,
		expiresAt: session.ExpiresAt,
	}, nil
}

// Logout ends the session behind admin.
func (s *SessionService) Logout(ctx context.Context, admin AdminSession) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(&models.AdminSession{}, "id = ?", admin.sessionID).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionService) revoke(ctx context.Context, sessionID string) {
	if err := s.DB.WithContext(ctx).Delete(&models.AdminSession{}, "id = ?", sessionID).Error; err != nil {
		log.Printf("warning: failed to revoke session %s: %v", sessionID, err)
	}
}
