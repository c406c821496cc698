package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flappion-backend/models"
	"flappion-backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountService owns the accounts and user_roles tables.
type AccountService struct {
	DB   *gorm.DB
	Cost int
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db, Cost: bcrypt.DefaultCost}
}

func (s *AccountService) HashPassword(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AccountService) FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Account, error) {
	var account models.Account
	if err := tx.WithContext(ctx).Where("email = ?", utils.NormalizeEmail(email)).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// Provision updates the password of an existing account or creates a new,
// pre-verified one for email.
func (s *AccountService) Provision(ctx context.Context, tx *gorm.DB, email, passwordHash string, now time.Time) (*models.Account, error) {
	email = utils.NormalizeEmail(email)

	account, err := s.FindByEmail(ctx, tx, email)
	switch {
	case err == nil:
		if err := tx.WithContext(ctx).Model(account).Update("password_hash", passwordHash).Error; err != nil {
			return nil, fmt.Errorf("update account password: %w", err)
		}
		return account, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	account = &models.Account{Email: email, PasswordHash: passwordHash, EmailVerifiedAt: &now}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(account)
	if res.Error != nil {
		return nil, fmt.Errorf("create account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// created concurrently by another request
		existing, err := s.FindByEmail(ctx, tx, email)
		if err != nil {
			return nil, fmt.Errorf("lookup account: %w", err)
		}
		if err := tx.WithContext(ctx).Model(existing).Update("password_hash", passwordHash).Error; err != nil {
			return nil, fmt.Errorf("update account password: %w", err)
		}
		return existing, nil
	}
	return account, nil
}

// GrantRole is idempotent.
func (s *AccountService) GrantRole(ctx context.Context, tx *gorm.DB, accountID, role string) error {
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: accountID, Role: role}).Error
	if err != nil {
		return fmt.Errorf("grant role %s: %w", role, err)
	}
	return nil
}

func (s *AccountService) HasRole(ctx context.Context, accountID, role string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", accountID, role).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lookup role: %w", err)
	}
	return count > 0, nil
}

func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.FindByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if account.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
