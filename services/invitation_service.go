package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"flappion-backend/models"
	"flappion-backend/utils"

	"gorm.io/gorm"
)

const (
	minPasswordLength  = 8
	issueTokenAttempts = 3
)

// InvitationSender emails a freshly issued invitation link.
type InvitationSender interface {
	SendInvitation(ctx context.Context, email, link string, expiresAt time.Time) error
}

type InvitationService struct {
	DB            *gorm.DB
	Accounts      *AccountService
	Notifications InvitationSender
	Clock         Clock
	TTL           time.Duration
	FrontendURL   string
}

func NewInvitationService(db *gorm.DB, accounts *AccountService, sender InvitationSender, clock Clock, ttl time.Duration, frontendURL string) *InvitationService {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &InvitationService{
		DB:            db,
		Accounts:      accounts,
		Notifications: sender,
		Clock:         clock,
		TTL:           ttl,
		FrontendURL:   frontendURL,
	}
}

// IssuedInvitation holds the raw token. It is returned once and never stored.
type IssuedInvitation struct {
	Email     string
	Token     string
	Link      string
	ExpiresAt time.Time
	EmailSent bool
}

// Issue creates an invitation for email and emails the link. A failed email
// leaves the invitation in place; the link is returned either way.
func (s *InvitationService) Issue(ctx context.Context, admin AdminSession, email string) (*IssuedInvitation, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return nil, validationError("A valid email is required")
	}

	now := s.Clock.Now()
	inviter := admin.AccountID()
	var (
		token      string
		invitation models.AdminInvitation
	)
	for attempt := 1; ; attempt++ {
		var err error
		token, err = utils.GenerateSecureToken(utils.InvitationTokenBytes)
		if err != nil {
			return nil, fmt.Errorf("generate invitation token: %w", err)
		}
		invitation = models.AdminInvitation{
			Email:     email,
			TokenHash: utils.HashToken(token),
			InvitedBy: &inviter,
			ExpiresAt: now.Add(s.TTL),
		}
		err = s.DB.WithContext(ctx).Create(&invitation).Error
		if err == nil {
			break
		}
		if !isDuplicateKey(err) || attempt >= issueTokenAttempts {
			invitationsMetric.WithLabelValues("issue", "error").Inc()
			return nil, fmt.Errorf("create invitation: %w", err)
		}
	}

	issued := &IssuedInvitation{
		Email:     email,
		Token:     token,
		Link:      utils.BuildInvitationLink(s.FrontendURL, token),
		ExpiresAt: invitation.ExpiresAt,
	}
	if s.Notifications != nil {
		if err := s.Notifications.SendInvitation(ctx, email, issued.Link, issued.ExpiresAt); err != nil {
			log.Printf("warning: invitation %d created but email failed: %v", invitation.ID, err)
		} else {
			issued.EmailSent = true
		}
	}
	invitationsMetric.WithLabelValues("issue", "ok").Inc()
	log.Printf("Admin invitation issued to %s by %s", email, admin.Email())
	return issued, nil
}

// Accept redeems a raw invitation token. The claim, account provisioning and
// role grant commit together; on any failure the token stays redeemable.
func (s *InvitationService) Accept(ctx context.Context, token, password string) (string, error) {
	if !utils.IsValidInvitationToken(token) {
		return "", validationError("Invalid invitation token")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "", validationError("Password must be at least 8 characters")
	}

	now := s.Clock.Now()
	var invitation models.AdminInvitation
	err := s.DB.WithContext(ctx).Where("token = ?", utils.HashToken(token)).First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			invitationsMetric.WithLabelValues("accept", "invalid").Inc()
			return "", ErrInvitationInvalid
		}
		return "", fmt.Errorf("lookup invitation: %w", err)
	}
	if !invitation.Redeemable(now) {
		invitationsMetric.WithLabelValues("accept", "invalid").Inc()
		return "", ErrInvitationInvalid
	}

	hash, err := s.Accounts.HashPassword(password)
	if err != nil {
		return "", err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.AdminInvitation{}).
			Where("id = ? AND used = ? AND expires_at > ?", invitation.ID, false, now).
			Updates(map[string]any{"used": true, "used_at": now})
		if claim.Error != nil {
			return fmt.Errorf("claim invitation: %w", claim.Error)
		}
		if claim.RowsAffected == 0 {
			return ErrInvitationInvalid
		}

		account, err := s.Accounts.Provision(ctx, tx, invitation.Email, hash, now)
		if err != nil {
			return err
		}
		return s.Accounts.GrantRole(ctx, tx, account.ID, models.RoleAdmin)
	})
	if err != nil {
		if errors.Is(err, ErrInvitationInvalid) {
			invitationsMetric.WithLabelValues("accept", "invalid").Inc()
		} else {
			invitationsMetric.WithLabelValues("accept", "error").Inc()
		}
		return "", err
	}

	invitationsMetric.WithLabelValues("accept", "ok").Inc()
	log.Printf("Admin invitation %d accepted by %s", invitation.ID, invitation.Email)
	return invitation.Email, nil
}
