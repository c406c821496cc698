package services

import (
	"testing"
	"time"

	"flappion-backend/models"
	"flappion-backend/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	db            *gorm.DB
	mail          *testutil.FakeMailer
	accounts      *AccountService
	sessions      *SessionService
	notifications *NotificationService
	invitations   *InvitationService
	bookings      *BookingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	clock := FixedClock(testNow)
	mail := &testutil.FakeMailer{}

	accounts := NewAccountService(db)
	accounts.Cost = bcrypt.MinCost
	notifications := NewNotificationService(db, mail, "Flappion <events@flappion.test>", "ops@flappion.test", clock)

	return &testEnv{
		db:            db,
		mail:          mail,
		accounts:      accounts,
		sessions:      NewSessionService(db, accounts, "test-secret", time.Hour, clock),
		notifications: notifications,
		invitations:   NewInvitationService(db, accounts, notifications, clock, 48*time.Hour, "https://flappion.test"),
		bookings:      NewBookingService(db, notifications),
	}
}

func (e *testEnv) seedAccount(t *testing.T, email, password string, admin bool) models.Account {
	t.Helper()
	hash, err := e.accounts.HashPassword(password)
	require.NoError(t, err)
	account := models.Account{Email: email, PasswordHash: hash}
	require.NoError(t, e.db.Create(&account).Error)
	if admin {
		require.NoError(t, e.db.Create(&models.UserRole{UserID: account.ID, Role: models.RoleAdmin}).Error)
	}
	return account
}

// adminSession logs a fresh admin in and resolves the capability.
func (e *testEnv) adminSession(t *testing.T) AdminSession {
	t.Helper()
	e.seedAccount(t, "root@flappion.test", "rootpassword", true)
	res, err := e.sessions.Login(t.Context(), "root@flappion.test", "rootpassword")
	require.NoError(t, err)
	admin, err := e.sessions.Authorize(t.Context(), res.Token)
	require.NoError(t, err)
	return admin
}
