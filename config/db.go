package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"flappion-backend/models"
	"flappion-backend/utils"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN(cfg Config) (string, error) {
	raw := strings.TrimSpace(cfg.MySQLURL)
	if raw == "" {
		raw = strings.TrimSpace(cfg.DatabaseURL)
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	port := cfg.DBPort
	if port == "" {
		port = "3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.DBUser, cfg.DBPass, cfg.DBHost, port, cfg.DBName,
	), nil
}

func resolvePostgresDSN(cfg Config) string {
	if raw := strings.TrimSpace(cfg.DatabaseURL); raw != "" {
		return raw
	}
	port := cfg.DBPort
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPass, cfg.DBName, port,
	)
}

// Dialector maps DB_DRIVER onto a gorm driver.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case "", "mysql":
		dsn, err := resolveMySQLDSN(cfg)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(resolvePostgresDSN(cfg)), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func ConnectDatabase(cfg Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogLevel(cfg.DBLogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		log.Printf("info: cannot get raw sql.DB: %v", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := SeedDatabase(db, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.UserRole{},
		&models.AdminSession{},
		&models.AdminInvitation{},
		&models.Booking{},
		&models.EmailDelivery{},
	)
}

// SeedDatabase creates the first admin so invitations can be issued at all.
// It does nothing once any admin role exists.
func SeedDatabase(db *gorm.DB, email, password string) error {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	var adminCount int64
	if err := db.Model(&models.UserRole{}).Where("role = ?", models.RoleAdmin).Count(&adminCount).Error; err != nil {
		return err
	}
	if adminCount > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		err := tx.Where("email = ?", email).First(&account).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now().UTC()
			account = models.Account{Email: email, PasswordHash: string(hash), EmailVerifiedAt: &now}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&account).Update("password_hash", string(hash)).Error; err != nil {
				return err
			}
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UserRole{UserID: account.ID, Role: models.RoleAdmin}).Error; err != nil {
			return err
		}
		log.Printf("Bootstrap admin seeded: %s", email)
		return nil
	})
}
