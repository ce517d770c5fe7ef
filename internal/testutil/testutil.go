package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"stocktrack-backend/internal/auth"
	"stocktrack-backend/internal/config"
	"stocktrack-backend/internal/database"
	"stocktrack-backend/internal/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// SetupDB opens a throwaway sqlite database for one test, migrates the
// schema and points the package-level handle at it.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	database.Migrate(db)
	database.DB = db
	return db
}

// TestConfig returns a config usable without any environment setup.
func TestConfig() *config.Config {
	return &config.Config{
		HTTPPort:       "0",
		JWTSecret:      "test-secret-0123456789abcdef0123456789abcdef",
		CORSOrigins:    "http://localhost:5173",
		TokenTTLMinute: 60,
	}
}

// CreateUser inserts a user with a bcrypt-hashed password.
func CreateUser(t *testing.T, db *gorm.DB, username, name string, role models.UserRole, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// Token issues a signed JWT for the given user.
func Token(t *testing.T, cfg *config.Config, user models.User) string {
	t.Helper()

	token, err := auth.GenerateToken(cfg.JWTSecret, time.Hour, &user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// CreateProduct inserts an active product with sensible zero-noise fields.
func CreateProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()

	p.IsActive = true
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return p
}

// JSONRequest builds an http request with optional JSON body and bearer token.
func JSONRequest(method, path, token string, body interface{}) *http.Request {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// DecodeJSON reads a response body into v.
func DecodeJSON(t *testing.T, res *http.Response, v interface{}) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
