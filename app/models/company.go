package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	COMPANY_STATUS_ACTIVE    = "active"
	COMPANY_STATUS_SUSPENDED = "suspended"
)

// Company is a tenant. PlanLevel and PlanExpiresAt together form the tenant's
// entitlement: the stored level may lag behind an elapsed expiration, so all
// feature gating must read the derived status (see internal/pkg/entitlements),
// never PlanLevel directly.
type Company struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          string         `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	Name          string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email         string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Phone         string         `gorm:"type:varchar(30);default:null" json:"phone" validate:"max=30"`
	Address       string         `gorm:"type:text;default:null" json:"address"`
	AdminPassword string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Status        string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active suspended"`
	APIKeyHash    string         `gorm:"type:char(64);default:'';index" json:"-"`
	PlanLevel     int            `gorm:"default:0" json:"plan_level"`
	PlanExpiresAt *time.Time     `gorm:"type:timestamp;default:null" json:"plan_expires_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Company) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	return nil
}

func CreateCompany(name string, email string, password string) (*Company, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	c := &Company{
		Name:          name,
		Email:         email,
		AdminPassword: pw,
		Status:        COMPANY_STATUS_ACTIVE,
	}

	err = c.Validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}
