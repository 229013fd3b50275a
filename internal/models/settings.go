package models

import (
	"time"

	"github.com/diewo77/bill-ease/internal/invoice"
)

// DefaultDisplayName is shown on the sign-in page until branding is saved.
const DefaultDisplayName = "Bill Ease"

// AgencySettings is the issuing agency's identity printed on every invoice.
type AgencySettings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:255" json:"name"`
	Address string `gorm:"size:500" json:"address"`
	GSTIN   string `gorm:"size:32" json:"gstin"`

	// LogoKey is the blob storage key of the uploaded logo.
	LogoKey string `gorm:"size:500" json:"logo_key,omitempty"`
}

func (s AgencySettings) Party() invoice.Party {
	return invoice.Party{Name: s.Name, Address: s.Address, GSTIN: s.GSTIN}
}

// LoginBranding is the single global row customising the sign-in page.
type LoginBranding struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Slogan      string    `gorm:"size:255" json:"slogan"`
	Description string    `gorm:"type:text" json:"description"`
	LogoKey     string    `gorm:"size:500" json:"logo_key,omitempty"`
}
