package models

import "gorm.io/gorm"

// OwnedBy scopes a query to rows owned by userID.
func OwnedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Invoice{},
		&InvoiceItem{},
		&AgencySettings{},
		&LoginBranding{},
	}
}
