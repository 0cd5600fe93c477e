package models

import "gorm.io/gorm"

// User represents a buyer account.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password string `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6"`

	gorm.Model
}

// Vendor is a seller account. It owns products, coupons, and the seller
// side of buyer conversations.
type Vendor struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Slug     string `json:"slug" gorm:"uniqueIndex;type:varchar(160)"`
	ImageURL string `json:"image_url"`

	gorm.Model
}

// Address is a user-owned shipping address. At most one address per
// user may have IsDefault set; the repository unsets the others when a
// new default is written.
type Address struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string `json:"user_id" gorm:"index;type:varchar(36)"`
	Label      string `json:"label" validate:"required,max=50"`
	Recipient  string `json:"recipient" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Line1      string `json:"line1" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	Province   string `json:"province" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=10"`
	IsDefault  bool   `json:"is_default"`

	gorm.Model
}
