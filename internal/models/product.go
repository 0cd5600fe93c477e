package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin approval states for a product. Only approved products are
// exposed through search and browsing.
const (
	ApprovalStatusPending  = "Pending"
	ApprovalStatusApproved = "Approved"
	ApprovalStatusRejected = "Rejected"
)

// Discount value semantics.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Product represents a catalog item owned by a vendor.
// Price is nullable: products sold only through variants carry no base price.
type Product struct {
	ID                  string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	VendorID            string   `json:"vendor_id" gorm:"index;type:varchar(36)" validate:"required"`
	Name                string   `json:"name" validate:"required,min=3,max=150"`
	Slug                string   `json:"slug" gorm:"uniqueIndex;type:varchar(160)" validate:"required"`
	Description         string   `json:"description" validate:"omitempty,max=2000"`
	ImageURL            string   `json:"image_url"`
	Price               *float64 `json:"price" validate:"omitempty,gt=0"`
	CategorySlug        string   `json:"category_slug" gorm:"index"`
	SubcategorySlug     string   `json:"subcategory_slug" gorm:"index"`
	AdminApprovalStatus string   `json:"admin_approval_status" gorm:"index;default:'Pending'"`
	SoldCount           int      `json:"sold_count" gorm:"default:0"`
	PopularityScore     int      `json:"popularity_score" gorm:"default:0"`
	AverageRating       float64  `json:"average_rating" gorm:"default:0"`

	Vendor             *Vendor                `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Variants           []ProductVariant       `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
	Specifications     []ProductSpecification `json:"specifications,omitempty" gorm:"foreignKey:ProductID"`
	ProductDiscount    *ProductDiscount       `json:"product_discount,omitempty" gorm:"foreignKey:ProductID"`
	NewArrivalDiscount *NewArrivalDiscount    `json:"new_arrival_discount,omitempty" gorm:"foreignKey:ProductID"`

	gorm.Model // CreatedAt, UpdatedAt, DeletedAt
}

// ProductVariant is a purchasable SKU sub-record (size/color/...).
type ProductVariant struct {
	ID         string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID  string            `json:"product_id" gorm:"index;type:varchar(36)"`
	Price      float64           `json:"price" validate:"required,gt=0"`
	Quantity   int               `json:"quantity" validate:"gte=0"`
	Attributes map[string]string `json:"attributes" gorm:"type:text;serializer:json"`
}

// ProductSpecification holds one filterable attribute of a product,
// e.g. attribute "material" with values ["cotton", "linen"].
type ProductSpecification struct {
	ID        string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string   `json:"product_id" gorm:"index;type:varchar(36)"`
	Attribute string   `json:"attribute" gorm:"index"`
	Values    []string `json:"values" gorm:"type:text;serializer:json"`
}

// ProductDiscount is a vendor-set discount on a single product.
// A nil StartDate means the discount is already running; a nil EndDate
// means it never expires. The window is inclusive at both ends.
type ProductDiscount struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID    string     `json:"product_id" gorm:"uniqueIndex;type:varchar(36)"`
	Value        float64    `json:"value" validate:"required,gt=0"`
	DiscountType string     `json:"discount_type" validate:"required,oneof=percentage fixed"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// NewArrivalDiscount is a time-boxed promotion applied to recently
// listed products.
type NewArrivalDiscount struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID    string     `json:"product_id" gorm:"uniqueIndex;type:varchar(36)"`
	Value        float64    `json:"value" validate:"required,gt=0"`
	DiscountType string     `json:"discount_type" validate:"required,oneof=percentage fixed"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// ProductView logs one detail-page view per (product, IP) pair and backs
// the popularity-score dedup. The composite unique index is what makes
// repeat views from the same address a no-op.
type ProductView struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_product_view_ip;type:varchar(36)"`
	IP        string    `json:"ip" gorm:"uniqueIndex:idx_product_view_ip;type:varchar(45)"`
	CreatedAt time.Time `json:"created_at"`
}
