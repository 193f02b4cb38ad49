package models

import (
	"github.com/shopspring/decimal"
)

// DefaultImage is the placeholder image name stored for products without an upload.
const DefaultImage = "default.jpg"

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username     string `gorm:"size:150;unique;not null"  json:"username"`
	PasswordHash string `gorm:"not null"                  json:"-"`
}

type Session struct {
	ID        uint   `gorm:"primaryKey"            json:"id"`
	JTI       string `gorm:"size:64;uniqueIndex"   json:"jti"`
	UserID    uint   `gorm:"index;not null"        json:"user_id"`
	ExpiresAt int64  `gorm:"not null"              json:"expires_at"`
	Revoked   bool   `gorm:"default:false"         json:"revoked"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name        string          `gorm:"size:100;not null"             json:"name"`
	Description string          `gorm:"type:text"                     json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"   json:"price"`
	Image       string          `gorm:"size:300;default:default.jpg"  json:"image"`
}

func (p Product) HasCustomImage() bool {
	return p.Image != "" && p.Image != DefaultImage
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey"                  json:"id"`
	UserID    uint     `gorm:"index;not null"              json:"user_id"`
	ProductID uint     `gorm:"index;not null"              json:"product_id"`
	Quantity  uint     `gorm:"default:1;check:quantity>0"  json:"quantity"`
	Product   *Product `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&User{}, &Session{}, &Product{}, &CartItem{}}
}
