package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string    `gorm:"not null"                 json:"first_name"`
	LastName     string    `gorm:"not null"                 json:"last_name"`
	Phone        string    `gorm:"not null"                 json:"phone"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Address      string    `json:"address"`
	Description  string    `json:"description"`
	Points       int       `gorm:"not null;default:0"       json:"points"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Toolseller struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName        string    `gorm:"not null"                 json:"company_name"`
	ContactPerson      string    `gorm:"not null"                 json:"contact_person"`
	RegistrationNumber string    `gorm:"not null"                 json:"registration_number"`
	Phone              string    `gorm:"not null"                 json:"phone"`
	Description        string    `json:"description"`
	Email              string    `gorm:"unique;not null"          json:"email"`
	PasswordHash       string    `gorm:"not null"                 json:"-"`
	Address            string    `gorm:"not null"                 json:"address"`
	EstablishedYear    *int      `json:"established_year,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Product struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Description  string    `gorm:"not null"                  json:"description"`
	Price        float64   `gorm:"not null"                  json:"price"`
	Category     string    `gorm:"not null"                  json:"category"`
	Brand        string    `gorm:"not null"                  json:"brand"`
	Model        string    `json:"model"`
	Condition    string    `gorm:"not null;default:new"      json:"condition"`
	Warranty     string    `json:"warranty"`
	Stock        uint      `gorm:"not null;default:0"        json:"stock"`
	ToolsellerID uint      `gorm:"index;not null"            json:"toolseller_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                                     json:"id"`
	UserID    uint `gorm:"index;not null;uniqueIndex:idx_cart_user_prod"  json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_prod"        json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0"                     json:"quantity"`
}

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	OrderTypePurchase = "purchase"
	OrderTypeRental   = "rental"
)

type Order struct {
	ID              uint        `gorm:"primaryKey"     json:"id"`
	UserID          uint        `gorm:"index;not null" json:"user_id"`
	ToolsellerID    uint        `gorm:"index;not null" json:"toolseller_id"`
	DeliveryAddress string      `gorm:"not null"       json:"delivery_address"`
	TotalCost       float64     `gorm:"not null"       json:"total_cost"`
	Status          string      `gorm:"not null"       json:"status"`
	PaymentMethod   string      `gorm:"not null"       json:"payment_method"`
	TrackingNumber  string      `gorm:"not null"       json:"tracking_number"`
	OrderDate       time.Time   `gorm:"not null"       json:"order_date"`
	OrderType       string      `gorm:"not null;default:purchase" json:"order_type"`
	RentalStartDate *time.Time  `json:"rental_start_date,omitempty"`
	RentalEndDate   *time.Time  `json:"rental_end_date,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Review          *Review     `gorm:"foreignKey:OrderID" json:"review,omitempty"`
	User            *User       `gorm:"foreignKey:UserID"  json:"user,omitempty"`
}

type OrderItem struct {
	ID              uint     `gorm:"primaryKey"     json:"id"`
	OrderID         uint     `gorm:"index;not null" json:"order_id"`
	ProductID       uint     `gorm:"not null"       json:"product_id"`
	Quantity        uint     `gorm:"default:1;check:quantity>0" json:"quantity"`
	PriceAtPurchase float64  `gorm:"not null"       json:"price_at_purchase"`
	Product         *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

type Review struct {
	ID           uint      `gorm:"primaryKey"           json:"id"`
	Rating       int       `gorm:"not null"             json:"rating"`
	ShortReview  string    `gorm:"not null"             json:"short_review"`
	ReviewText   string    `json:"review_text"`
	UserID       uint      `gorm:"index;not null"       json:"user_id"`
	OrderID      uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	ToolsellerID uint      `gorm:"index;not null"       json:"toolseller_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
