package models

import (
	"time"

	"github.com/lib/pq"
)

// Product represents a sellable item in the catalog
type Product struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Category     string    `db:"category" json:"category"`
	Level        string    `db:"level" json:"level"`
	Rating       float64   `db:"rating" json:"rating"`
	Customers    int       `db:"customers" json:"customers"`
	Price        int64     `db:"price" json:"price"`
	ImageURL     string    `db:"image_url" json:"image_url,omitempty"`
	Stock        int       `db:"stock" json:"stock"`
	IsDigital    bool      `db:"is_digital" json:"is_digital"`
	QrisImageURL string    `db:"qris_image_url" json:"qris_image_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Course represents a course in the catalog
type Course struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	Level       string    `db:"level" json:"level"`
	Rating      float64   `db:"rating" json:"rating"`
	Students    int       `db:"students" json:"students"`
	Price       int64     `db:"price" json:"price"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	Modules     int       `db:"modules" json:"modules"`
	Lessons     int       `db:"lessons" json:"lessons"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Category groups products and courses
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Icon        string    `db:"icon" json:"icon"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PricingPlan is a landing-page pricing tier
type PricingPlan struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Price         int64          `db:"price" json:"price"`
	Currency      string         `db:"currency" json:"currency"`
	BillingPeriod string         `db:"billing_period" json:"billing_period"`
	Description   string         `db:"description" json:"description"`
	IsPopular     bool           `db:"is_popular" json:"is_popular"`
	Features      pq.StringArray `db:"features" json:"features"`
	CTAText       string         `db:"cta_text" json:"cta_text"`
	CTALink       string         `db:"cta_link" json:"cta_link"`
	OrderIndex    int            `db:"order_index" json:"order_index"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// FAQ is a landing-page question/answer entry
type FAQ struct {
	ID         string    `db:"id" json:"id"`
	Question   string    `db:"question" json:"question"`
	Answer     string    `db:"answer" json:"answer"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Testimonial is a customer quote shown on the landing page
type Testimonial struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Role       string    `db:"role" json:"role"`
	Company    string    `db:"company" json:"company"`
	Content    string    `db:"content" json:"content"`
	AvatarURL  string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Rating     int       `db:"rating" json:"rating"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LandingSection is a configurable block of landing-page content
type LandingSection struct {
	ID          string    `db:"id" json:"id"`
	SectionType string    `db:"section_type" json:"section_type"`
	Title       string    `db:"title" json:"title"`
	Subtitle    string    `db:"subtitle" json:"subtitle,omitempty"`
	Description string    `db:"description" json:"description,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	LinkURL     string    `db:"link_url" json:"link_url,omitempty"`
	Icon        string    `db:"icon" json:"icon,omitempty"`
	OrderIndex  int       `db:"order_index" json:"order_index"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PaymentSettings is the single merchant payment configuration row. The QRIS
// image is stored as a data URL and served to clients as-is.
type PaymentSettings struct {
	ID           int64     `db:"id" json:"-"`
	QrisImageURL string    `db:"qris_image_url" json:"qris_image_url,omitempty"`
	ClientKey    string    `db:"client_key" json:"client_key,omitempty"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CheckoutAttempt records one token request against the gateway
type CheckoutAttempt struct {
	ID             int64     `db:"id" json:"id"`
	OrderID        string    `db:"order_id" json:"order_id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	ProductName    string    `db:"product_name" json:"product_name"`
	GrossAmount    int64     `db:"gross_amount" json:"gross_amount"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Status         string    `db:"status" json:"status"`
	Token          string    `db:"token" json:"token,omitempty"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Checkout attempt statuses
const (
	AttemptStatusRequested   = "REQUESTED"
	AttemptStatusTokenIssued = "TOKEN_ISSUED"
	AttemptStatusFailed      = "FAILED"
	AttemptStatusPaid        = "PAID"
	AttemptStatusPending     = "PENDING"
	AttemptStatusClosed      = "CLOSED"
	// AttemptStatusUnknown is the terminal state of the offline QRIS path:
	// settlement happens out of band and is never reported back.
	AttemptStatusUnknown = "UNKNOWN"
)

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
