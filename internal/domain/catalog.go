package domain

import "time"

// Records below mirror the commerce backend's JSON. The console never
// enforces business rules on them; it only displays and forwards.

// Product is a sellable catalog item.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	BrandID     string  `json:"brandId"`
	CategoryID  string  `json:"categoryId"`
	ImageURL    string  `json:"imageUrl"`
	Status      string  `json:"status"`
}

// Order is a customer order as reported by the backend.
type Order struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	CustomerName string  `json:"customerName"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Total        float64 `json:"total"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
}

// Brand groups products by manufacturer.
type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
}

// Category is a node of the catalog taxonomy.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parentId"`
}

// Voucher is a discount code. The backend identifies vouchers by Name.
type Voucher struct {
	ID              string  `json:"id,omitempty"`
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discountPercent"`
	MaxDiscount     float64 `json:"maxDiscount"`
	Quantity        int     `json:"quantity"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
}

// Review is a customer product review awaiting or past moderation.
type Review struct {
	ID           string `json:"id"`
	ProductID    string `json:"productId"`
	CustomerName string `json:"customerName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	ImageURL     string `json:"imageUrl"`
	Status       string `json:"status"`
}

// SkinType is a product suitability tag. The backend identifies skin types
// by Description.
type SkinType struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
}

// Activity outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Activity is one journaled mutating action performed through the console.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Operator  string    `gorm:"size:255;index" json:"operator"`
	Resource  string    `gorm:"size:64;index;not null" json:"resource"`
	Verb      string    `gorm:"size:16;not null" json:"verb"`
	RecordKey string    `gorm:"size:255" json:"record_key"`
	Outcome   string    `gorm:"size:16;index;not null" json:"outcome"`
	Message   string    `gorm:"size:1024" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
