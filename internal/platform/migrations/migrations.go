package migrations

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the portal schema. The records below mirror the Postgres
// adapters column for column; adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&dealerRecord{},
		&sessionRecord{},
		&otpRecord{},
		&productRecord{},
		&cartItemRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&idempotencyRecord{},
	)
}

type dealerRecord struct {
	ID                 string          `gorm:"primaryKey;column:id;size:36"`
	Name               string          `gorm:"column:name"`
	Phone              string          `gorm:"column:phone;size:20;uniqueIndex"`
	Email              string          `gorm:"column:email"`
	BusinessName       string          `gorm:"column:business_name"`
	Address            string          `gorm:"column:address"`
	GSTNumber          string          `gorm:"column:gst_number;size:20"`
	CreditLimit        decimal.Decimal `gorm:"column:credit_limit;type:numeric(14,2);not null"`
	OutstandingBalance decimal.Decimal `gorm:"column:outstanding_balance;type:numeric(14,2);not null;default:0;check:chk_dealers_balance,outstanding_balance >= 0"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

func (dealerRecord) TableName() string { return "dealers" }

type sessionRecord struct {
	Token     string    `gorm:"primaryKey;column:token;size:128"`
	DealerID  string    `gorm:"column:dealer_id;size:36;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "dealer_sessions" }

// One live challenge per dealer; a new request overwrites the previous code.
type otpRecord struct {
	DealerID  string    `gorm:"primaryKey;column:dealer_id;size:36"`
	CodeHash  string    `gorm:"column:code_hash;size:72"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (otpRecord) TableName() string { return "dealer_otp_challenges" }

type productRecord struct {
	ID             string            `gorm:"primaryKey;column:id;size:36"`
	Name           string            `gorm:"column:name;index"`
	Description    string            `gorm:"column:description"`
	Category       string            `gorm:"column:category;size:32"`
	Grade          string            `gorm:"column:grade;size:32"`
	Packaging      string            `gorm:"column:packaging;size:32"`
	Price          decimal.Decimal   `gorm:"column:price;type:numeric(14,2);not null"`
	Stock          int               `gorm:"column:stock;not null;check:chk_products_stock,stock >= 0"`
	ImageURL       string            `gorm:"column:image_url"`
	Specifications map[string]string `gorm:"column:specifications;serializer:json"`
	Tags           pq.StringArray    `gorm:"column:tags;type:text[]"`
	CreatedAt      time.Time         `gorm:"column:created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type cartItemRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	DealerID  string    `gorm:"column:dealer_id;size:36;uniqueIndex:idx_cart_items_dealer_product,priority:1"`
	ProductID string    `gorm:"column:product_id;size:36;uniqueIndex:idx_cart_items_dealer_product,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null;check:chk_cart_items_quantity,quantity >= 100"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (cartItemRecord) TableName() string { return "cart_items" }

type orderRecord struct {
	ID              string            `gorm:"primaryKey;column:id;size:36"`
	OrderNumber     string            `gorm:"column:order_number;size:40;uniqueIndex"`
	DealerID        string            `gorm:"column:dealer_id;size:36;index:idx_orders_dealer_created,priority:1"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(14,2);not null"`
	PaymentMethod   string            `gorm:"column:payment_method;size:16;not null"`
	PaymentStatus   string            `gorm:"column:payment_status;size:16;not null"`
	Status          string            `gorm:"column:status;size:16;not null;index"`
	DeliveryAddress string            `gorm:"column:delivery_address;not null"`
	Notes           string            `gorm:"column:notes"`
	CreatedAt       time.Time         `gorm:"column:created_at;index:idx_orders_dealer_created,priority:2"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
	Items           []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	OrderID     string          `gorm:"primaryKey;column:order_id;size:36"`
	Position    int             `gorm:"primaryKey;column:position;autoIncrement:false"`
	ProductID   string          `gorm:"column:product_id;size:36;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type idempotencyRecord struct {
	DealerID    string    `gorm:"primaryKey;column:dealer_id;size:64"`
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	OrderID     string    `gorm:"column:order_id;size:64;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
