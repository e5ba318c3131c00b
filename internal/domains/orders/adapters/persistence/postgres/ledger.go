package postgres

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/cart/adapters/persistence/postgres"
	catalogpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/adapters/persistence/postgres"
	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
)

var _ ports.Ledger = (*Ledger)(nil)

// Ledger persists orders in PostgreSQL. Checkout and cancellation run in a single
// transaction that locks the dealer row first, then products by id, then cart rows.
type Ledger struct {
	db *gorm.DB
}

// NewLedger wires a PostgreSQL-backed ledger. The caller owns the DB lifecycle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// OrderRecord is the orders row.
type OrderRecord struct {
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
	Items           []OrderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderRecord) TableName() string { return "orders" }

// OrderItemRecord is one snapshot line of an order.
type OrderItemRecord struct {
	OrderID     string          `gorm:"primaryKey;column:order_id;size:36"`
	Position    int             `gorm:"primaryKey;column:position;autoIncrement:false"`
	ProductID   string          `gorm:"column:product_id;size:36;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null"`
}

func (OrderItemRecord) TableName() string { return "order_items" }

// dealerCredit is the slice of the dealers row the ledger locks and updates.
type dealerCredit struct {
	ID                 string
	CreditLimit        decimal.Decimal
	OutstandingBalance decimal.Decimal
}

func (l *Ledger) Commit(ctx context.Context, commit ports.CheckoutCommit) (*domain.Order, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	order := commit.Order
	if order == nil {
		return nil, errors.New("cannot commit nil order")
	}
	record := toRecord(order)
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dealer, err := lockDealer(tx, order.DealerID)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		sort.Strings(ids)
		var products []catalogpostgres.ProductRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).Order("id ASC").Find(&products).Error; err != nil {
			return err
		}
		byID := make(map[string]catalogpostgres.ProductRecord, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, item := range order.Items {
			p, ok := byID[item.ProductID]
			if !ok || !p.Price.Equal(item.UnitPrice) || p.Stock < item.Quantity {
				return ports.ErrConflict
			}
		}

		var cart []cartpostgres.ItemRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("dealer_id = ?", order.DealerID).Order("id ASC").Find(&cart).Error; err != nil {
			return err
		}
		if !sameCart(cart, commit.CartLines) {
			return ports.ErrConflict
		}

		for _, item := range order.Items {
			result := tx.Model(&catalogpostgres.ProductRecord{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock - ?", item.Quantity),
					"updated_at": order.CreatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ports.ErrConflict
			}
		}

		if commit.CreditDraw.IsPositive() {
			if dealer.OutstandingBalance.Add(commit.CreditDraw).GreaterThan(dealer.CreditLimit) {
				return ports.ErrConflict
			}
			if err := tx.Table("dealers").Where("id = ?", dealer.ID).Updates(map[string]any{
				"outstanding_balance": gorm.Expr("outstanding_balance + ?", commit.CreditDraw),
				"updated_at":          order.CreatedAt,
			}).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrConflict
			}
			return err
		}

		itemIDs := make([]string, 0, len(cart))
		for _, item := range cart {
			itemIDs = append(itemIDs, item.ID)
		}
		return tx.Where("dealer_id = ? AND id IN ?", order.DealerID, itemIDs).
			Delete(&cartpostgres.ItemRecord{}).Error
	})
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (l *Ledger) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var record OrderRecord
	if err := withItems(l.db.WithContext(ctx)).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (l *Ledger) ListByDealer(ctx context.Context, dealerID string) ([]*domain.Order, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var records []OrderRecord
	if err := withItems(l.db.WithContext(ctx)).
		Where("dealer_id = ?", dealerID).
		Order("created_at DESC").Order("order_number DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (l *Ledger) Transition(ctx context.Context, id string, next domain.Status, now time.Time) (*ports.StatusChange, error) {
	if err := l.ensureDB(); err != nil {
		return nil, err
	}
	var change *ports.StatusChange
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner OrderRecord
		if err := tx.Select("id", "dealer_id").First(&owner, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		if _, err := lockDealer(tx, owner.DealerID); err != nil && !errors.Is(err, dealerports.ErrNotFound) {
			return err
		}

		var record OrderRecord
		if err := withItems(tx.Clauses(clause.Locking{Strength: "UPDATE"})).
			First(&record, "id = ?", id).Error; err != nil {
			return err
		}
		order := record.toDomain()
		previous, err := order.TransitionTo(next, now)
		if err != nil {
			return err
		}

		if next == domain.StatusCancelled {
			if err := reverse(tx, order, now); err != nil {
				return err
			}
		}
		if err := tx.Model(&OrderRecord{}).Where("id = ?", order.ID).Updates(map[string]any{
			"status":         string(order.Status),
			"payment_status": string(order.PaymentStatus),
			"updated_at":     order.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		change = &ports.StatusChange{Order: order, Previous: previous}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// reverse restocks a cancelled order and releases its credit draw, flooring the balance at zero.
func reverse(tx *gorm.DB, order *domain.Order, now time.Time) error {
	items := append([]domain.LineItem(nil), order.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	for _, item := range items {
		if err := tx.Model(&catalogpostgres.ProductRecord{}).Where("id = ?", item.ProductID).Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", item.Quantity),
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
	}
	if !order.DrawsCredit() {
		return nil
	}
	return tx.Table("dealers").Where("id = ?", order.DealerID).Updates(map[string]any{
		"outstanding_balance": gorm.Expr("GREATEST(outstanding_balance - ?, 0)", order.TotalAmount),
		"updated_at":          now,
	}).Error
}

func lockDealer(tx *gorm.DB, dealerID string) (*dealerCredit, error) {
	var dealer dealerCredit
	err := tx.Table("dealers").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "credit_limit", "outstanding_balance").
		Where("id = ?", dealerID).
		Take(&dealer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dealerports.ErrNotFound
		}
		return nil, err
	}
	return &dealer, nil
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func sameCart(current []cartpostgres.ItemRecord, expected []ports.CartLine) bool {
	if len(current) != len(expected) {
		return false
	}
	byID := make(map[string]ports.CartLine, len(expected))
	for _, line := range expected {
		byID[line.ItemID] = line
	}
	for _, item := range current {
		line, ok := byID[item.ID]
		if !ok || line.ProductID != item.ProductID || line.Quantity != item.Quantity {
			return false
		}
	}
	return true
}

func (l *Ledger) ensureDB() error {
	if l == nil || l.db == nil {
		return errors.New("postgres order ledger not configured")
	}
	return nil
}

func toRecord(order *domain.Order) OrderRecord {
	items := make([]OrderItemRecord, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, OrderItemRecord{
			OrderID:     order.ID,
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return OrderRecord{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		DealerID:        order.DealerID,
		TotalAmount:     order.TotalAmount,
		PaymentMethod:   string(order.PaymentMethod),
		PaymentStatus:   string(order.PaymentStatus),
		Status:          string(order.Status),
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Items:           items,
	}
}

func (r *OrderRecord) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.LineItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Round(2),
			Subtotal:    item.Subtotal.Round(2),
		})
	}
	return &domain.Order{
		ID:              r.ID,
		OrderNumber:     r.OrderNumber,
		DealerID:        r.DealerID,
		Items:           items,
		TotalAmount:     r.TotalAmount.Round(2),
		PaymentMethod:   domain.PaymentMethod(r.PaymentMethod),
		PaymentStatus:   domain.PaymentStatus(r.PaymentStatus),
		Status:          domain.Status(r.Status),
		DeliveryAddress: r.DeliveryAddress,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
