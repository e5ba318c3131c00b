package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName         = errors.New("dealer name is required")
	ErrInvalidPhone      = errors.New("phone must contain 10 to 15 digits")
	ErrInvalidEmail      = errors.New("email must contain '@'")
	ErrEmptyBusinessName = errors.New("business name is required")
	ErrEmptyAddress      = errors.New("address is required")
	ErrNegativeCredit    = errors.New("credit limit must not be negative")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrCreditExceeded    = errors.New("outstanding balance would exceed credit limit")
)

// DefaultCreditLimit is granted to every newly registered dealer.
var DefaultCreditLimit = decimal.NewFromInt(100000)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// Dealer is the authenticated customer owning a credit line.
type Dealer struct {
	ID                 string
	Name               string
	Phone              string
	Email              string
	BusinessName       string
	Address            string
	GSTNumber          string
	CreditLimit        decimal.Decimal
	OutstandingBalance decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewDealer builds a dealer with the default credit line and a zero balance.
func NewDealer(id, name, phone, email, businessName, address, gstNumber string) (*Dealer, error) {
	d := &Dealer{
		ID:                 id,
		CreditLimit:        DefaultCreditLimit,
		OutstandingBalance: decimal.Zero,
	}
	if err := d.UpdateProfile(name, email, businessName, address, gstNumber); err != nil {
		return nil, err
	}
	if err := d.SetPhone(phone); err != nil {
		return nil, err
	}
	return d, nil
}

// NormalizePhone strips separators so lookups match regardless of formatting.
func NormalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return replacer.Replace(strings.TrimSpace(phone))
}

// SetPhone validates and stores the normalized phone number.
func (d *Dealer) SetPhone(phone string) error {
	phone = NormalizePhone(phone)
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	d.Phone = phone
	return nil
}

// UpdateProfile applies the contact fields.
func (d *Dealer) UpdateProfile(name, email, businessName, address, gstNumber string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	businessName = strings.TrimSpace(businessName)
	if businessName == "" {
		return ErrEmptyBusinessName
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrEmptyAddress
	}
	d.Name = name
	d.Email = email
	d.BusinessName = businessName
	d.Address = address
	d.GSTNumber = strings.ToUpper(strings.TrimSpace(gstNumber))
	return nil
}

// SetCreditLimit replaces the credit line. It never drops below the current balance.
func (d *Dealer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return ErrNegativeCredit
	}
	if d.OutstandingBalance.GreaterThan(limit) {
		return ErrCreditExceeded
	}
	d.CreditLimit = limit.Round(2)
	return nil
}

// AvailableCredit is the undrawn part of the credit line.
func (d *Dealer) AvailableCredit() decimal.Decimal {
	return d.CreditLimit.Sub(d.OutstandingBalance)
}

// CanDraw reports whether amount fits in the remaining credit.
func (d *Dealer) CanDraw(amount decimal.Decimal) bool {
	return d.OutstandingBalance.Add(amount).LessThanOrEqual(d.CreditLimit)
}

// Draw books an account-payment order against the credit line.
func (d *Dealer) Draw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !d.CanDraw(amount) {
		return ErrCreditExceeded
	}
	d.OutstandingBalance = d.OutstandingBalance.Add(amount).Round(2)
	return nil
}

// Release returns amount to the credit line, never going below zero.
func (d *Dealer) Release(amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	balance := d.OutstandingBalance.Sub(amount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	d.OutstandingBalance = balance.Round(2)
}

// Validate enforces 0 <= outstanding <= limit and the profile invariants.
func (d *Dealer) Validate() error {
	if d.CreditLimit.IsNegative() {
		return ErrNegativeCredit
	}
	if d.OutstandingBalance.IsNegative() || d.OutstandingBalance.GreaterThan(d.CreditLimit) {
		return ErrCreditExceeded
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if !phonePattern.MatchString(d.Phone) {
		return ErrInvalidPhone
	}
	return nil
}

// Clone returns a deep copy.
func (d *Dealer) Clone() *Dealer {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}
