package application

import (
	"fmt"
	"strings"

	catalogdomain "github.com/Apurer/cement-dealer-portal/internal/domains/catalog/domain"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
	orderdomain "github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
)

const promptOrders = 3

// BuildSystemPrompt renders the context the assistant answers from. orders must be newest first.
func BuildSystemPrompt(dealer *dealerdomain.Dealer, products []*catalogdomain.Product, orders []*orderdomain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant for HumSafar Cement, helping dealer %s from %s.\n\n", dealer.Name, dealer.BusinessName)

	b.WriteString("Available Products:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: ₹%s per %s (Grade: %s, Stock: %d)\n", p.Name, p.Price.StringFixed(2), p.Packaging, p.Grade, p.Stock)
	}

	b.WriteString("\nDealer Information:\n")
	fmt.Fprintf(&b, "- Credit Limit: ₹%s\n", dealer.CreditLimit.StringFixed(2))
	fmt.Fprintf(&b, "- Outstanding Balance: ₹%s\n", dealer.OutstandingBalance.StringFixed(2))
	fmt.Fprintf(&b, "- Available Credit: ₹%s\n", dealer.AvailableCredit().StringFixed(2))

	if len(orders) > 0 {
		b.WriteString("\nRecent orders:\n")
		for i, o := range orders {
			if i == promptOrders {
				break
			}
			fmt.Fprintf(&b, "- Order %s: ₹%s, Status: %s\n", o.OrderNumber, o.TotalAmount.StringFixed(2), o.Status)
		}
	}

	b.WriteString(`
Help the dealer with:
1. Product information and recommendations
2. Order status and history
3. Credit and payment information
4. General support and queries

Be helpful, professional, and provide accurate information based on the context above.`)
	return b.String()
}
