package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	ordertypes "github.com/Apurer/cement-dealer-portal/internal/domains/orders/application/types"
	"github.com/Apurer/cement-dealer-portal/internal/domains/orders/domain"
	ordersports "github.com/Apurer/cement-dealer-portal/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/cement-dealer-portal/internal/platform/temporal/activities/orders"
)

type stubService struct {
	ordersports.Service
	order *domain.Order
	err   error
	calls int
}

func (s *stubService) PlaceOrder(context.Context, ordertypes.PlaceOrderInput) (*domain.Order, error) {
	s.calls++
	return s.order, s.err
}

type CheckoutWorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env     *testsuite.TestWorkflowEnvironment
	service *stubService
}

func (s *CheckoutWorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.service = &stubService{}
	acts := orderactivities.NewActivities(s.service)
	s.env.RegisterActivityWithOptions(acts.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})
}

func (s *CheckoutWorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func (s *CheckoutWorkflowSuite) input() CheckoutWorkflowInput {
	return CheckoutWorkflowInput{
		Command: ordertypes.PlaceOrderInput{DealerID: "d-1", PaymentMethod: "account", DeliveryAddress: "Pune"},
		TraceID: "trace-1",
	}
}

func (s *CheckoutWorkflowSuite) TestReturnsCommittedOrder() {
	line := domain.NewLineItem("opc43", "OPC 43", 100, decimal.RequireFromString("350"))
	order, err := domain.NewOrder("o-1", "ORD-1", "d-1", []domain.LineItem{line}, domain.PaymentAccount, "Pune", "", time.Now().UTC())
	s.Require().NoError(err)
	s.service.order = order

	s.env.ExecuteWorkflow(CheckoutWorkflow, s.input())
	s.Require().True(s.env.IsWorkflowCompleted())
	s.Require().NoError(s.env.GetWorkflowError())

	var result domain.Order
	s.Require().NoError(s.env.GetWorkflowResult(&result))
	s.Equal("o-1", result.ID)
	s.True(result.TotalAmount.Equal(decimal.RequireFromString("35000")))
}

func (s *CheckoutWorkflowSuite) TestRejectionIsNotRetried() {
	s.service.err = &domain.CreditLimitExceededError{
		Available: decimal.RequireFromString("5000"),
		Required:  decimal.RequireFromString("6000"),
	}

	s.env.ExecuteWorkflow(CheckoutWorkflow, s.input())
	s.Require().True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)
	s.Equal(1, s.service.calls)

	decoded := orderactivities.DecodeError(err)
	var creditErr *domain.CreditLimitExceededError
	s.Require().True(errors.As(decoded, &creditErr))
	s.True(creditErr.Available.Equal(decimal.RequireFromString("5000")))
	s.True(creditErr.Required.Equal(decimal.RequireFromString("6000")))
}

func TestCheckoutWorkflowSuite(t *testing.T) {
	suite.Run(t, new(CheckoutWorkflowSuite))
}

func TestErrorCodec_RoundTripsRejections(t *testing.T) {
	stock := &domain.InsufficientStockError{ProductID: "slag", ProductName: "Slag Cement", Requested: 200, Available: 150}
	var decoded *domain.InsufficientStockError
	require.True(t, errors.As(orderactivities.DecodeError(orderactivities.EncodeError(stock)), &decoded))
	assert.Equal(t, *stock, *decoded)

	for _, err := range []error{domain.ErrEmptyCart, ordersports.ErrIdempotencyConflict, ordersports.ErrConflict} {
		assert.ErrorIs(t, orderactivities.DecodeError(orderactivities.EncodeError(err)), err)
	}

	plain := errors.New("connection reset")
	assert.Same(t, plain, orderactivities.EncodeError(plain))
}
