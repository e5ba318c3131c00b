package mapper

import (
	"time"

	dealertypes "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/application/types"
	dealerdomain "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/domain"
)

// Dealer represents the transport-level dealer payload.
type Dealer struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Email              string    `json:"email"`
	BusinessName       string    `json:"business_name"`
	Address            string    `json:"address"`
	GSTNumber          string    `json:"gst_number,omitempty"`
	CreditLimit        float64   `json:"credit_limit"`
	OutstandingBalance float64   `json:"outstanding_balance"`
	CreatedAt          time.Time `json:"created_at"`
}

// Registration is the self-registration request body.
type Registration struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Email        string `json:"email" binding:"required"`
	BusinessName string `json:"business_name" binding:"required"`
	Address      string `json:"address" binding:"required"`
	GSTNumber    string `json:"gst_number"`
}

// OTPRequest asks for a code to be sent to phone.
type OTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// OTPVerification redeems a code.
type OTPVerification struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// OTPSent acknowledges an issued code. OTP is set only when echo is enabled.
type OTPSent struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// Session is returned after a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Dealer    Dealer    `json:"dealer"`
}

// ToRegisterInput converts the transport registration into the application input.
func ToRegisterInput(model Registration) dealertypes.RegisterInput {
	return dealertypes.RegisterInput{
		Name:         model.Name,
		Phone:        model.Phone,
		Email:        model.Email,
		BusinessName: model.BusinessName,
		Address:      model.Address,
		GSTNumber:    model.GSTNumber,
	}
}

// FromDomainDealer converts a domain dealer into a transport representation.
func FromDomainDealer(dealer *dealerdomain.Dealer) Dealer {
	if dealer == nil {
		return Dealer{}
	}
	limit, _ := dealer.CreditLimit.Round(2).Float64()
	balance, _ := dealer.OutstandingBalance.Round(2).Float64()
	return Dealer{
		ID:                 dealer.ID,
		Name:               dealer.Name,
		Phone:              dealer.Phone,
		Email:              dealer.Email,
		BusinessName:       dealer.BusinessName,
		Address:            dealer.Address,
		GSTNumber:          dealer.GSTNumber,
		CreditLimit:        limit,
		OutstandingBalance: balance,
		CreatedAt:          dealer.CreatedAt,
	}
}

// FromAuthResult converts a login result into the session payload.
func FromAuthResult(result *dealertypes.AuthResult) Session {
	if result == nil {
		return Session{}
	}
	return Session{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Dealer:    FromDomainDealer(result.Dealer),
	}
}

// FromOTPDispatch acknowledges a dispatch, echoing the code only when asked to.
func FromOTPDispatch(dispatch *dealertypes.OTPDispatch, echo bool) OTPSent {
	out := OTPSent{Message: "OTP sent successfully"}
	if echo && dispatch != nil {
		out.OTP = dispatch.Code
	}
	return out
}
