package portalserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dealermapper "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/http/mapper"
	dealerports "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/ports"
	apierrors "github.com/Apurer/cement-dealer-portal/internal/shared/errors"
)

// AuthAPI implements dealer registration, OTP login and sessions.
type AuthAPI struct {
	service dealerports.Service
	otpEcho bool
}

// NewAuthAPI wires dependencies. otpEcho returns issued codes in the send-otp
// response and is meant for development only.
func NewAuthAPI(service dealerports.Service, otpEcho bool) AuthAPI {
	return AuthAPI{service: service, otpEcho: otpEcho}
}

// Post /api/auth/register
func (api *AuthAPI) Register(c *gin.Context) {
	var payload dealermapper.Registration
	if !bindJSON(c, &payload) {
		return
	}
	dealer, err := api.service.Register(c.Request.Context(), dealermapper.ToRegisterInput(payload))
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dealermapper.FromDomainDealer(dealer))
}

// Post /api/auth/send-otp
func (api *AuthAPI) SendOTP(c *gin.Context) {
	var payload dealermapper.OTPRequest
	if !bindJSON(c, &payload) {
		return
	}
	dispatch, err := api.service.SendOTP(c.Request.Context(), payload.Phone)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dealermapper.FromOTPDispatch(dispatch, api.otpEcho))
}

// Post /api/auth/verify-otp
func (api *AuthAPI) VerifyOTP(c *gin.Context) {
	var payload dealermapper.OTPVerification
	if !bindJSON(c, &payload) {
		return
	}
	result, err := api.service.VerifyOTP(c.Request.Context(), payload.Phone, payload.OTP)
	if err != nil {
		respondPortalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dealermapper.FromAuthResult(result))
}

// Get /api/auth/me
func (api *AuthAPI) Me(c *gin.Context) {
	dealer, ok := mustDealer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dealermapper.FromDomainDealer(dealer))
}

// Post /api/auth/logout
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), c.GetString(tokenContextKey)); err != nil {
		respondPortalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return false
	}
	return true
}
