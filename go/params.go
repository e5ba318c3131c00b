package portalserver

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/Apurer/cement-dealer-portal/internal/shared/errors"
)

// IdempotencyKeyHeader lets clients retry POST /api/orders safely.
const IdempotencyKeyHeader = "Idempotency-Key"

func bindPathParam(c *gin.Context, name string, dest any) bool {
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, c.Param(name), dest)
	if err != nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{name: err.Error()}).
			WithDetail(fmt.Sprintf("invalid format for parameter %s", name)))
		return false
	}
	return true
}

func bindQueryParam(c *gin.Context, name string, required bool, dest any) bool {
	err := runtime.BindQueryParameter("form", true, required, name, c.Request.URL.Query(), dest)
	if err != nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{name: err.Error()}).
			WithDetail(fmt.Sprintf("invalid format for parameter %s", name)))
		return false
	}
	return true
}

// optionalHeader binds a header when present and leaves dest untouched otherwise.
func optionalHeader(c *gin.Context, name string, dest *string) bool {
	raw := c.GetHeader(name)
	if raw == "" {
		return true
	}
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationHeader, raw, dest)
	if err != nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{name: err.Error()}).
			WithDetail(fmt.Sprintf("invalid format for header %s", name)))
		return false
	}
	return true
}
