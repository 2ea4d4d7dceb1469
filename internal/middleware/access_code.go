package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cyberlab-events/backend/pkg/response"
)

// HeaderAccessCode carries the attendee's 6-digit code on gated requests.
const HeaderAccessCode = "X-Access-Code"

// CodeValidator checks a submitted access code against the ledger.
type CodeValidator interface {
	IsValid(ctx context.Context, code string) (bool, error)
}

// AccessCode returns a middleware gating workshop content behind a valid
// access code. The code is read from the X-Access-Code header (falling back
// to the "code" query param for direct download links). Validity is the
// ledger's global check: any attendee's current code passes.
func AccessCode(validator CodeValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.GetHeader(HeaderAccessCode)
		if code == "" {
			code = c.Query("code")
		}
		if code == "" {
			response.Unauthorized(c, "access code required")
			c.Abort()
			return
		}
		ok, err := validator.IsValid(c.Request.Context(), code)
		if err != nil {
			response.Internal(c, "failed to verify access code")
			c.Abort()
			return
		}
		if !ok {
			response.Unauthorized(c, "invalid access code")
			c.Abort()
			return
		}
		c.Next()
	}
}
