package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/auth"
)

const (
	accountIDKey = "accountID"
	claimsKey    = "claims"
)

// requestID reuses the caller's X-Request-ID or mints one, echoes it and
// stores it in the request context for logging.
func (s *HTTPServer) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"ip", c.ClientIP(),
			"latency", time.Since(start),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			args = append(args, "error", msg)
		}

		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "Request", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "Request", args...)
		default:
			s.logger.Info(ctx, "Request", args...)
		}
	}
}

// accessToken requires "Authorization: Bearer <jwt>" with a valid,
// unrevoked token of an existing account and stores the account id for
// the handlers.
func (s *HTTPServer) accessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			s.abort(c, common.ErrInvalidToken)
			return
		}

		claims, err := auth.ParseToken(parts[1], s.jwtSecret)
		if err != nil {
			s.abort(c, err)
			return
		}

		revoked, err := s.services.Identity.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			s.abort(c, err)
			return
		}
		if revoked {
			s.abort(c, common.ErrTokenRevoked)
			return
		}

		active, err := s.services.Identity.Active(c.Request.Context(), claims.AccountID)
		if err != nil {
			s.abort(c, err)
			return
		}
		if !active {
			s.abort(c, fmt.Errorf("%w: account %d was deleted", common.ErrTokenRevoked, claims.AccountID))
			return
		}

		c.Set(accountIDKey, claims.AccountID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func accountID(c *gin.Context) int64 {
	return c.GetInt64(accountIDKey)
}

func tokenClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}
