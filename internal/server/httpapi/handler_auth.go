package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/minibi/internal/common"
)

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func (s *HTTPServer) register(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	id, err := s.services.Identity.Register(c.Request.Context(), req.Username, req.Secret)
	if err != nil {
		s.fail(c, err)
		return
	}

	ok(c, http.StatusCreated, gin.H{"id": id, "username": req.Username})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	pair, err := s.services.Identity.Login(c.Request.Context(), req.Username, req.Secret)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, pair)
}

func (s *HTTPServer) refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	pair, err := s.services.Identity.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, pair)
}

func (s *HTTPServer) logout(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}
	}

	claims := tokenClaims(c)
	if err := s.services.Identity.Logout(c.Request.Context(), claims.AccountID, claims.ID, claims.ExpiresAt.Time, req.RefreshToken); err != nil {
		s.fail(c, err)
		return
	}
	done(c, "Logged out")
}

func (s *HTTPServer) listUsers(c *gin.Context) {
	names, err := s.services.Identity.ListUsernames(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, names)
}

// deleteAccount removes the caller's account and ends the current session.
func (s *HTTPServer) deleteAccount(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.services.Identity.DeleteAccount(ctx, accountID(c)); err != nil {
		s.fail(c, err)
		return
	}

	claims := tokenClaims(c)
	if err := s.services.Identity.Logout(ctx, claims.AccountID, claims.ID, claims.ExpiresAt.Time, ""); err != nil {
		s.logger.Warn(ctx, "account deleted but token not revoked", "error", err)
	}
	done(c, "Account deleted")
}
