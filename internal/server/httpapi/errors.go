package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/minibi/internal/common"
)

var errTooLarge = errors.New("upload too large")

var statuses = []struct {
	err    error
	status int
}{
	{errTooLarge, http.StatusRequestEntityTooLarge},
	{common.ErrValidation, http.StatusBadRequest},
	{common.ErrInvalidName, http.StatusBadRequest},
	{common.ErrParse, http.StatusBadRequest},
	{common.ErrUnknownColumn, http.StatusBadRequest},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrTokenRevoked, http.StatusUnauthorized},
	{common.ErrRefreshTokenExpired, http.StatusUnauthorized},
	{common.ErrNotOwner, http.StatusForbidden},
	{common.ErrSelfShare, http.StatusForbidden},
	{common.ErrUserNotFound, http.StatusNotFound},
	{common.ErrorNotFound, http.StatusNotFound},
	{common.ErrAlreadyExists, http.StatusConflict},
	{common.ErrNameCollision, http.StatusConflict},
	{common.ErrAlreadyShared, http.StatusConflict},
}

func statusFor(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

func message(err error) string {
	if errors.Is(err, errTooLarge) {
		return "The file is too large"
	}
	return common.Message(err)
}

// fail replies with the status and human message for err. Server-side
// failures are attached to the context so the request log carries them.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "message": message(err)})
}

func (s *HTTPServer) abort(c *gin.Context, err error) {
	s.fail(c, err)
	c.Abort()
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func done(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}
