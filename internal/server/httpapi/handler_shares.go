package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/minibi/internal/server/models"
)

const (
	kindNote = models.KindNote
	kindFile = models.KindFile
)

func (s *HTTPServer) share(kind models.ArtifactKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		var req shareRequest
		if err := bindJSON(c, &req); err != nil {
			s.fail(c, err)
			return
		}

		ctx := c.Request.Context()
		if kind == kindNote {
			err = s.services.Sharing.ShareNote(ctx, id, accountID(c), req.Username)
		} else {
			err = s.services.Sharing.ShareFile(ctx, id, accountID(c), req.Username)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": fmt.Sprintf("Shared with %s", req.Username)})
	}
}

func (s *HTTPServer) listGrants(kind models.ArtifactKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}

		grants, err := s.services.Sharing.ListGrants(c.Request.Context(), kind, id, accountID(c))
		if err != nil {
			s.fail(c, err)
			return
		}
		ok(c, http.StatusOK, mapSlice(grants, func(g *models.Grant) grantDTO {
			return grantDTO{Username: g.TargetUserName, GrantedAt: g.GrantedAt}
		}))
	}
}

func (s *HTTPServer) revoke(kind models.ArtifactKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		target := c.Param("username")

		var removed bool
		ctx := c.Request.Context()
		if kind == kindNote {
			removed, err = s.services.Sharing.RevokeNote(ctx, id, accountID(c), target)
		} else {
			removed, err = s.services.Sharing.RevokeFile(ctx, id, accountID(c), target)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		if !removed {
			done(c, fmt.Sprintf("Not shared with %s", target))
			return
		}
		done(c, fmt.Sprintf("No longer shared with %s", target))
	}
}
