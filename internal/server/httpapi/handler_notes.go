package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/server/models"
)

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", common.ErrValidation, c.Param("id"))
	}
	return id, nil
}

func (s *HTTPServer) listNotes(c *gin.Context) {
	me := accountID(c)
	notes, err := s.services.Notes.List(c.Request.Context(), me)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, mapSlice(notes, func(n *models.Note) noteDTO { return toNoteDTO(n, me) }))
}

func (s *HTTPServer) createNote(c *gin.Context) {
	var req contentRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	me := accountID(c)
	note, err := s.services.Notes.Create(c.Request.Context(), me, req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, toNoteDTO(note, me))
}

func (s *HTTPServer) readNote(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	me := accountID(c)
	note, found, err := s.services.Gateway.ReadNoteForAccount(c.Request.Context(), id, me)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		s.fail(c, common.ErrorNotFound)
		return
	}
	ok(c, http.StatusOK, toNoteDTO(note, me))
}

func (s *HTTPServer) editNote(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req contentRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.services.Notes.Edit(c.Request.Context(), id, accountID(c), req.Content); err != nil {
		s.fail(c, err)
		return
	}
	done(c, "Note updated")
}

// deleteNote answers 404 for both a missing note and someone else's note.
func (s *HTTPServer) deleteNote(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	deleted, err := s.services.Notes.Delete(c.Request.Context(), id, accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !deleted {
		s.fail(c, common.ErrorNotFound)
		return
	}
	done(c, "Note deleted")
}

func (s *HTTPServer) sharedNotes(c *gin.Context) {
	notes, err := s.services.Sharing.ListSharedNotesFor(c.Request.Context(), accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, mapSlice(notes, func(n *models.SharedNote) sharedNoteDTO {
		return sharedNoteDTO{ID: n.NoteID, Content: n.Content, CreatedAt: n.CreatedAt, Owner: n.OwnerUserName, GrantedAt: n.GrantedAt}
	}))
}
