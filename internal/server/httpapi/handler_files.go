package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/server/models"
)

func (s *HTTPServer) listFiles(c *gin.Context) {
	files, err := s.services.Files.List(c.Request.Context(), accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, mapSlice(files, toFileDTO))
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// uploadFile takes a multipart form with the CSV in "file". An optional
// "filename" field overrides the uploaded name.
func (s *HTTPServer) uploadFile(c *gin.Context) {
	if s.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			s.fail(c, errTooLarge)
			return
		}
		s.fail(c, fmt.Errorf("%w: missing or invalid file", common.ErrValidation))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, err)
		return
	}

	name := header.Filename
	if override := c.PostForm("filename"); override != "" {
		name = override
	}

	file, err := s.services.Files.Save(c.Request.Context(), accountID(c), name, payload)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, toFileDTO(file))
}

func (s *HTTPServer) readFile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	name, payload, found, err := s.services.Gateway.ReadFileDocument(c.Request.Context(), id, accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !found {
		s.fail(c, common.ErrorNotFound)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

func (s *HTTPServer) renameFile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req renameRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, err)
		return
	}

	if err := s.services.Files.Rename(c.Request.Context(), id, accountID(c), req.FileName); err != nil {
		s.fail(c, err)
		return
	}
	done(c, "File renamed")
}

func (s *HTTPServer) deleteFile(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	deleted, err := s.services.Files.Delete(c.Request.Context(), id, accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	if !deleted {
		s.fail(c, common.ErrorNotFound)
		return
	}
	done(c, "File deleted")
}

func (s *HTTPServer) sharedFiles(c *gin.Context) {
	files, err := s.services.Sharing.ListSharedFilesFor(c.Request.Context(), accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, mapSlice(files, func(f *models.SharedFile) sharedFileDTO {
		return sharedFileDTO{ID: f.FileID, FileName: f.FileName, UploadedAt: f.UploadedAt, Owner: f.OwnerUserName, GrantedAt: f.GrantedAt}
	}))
}
