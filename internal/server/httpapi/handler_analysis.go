package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/minibi/internal/analysis"
)

func (s *HTTPServer) summary(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	name, table, err := s.services.Gateway.ReadTable(c.Request.Context(), id, accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	rows, cols := table.Shape()
	ok(c, http.StatusOK, gin.H{
		"filename": name,
		"rows":     rows,
		"columns":  cols,
		"describe": analysis.Describe(table),
	})
}

func (s *HTTPServer) bindQuery(c *gin.Context) (analysis.Query, error) {
	var q analysis.Query
	if c.Request.ContentLength == 0 {
		return q, nil
	}
	return q, bindJSON(c, &q)
}

func (s *HTTPServer) query(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	q, err := s.bindQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	_, table, err := s.services.Gateway.ReadTable(c.Request.Context(), id, accountID(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := analysis.Run(table, q)
	if err != nil {
		s.fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// export replies with the CSV itself when no bucket is configured, and
// with a presigned download link otherwise.
func (s *HTTPServer) export(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	q, err := s.bindQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.services.Export.Export(c.Request.Context(), id, accountID(c), q)
	if err != nil {
		s.fail(c, err)
		return
	}

	if res.URL == "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", res.Payload)
		return
	}
	ok(c, http.StatusOK, res)
}
