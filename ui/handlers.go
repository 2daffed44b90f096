package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"abkpi/adapters/excel"
	"abkpi/app"
	"abkpi/domain/core"
	"abkpi/internal/config"
	"abkpi/internal/errors"
	"abkpi/internal/insights"

	"github.com/gin-gonic/gin"
)

// fileMetadata tags the uploaded file at the same position.
type fileMetadata struct {
	Country     string `json:"country"`
	ReportOrder string `json:"reportOrder"`
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.respondError(c, errors.InvalidInput("expected a multipart form"))
		return
	}

	cfg, err := config.ParseAnalysisConfig([]byte(c.PostForm("config")))
	if err != nil {
		s.respondError(c, err)
		return
	}

	var meta []fileMetadata
	if raw := c.PostForm("fileMetadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			s.respondError(c, errors.InvalidInput("fileMetadata must be a JSON array"))
			return
		}
	}

	headers := form.File["files[]"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		s.respondError(c, errors.InvalidInput("no files uploaded"))
		return
	}

	inputs := make([]app.FileInput, 0, len(headers))
	for i, fh := range headers {
		data, err := readUpload(fh)
		if err != nil {
			s.respondError(c, errors.InvalidInput(fmt.Sprintf("cannot read upload %s: %v", fh.Filename, err)))
			return
		}
		in := app.FileInput{Name: fh.Filename, Data: data}
		if i < len(meta) {
			in.Country = meta[i].Country
			in.ReportOrder = meta[i].ReportOrder
		}
		inputs = append(inputs, in)
	}

	run, err := s.service.Analyze(c.Request.Context(), cfg, inputs)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleDetectCountry(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, errors.InvalidInput("missing file"))
		return
	}
	data, err := readUpload(fh)
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}
	det, err := s.service.DetectCountry(c.Request.Context(), app.FileInput{Name: fh.Filename, Data: data})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, det)
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		s.respondError(c, errors.InvalidInput("limit must be a non-negative integer"))
		return
	}
	runs, err := s.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) runID(c *gin.Context) (core.RunID, bool) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return "", false
	}
	return id, true
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	run, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleRunInsights(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	run, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", insights.RenderHTML(run.Insights.Markdown))
}

func (s *Server) handleRunExcel(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	exp, err := s.service.Export(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteWorkbook(&buf, exp); err != nil {
		s.respondError(c, errors.Wrap(err, "failed to build workbook"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.xlsx"`, id))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
