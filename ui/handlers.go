package ui

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lumos/app"
	"lumos/domain/assay"
	"lumos/domain/datareadiness/profiling"
	"lumos/domain/stage"
	"lumos/domain/table"
	"lumos/internal/errors"
	"lumos/internal/pipeline"
	"lumos/internal/plot"
	"lumos/ui/middleware"
)

// Response headers of the plot endpoint
const (
	HeaderPlotTitle    = "X-Plot-Title"
	HeaderPlotWarnings = "X-Plot-Warnings"
)

type analyzeForm struct {
	Delimiter  string `form:"delimiter"`
	Variables  string `form:"variables"`
	Export     bool   `form:"export"`
	X          string `form:"x"`
	Continuous bool   `form:"continuous"`
	Color      string `form:"color"`
	Facet      string `form:"facet"`
	LogX       bool   `form:"log_x"`
}

type plotForm struct {
	Delimiter  string `form:"delimiter"`
	Variables  string `form:"variables"`
	X          string `form:"x" binding:"required"`
	Y          string `form:"y" binding:"required"`
	Color      string `form:"color"`
	Facet      string `form:"facet"`
	FacetValue string `form:"facet_value"`
	LogX       bool   `form:"log_x"`
	Continuous bool   `form:"continuous"`
	Kind       string `form:"kind" binding:"omitempty,oneof=scatter+trend box"`
}

// TableResponse is a table as display strings; NaN and Inf cells keep their
// text markers since JSON numbers cannot carry them.
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// AnalyzeResponse is the JSON body of POST /api/v1/analyze
type AnalyzeResponse struct {
	RunID         string                    `json:"run_id"`
	Delimiter     string                    `json:"delimiter"`
	Variables     []string                  `json:"variables"`
	Measures      []string                  `json:"measures"`
	Profile       []profiling.ColumnProfile `json:"profile"`
	Raw           TableResponse             `json:"raw"`
	Normalized    TableResponse             `json:"normalized"`
	Statistics    TableResponse             `json:"statistics"`
	Anomalies     []assay.Anomaly           `json:"anomalies"`
	AnomalyCounts map[assay.AnomalyKind]int `json:"anomaly_counts"`
	Audit         []stage.StageAudit        `json:"audit"`
	Export        *app.ExportSummary        `json:"export,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var form analyzeForm
	if err := c.ShouldBind(&form); err != nil {
		s.respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "invalid form"))
		return
	}
	result, ok := s.analyzeUpload(c, app.AnalyzeRequest{Delimiter: form.Delimiter, Variables: form.Variables})
	if !ok {
		return
	}

	resp, err := newAnalyzeResponse(result)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to build response"))
		return
	}
	resp.Profile = s.service.Profile(result)

	if form.Export {
		var plots *app.PlotRequest
		if form.X != "" {
			plots = &app.PlotRequest{X: form.X, Continuous: form.Continuous, Color: form.Color, Facet: form.Facet, LogX: form.LogX}
		}
		summary, err := s.service.Export(c.Request.Context(), result, s.config.Output.Dir, plots)
		if err != nil {
			s.respondError(c, err)
			return
		}
		resp.Export = summary
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePlot(c *gin.Context) {
	var form plotForm
	if err := c.ShouldBind(&form); err != nil {
		s.respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "invalid plot selection"))
		return
	}
	result, ok := s.analyzeUpload(c, app.AnalyzeRequest{Delimiter: form.Delimiter, Variables: form.Variables})
	if !ok {
		return
	}

	kind := plot.Kind(form.Kind)
	if kind == "" {
		kind = plot.KindFor(form.Continuous)
	}
	sel := plot.Selection{X: form.X, Y: form.Y, Color: form.Color, Facet: form.Facet, LogX: form.LogX, Kind: kind}

	var buf bytes.Buffer
	fig, err := s.service.RenderPlot(&buf, result, sel, form.FacetValue)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header(HeaderPlotTitle, fig.Title)
	if len(fig.Warnings) > 0 {
		c.Header(HeaderPlotWarnings, strings.Join(fig.Warnings, "; "))
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// analyzeUpload runs the pipeline on the multipart "file" field. It writes
// the error response itself and reports whether the caller may continue.
func (s *Server) analyzeUpload(c *gin.Context, req app.AnalyzeRequest) (*pipeline.Result, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": "upload exceeds the size limit",
				"code":  errors.CodeInvalidInput,
			})
			return nil, false
		}
		s.respondError(c, errors.InvalidInput("a CSV file is required in the \"file\" field"))
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		s.respondError(c, errors.Wrap(err, "failed to open upload"))
		return nil, false
	}
	defer file.Close()

	result, err := s.service.Analyze(c.Request.Context(), file, req)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return result, true
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Warn("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error":      err.Error(),
		"code":       errors.GetCode(err),
		"request_id": middleware.GetRequestID(c),
	})
}

func newAnalyzeResponse(result *pipeline.Result) (*AnalyzeResponse, error) {
	statistics, err := result.AggregateTable()
	if err != nil {
		return nil, err
	}
	anomalies := result.Anomalies
	if anomalies == nil {
		anomalies = []assay.Anomaly{}
	}
	return &AnalyzeResponse{
		RunID:         result.RunID.String(),
		Delimiter:     result.Schema.Delimiter().String(),
		Variables:     result.Schema.Names(),
		Measures:      result.Aggregate.Measures,
		Raw:           tableResponse(result.Raw),
		Normalized:    tableResponse(result.Enriched),
		Statistics:    tableResponse(statistics),
		Anomalies:     anomalies,
		AnomalyCounts: assay.CountByKind(result.Anomalies),
		Audit:         result.Audit,
	}, nil
}

func tableResponse(t *table.Table) TableResponse {
	records := t.Records()
	return TableResponse{Columns: records[0], Rows: records[1:]}
}
