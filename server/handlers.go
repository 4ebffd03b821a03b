package server

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tsawler/takeoff"
	"github.com/tsawler/takeoff/cable"
	"github.com/tsawler/takeoff/model"
	"github.com/tsawler/takeoff/overlay"
	"github.com/tsawler/takeoff/pdfsource"
	"github.com/tsawler/takeoff/scale"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// ExtractResponse is the body returned by POST /extract.
type ExtractResponse struct {
	DrawingRef        string                        `json:"drawingRef"`
	Page              int                           `json:"page"`
	PageWidth         float64                       `json:"pageWidth"`
	PageHeight        float64                       `json:"pageHeight"`
	Scale             string                        `json:"scale"`
	PaperSize         string                        `json:"paperSize"`
	MetresPerUnit     float64                       `json:"metresPerUnit"`
	ColouredLineCount int                           `json:"colouredLineCount"`
	Runs              []model.VectorRun             `json:"runs"`
	ColourSummary     map[string]model.ColourTotals `json:"colourSummary"`
}

// CableRequest is the body accepted by POST /cable. Missing inputs fall
// back to the configured defaults.
type CableRequest struct {
	TrayRuns []model.TrayRun   `json:"trayRuns"`
	Inputs   *model.UserInputs `json:"inputs"`
}

func (s *Server) handleError(c echo.Context, err error, message string, code int) error {
	resp := ErrorResponse{
		Error:         message,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString()[:8],
	}
	if err != nil {
		resp.Error = err.Error()
	}
	s.logger.Info("request rejected",
		zap.String("correlation_id", resp.CorrelationID),
		zap.String("message", message),
		zap.Int("code", code),
		zap.Error(err))
	return c.JSON(code, resp)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "takeoff"})
}

func (s *Server) handleExtract(c echo.Context) error {
	res, err := s.analyzeUpload(c)
	if err != nil || res == nil {
		return err
	}
	return c.JSON(http.StatusOK, ExtractResponse{
		DrawingRef:        res.DrawingRef,
		Page:              res.Page,
		PageWidth:         res.PageWidth,
		PageHeight:        res.PageHeight,
		Scale:             res.Scale,
		PaperSize:         res.PaperSize,
		MetresPerUnit:     res.MetresPerUnit,
		ColouredLineCount: res.ColouredLineCount,
		Runs:              res.VectorRuns,
		ColourSummary:     res.ColourSummary,
	})
}

func (s *Server) handleTakeoff(c echo.Context) error {
	res, err := s.analyzeUpload(c)
	if err != nil || res == nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleCable(c echo.Context) error {
	var req CableRequest
	if err := c.Bind(&req); err != nil {
		return s.handleError(c, err, "Invalid cable request body", http.StatusBadRequest)
	}
	in := s.settings.Inputs
	if req.Inputs != nil {
		in = *req.Inputs
	}
	if in.NumberOfCircuits < 0 || in.AdditionalCablePercent < 0 || in.ExtraDropPerFittingM < 0 || in.FirstPointRunLengthM < 0 {
		return s.handleError(c, nil, "Cable inputs must not be negative", http.StatusBadRequest)
	}
	return c.JSON(http.StatusOK, cable.Calculate(req.TrayRuns, in))
}

func (s *Server) handleOverlay(c echo.Context) error {
	var res model.Result
	if err := c.Bind(&res); err != nil {
		return s.handleError(c, err, "Invalid result body", http.StatusBadRequest)
	}

	if strings.EqualFold(c.QueryParam("format"), "png") {
		width := overlay.MaxPNGWidth / 4
		if w := c.QueryParam("width"); w != "" {
			n, err := strconv.Atoi(w)
			if err != nil {
				return s.handleError(c, err, "Invalid width", http.StatusBadRequest)
			}
			width = n
		}
		png, err := overlay.RenderPNG(&res, width)
		if err != nil {
			return s.handleError(c, err, "Failed to render overlay", http.StatusBadRequest)
		}
		return c.Blob(http.StatusOK, "image/png", png)
	}

	svg, err := overlay.RenderSVG(&res)
	if err != nil {
		return s.handleError(c, err, "Failed to render overlay", http.StatusInternalServerError)
	}
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(svg))
}

// analyzeUpload reads the multipart PDF and query parameters and returns
// the (possibly cached) result. A nil result means an error response has
// already been written.
func (s *Server) analyzeUpload(c echo.Context) (*model.Result, error) {
	req, err := parseRequest(c)
	if err != nil {
		return nil, s.handleError(c, err, "Invalid query parameters", http.StatusBadRequest)
	}
	defaults := s.settings.ScaleOverrides()
	if req.Overrides.Ratio == 0 {
		req.Overrides.Ratio = defaults.Ratio
	}
	if req.Overrides.PaperSize == "" {
		req.Overrides.PaperSize = defaults.PaperSize
	}

	fh, err := c.FormFile("pdf")
	if err != nil {
		return nil, s.handleError(c, err, "No PDF file uploaded. Send as multipart form with field name 'pdf'", http.StatusBadRequest)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, s.handleError(c, err, "Failed to read upload", http.StatusBadRequest)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.settings.Server.MaxBytes+1))
	if err != nil {
		return nil, s.handleError(c, err, "Failed to read upload", http.StatusBadRequest)
	}
	if int64(len(data)) > s.settings.Server.MaxBytes {
		return nil, s.handleError(c, nil, "PDF file is too large", http.StatusRequestEntityTooLarge)
	}
	if len(data) < pdfsource.MinPDFSize {
		return nil, s.handleError(c, pdfsource.ErrTooSmall, "PDF file appears to be empty or too small", http.StatusBadRequest)
	}

	key := cacheKey(data, req)
	if cached, ok := s.results.Get(key); ok {
		s.metrics.RecordCache(true)
		return cached.(*model.Result), nil
	}
	s.metrics.RecordCache(false)

	doc, err := pdfsource.Load(data)
	if err != nil {
		return nil, s.handleError(c, err, "Failed to open PDF", http.StatusBadRequest)
	}
	defer doc.Close()

	count, err := doc.PageCount()
	if err != nil {
		return nil, s.handleError(c, err, "Failed to read PDF pages", http.StatusBadRequest)
	}
	if req.Page > count {
		err := fmt.Errorf("%w: page %d of %d", pdfsource.ErrPageOutOfRange, req.Page, count)
		return nil, s.handleError(c, err, fmt.Sprintf("Page %d out of range (document has %d pages)", req.Page, count), http.StatusBadRequest)
	}

	start := time.Now()
	res, err := s.analyzer.AnalyzeDocument(c.Request().Context(), doc, req)
	if err != nil {
		return nil, s.handleError(c, err, "Analysis cancelled", http.StatusServiceUnavailable)
	}
	s.metrics.ObserveResult(res, time.Since(start))

	s.results.SetDefault(key, res)
	return res, nil
}

// parseRequest reads page, scale, paper_size and ref from the query.
func parseRequest(c echo.Context) (takeoff.Request, error) {
	req := takeoff.Request{DrawingRef: c.QueryParam("ref"), Page: 1}

	if p := c.QueryParam("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return req, fmt.Errorf("%w: %q", pdfsource.ErrPageOutOfRange, p)
		}
		req.Page = n
	}

	if sc := c.QueryParam("scale"); sc != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(sc, "1:"))
		if err != nil || n <= 0 {
			return req, fmt.Errorf("invalid scale %q", sc)
		}
		req.Overrides.Ratio = n
	}

	if paper := c.QueryParam("paper_size"); paper != "" {
		if !scale.ValidPaper(paper) {
			return req, fmt.Errorf("invalid paper size %q", paper)
		}
		req.Overrides.PaperSize = strings.ToUpper(paper)
	}
	return req, nil
}

// cacheKey identifies a result by the PDF content and everything in the
// request that changes the analysis.
func cacheKey(data []byte, req takeoff.Request) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s|%d|%d|%s|%s", hex.EncodeToString(sum[:]), req.Page, req.Overrides.Ratio, req.Overrides.PaperSize, req.DrawingRef)
}
