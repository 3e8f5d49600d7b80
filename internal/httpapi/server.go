// Package httpapi exposes the labeling and question answering pipelines
// over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"yashubustudio/clinicalreport/internal/app"
	"yashubustudio/clinicalreport/internal/batch"
	"yashubustudio/clinicalreport/internal/config"
)

// Analyzer is the pipeline surface served over HTTP. *app.Service
// satisfies it.
type Analyzer interface {
	Config() config.Config
	ExtractLabels(ctx context.Context, report string, cleanup bool) (app.LabelResult, error)
	Answer(ctx context.Context, passage, question string) (app.AnswerResult, error)
	ProcessBatch(ctx context.Context, input, output string, cleanup bool) (batch.Result, error)
}

// Server provides the HTTP endpoints.
type Server struct {
	echo     *echo.Echo
	analyzer Analyzer
	logger   *zap.Logger
	config   config.ServerConfig
}

// NewServer creates a server with routes and middleware registered.
func NewServer(analyzer Analyzer, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.BodyLimit("32M"))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	})

	s := &Server{echo: e, analyzer: analyzer, logger: logger, config: cfg}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/examples", s.handleExamples)
	v1.POST("/labels", s.handleLabels)
	v1.POST("/answer", s.handleAnswer)
	v1.POST("/batch", s.handleBatch)
}

// LabelsRequest is the request body for POST /api/v1/labels. Cleanup
// defaults to the labels.cleanup setting.
type LabelsRequest struct {
	Report  string `json:"report"`
	Cleanup *bool  `json:"cleanup,omitempty"`
}

// LabelsResponse is the response body for POST /api/v1/labels.
type LabelsResponse struct {
	app.LabelResult
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// AnswerRequest is the request body for POST /api/v1/answer.
type AnswerRequest struct {
	Passage  string `json:"passage"`
	Question string `json:"question"`
}

// AnswerResponse is the response body for POST /api/v1/answer.
type AnswerResponse struct {
	Answer         string  `json:"answer"`
	Found          bool    `json:"found"`
	Start          int     `json:"start"`
	End            int     `json:"end"`
	Score          float64 `json:"score"`
	Truncated      bool    `json:"truncated"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// ExamplesResponse is the response body for GET /api/v1/examples.
type ExamplesResponse struct {
	Reports []app.Example   `json:"reports"`
	QA      []app.QAExample `json:"qa"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries a displayable error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleExamples(c echo.Context) error {
	return c.JSON(http.StatusOK, ExamplesResponse{Reports: app.ExampleReports(), QA: app.QAExamples()})
}

func (s *Server) handleLabels(c echo.Context) error {
	var req LabelsRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid labels request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	cleanup := s.analyzer.Config().Labels.Cleanup
	if req.Cleanup != nil {
		cleanup = *req.Cleanup
	}

	start := time.Now()
	res, err := s.analyzer.ExtractLabels(c.Request().Context(), req.Report, cleanup)
	s.observe(pipelineLabels, start, err)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, LabelsResponse{LabelResult: res, ElapsedSeconds: res.Elapsed.Seconds()})
}

func (s *Server) handleAnswer(c echo.Context) error {
	var req AnswerRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid answer request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	start := time.Now()
	res, err := s.analyzer.Answer(c.Request().Context(), req.Passage, req.Question)
	s.observe(pipelineAnswer, start, err)
	if err != nil {
		return s.fail(c, err)
	}
	ans := res.Answer
	return c.JSON(http.StatusOK, AnswerResponse{
		Answer:         ans.Text,
		Found:          ans.Found(),
		Start:          ans.Span.Start,
		End:            ans.Span.End,
		Score:          ans.Score,
		Truncated:      ans.Truncated,
		ElapsedSeconds: res.Elapsed.Seconds(),
	})
}

// handleBatch labels an uploaded CSV and returns the result matrix as a
// CSV attachment.
func (s *Server) handleBatch(c echo.Context) error {
	start := time.Now()
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = app.ErrMissingUpload
		} else {
			err = fmt.Errorf("%w: %v", app.ErrMissingUpload, err)
		}
		s.observe(pipelineBatch, start, err)
		return s.fail(c, err)
	}
	cleanup := s.analyzer.Config().Labels.Cleanup
	if v := strings.TrimSpace(c.FormValue("cleanup")); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cleanup flag")
		}
		cleanup = parsed
	}

	dir, err := os.MkdirTemp("", "clinicalreport-batch-")
	if err != nil {
		s.observe(pipelineBatch, start, err)
		return s.fail(c, fmt.Errorf("create work dir: %w", err))
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "upload"+uploadExt(fh.Filename))
	if err := saveUpload(fh, input); err != nil {
		s.observe(pipelineBatch, start, err)
		return s.fail(c, err)
	}
	output := batch.DefaultOutputPath(dir, start)
	res, err := s.analyzer.ProcessBatch(c.Request().Context(), input, output, cleanup)
	s.observe(pipelineBatch, start, err)
	if err != nil {
		return s.fail(c, err)
	}
	s.logger.Info("batch served", zap.String("upload", fh.Filename), zap.Int("rows", res.Rows))
	return c.Attachment(res.OutputPath, filepath.Base(res.OutputPath))
}

func uploadExt(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		return ".tsv"
	}
	return ".csv"
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create upload copy: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return fmt.Errorf("copy upload: %w", err)
	}
	return f.Close()
}

func (s *Server) observe(pipeline string, start time.Time, err error) {
	outcome := outcomeOK
	switch {
	case err == nil:
	case app.IsValidation(err):
		outcome = outcomeInvalid
	default:
		outcome = outcomeError
	}
	PipelineRequests.WithLabelValues(pipeline, outcome).Inc()
	PipelineDuration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
}

func (s *Server) fail(c echo.Context, err error) error {
	if app.IsValidation(err) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: app.Message(err)})
	}
	s.logger.Error("pipeline failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: app.Message(err)})
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
