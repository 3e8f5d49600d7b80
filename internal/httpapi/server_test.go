package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yashubustudio/clinicalreport/internal/app"
	"yashubustudio/clinicalreport/internal/config"
	"yashubustudio/clinicalreport/labeler"
	"yashubustudio/clinicalreport/qa"
)

type stubEngine struct {
	answer qa.Answer
	err    error
}

func (s stubEngine) Answer(context.Context, string, string) (qa.Answer, error) {
	return s.answer, s.err
}

func (stubEngine) Close() error { return nil }

func setupTestServer(t *testing.T, engine app.AnswerEngine) *Server {
	t.Helper()
	dict := labeler.NewDictionary(map[labeler.Category][]string{
		labeler.Cardiomegaly: {"cardiomegaly"},
		labeler.Edema:        {"edema"},
	})
	return newTestServer(t, config.Default(), dict, engine)
}

func newTestServer(t *testing.T, cfg config.Config, dict *labeler.Dictionary, engine app.AnswerEngine) *Server {
	t.Helper()
	svc, err := app.NewService(cfg, zap.NewNop(),
		app.WithDictionary(dict),
		app.WithAnswerer(engine),
	)
	require.NoError(t, err)
	server, err := NewServer(svc, zap.NewNop(), config.ServerConfig{})
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("fills default address", func(t *testing.T) {
		server := setupTestServer(t, stubEngine{})
		assert.Equal(t, "localhost:8080", server.config.Addr())
	})

	t.Run("returns error when analyzer is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), config.ServerConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "analyzer cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t, stubEngine{})
	rec := doJSON(t, server, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestHandleExamples(t *testing.T) {
	server := setupTestServer(t, stubEngine{})
	rec := doJSON(t, server, http.MethodGet, "/api/v1/examples", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ExamplesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Reports, 2)
	assert.Len(t, resp.QA, 2)
}

func TestHandleLabels(t *testing.T) {
	server := setupTestServer(t, stubEngine{})

	t.Run("labels report", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/labels", LabelsRequest{
			Report: "Mild cardiomegaly.\nNo edema.",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LabelsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []labeler.Category{labeler.Cardiomegaly}, resp.Present)
		assert.Len(t, resp.Observations, len(labeler.Categories()))
		require.Len(t, resp.Mentions, 1)
		assert.Equal(t, "cardiomegaly", resp.Mentions[0].Phrase)
	})

	t.Run("blank report is a bad request", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/labels", LabelsRequest{Report: "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Please enter a clinical report.", resp.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/labels", strings.NewReader("{"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCleanupDefaultsToConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Labels.Cleanup = false
	dict := labeler.NewDictionary(map[labeler.Category][]string{
		labeler.LungLesion: {"mass or lesion"},
	})
	server := newTestServer(t, cfg, dict, stubEngine{})
	report := "Right upper lobe mass/lesion."

	t.Run("labels", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/labels", LabelsRequest{Report: report})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp LabelsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Empty(t, resp.Present)

		enabled := true
		rec = doJSON(t, server, http.MethodPost, "/api/v1/labels", LabelsRequest{Report: report, Cleanup: &enabled})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []labeler.Category{labeler.LungLesion}, resp.Present)
	})

	t.Run("batch", func(t *testing.T) {
		body, ctype := multipartBody(t, "reports.csv", "Report Impression\n"+report+"\n", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batch", body)
		req.Header.Set(echo.HeaderContentType, ctype)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "True")
	})
}

func TestHandleAnswer(t *testing.T) {
	t.Run("returns span", func(t *testing.T) {
		server := setupTestServer(t, stubEngine{answer: qa.Answer{Text: "pharma", Span: qa.Span{Start: 12, End: 12}, Score: 4.5}})
		rec := doJSON(t, server, http.MethodPost, "/api/v1/answer", AnswerRequest{Passage: "p", Question: "q"})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp AnswerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "pharma", resp.Answer)
		assert.True(t, resp.Found)
		assert.Equal(t, 12, resp.Start)
		assert.InDelta(t, 4.5, resp.Score, 1e-9)
	})

	t.Run("missing question", func(t *testing.T) {
		server := setupTestServer(t, stubEngine{})
		rec := doJSON(t, server, http.MethodPost, "/api/v1/answer", AnswerRequest{Passage: "p"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter both passage and question.")
	})

	t.Run("question too long is a bad request", func(t *testing.T) {
		server := setupTestServer(t, stubEngine{err: qa.ErrQuestionTooLong})
		rec := doJSON(t, server, http.MethodPost, "/api/v1/answer", AnswerRequest{Passage: "p", Question: "q"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "The question is too long for the model input.", resp.Error)
	})

	t.Run("engine failure is a server error", func(t *testing.T) {
		server := setupTestServer(t, stubEngine{err: assert.AnError})
		rec := doJSON(t, server, http.MethodPost, "/api/v1/answer", AnswerRequest{Passage: "p", Question: "q"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, strings.HasPrefix(resp.Error, "Error: "))
	})
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandleBatch(t *testing.T) {
	server := setupTestServer(t, stubEngine{})

	t.Run("returns csv attachment", func(t *testing.T) {
		body, ctype := multipartBody(t, "reports.csv", "Report Impression\ncardiomegaly.\nclear lungs.\n", map[string]string{"cleanup": "false"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batch", body)
		req.Header.Set(echo.HeaderContentType, ctype)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "batch_results_")
		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "Report_ID,Cardiomegaly,"))
		assert.True(t, strings.HasPrefix(lines[1], "0,True,"))
		assert.True(t, strings.HasPrefix(lines[2], "1,False,"))
	})

	t.Run("missing column", func(t *testing.T) {
		body, ctype := multipartBody(t, "reports.csv", "Findings\nclear\n", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batch", body)
		req.Header.Set(echo.HeaderContentType, ctype)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Report Impression")
	})

	t.Run("missing file", func(t *testing.T) {
		body, ctype := multipartBody(t, "", "", map[string]string{"cleanup": "true"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/batch", body)
		req.Header.Set(echo.HeaderContentType, ctype)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please upload a CSV file.")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, stubEngine{})
	doJSON(t, server, http.MethodPost, "/api/v1/labels", LabelsRequest{Report: "edema"})

	rec := doJSON(t, server, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `clinicalreport_pipeline_requests_total{outcome="ok",pipeline="labels"}`)
	assert.Contains(t, rec.Body.String(), "clinicalreport_pipeline_duration_seconds")
}
