package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mikele-Kochas/SmartNotebook/internal/config"
	"github.com/Mikele-Kochas/SmartNotebook/internal/model"
	"github.com/Mikele-Kochas/SmartNotebook/internal/prompt"
	"github.com/Mikele-Kochas/SmartNotebook/internal/service"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/xerr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct {
	output  string
	err     error
	calls   int
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, p string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, p)
	return g.output, g.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.CORS = config.CORSConfig{
		AllowedOrigins:   []string{"capacitor://localhost", "http://localhost:8100"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	cfg.Security.Enabled = true
	cfg.MCP.Path = "/mcp"
	return cfg
}

func newTestRouter(t *testing.T, gen *stubGenerator) *gin.Engine {
	t.Helper()
	builder, err := prompt.New("en")
	require.NoError(t, err)
	svc := service.NewNoteService(builder, gen)
	return NewRouter(testConfig(), NewNoteHandler(svc), nil)
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRevise_Success(t *testing.T) {
	gen := &stubGenerator{output: "The cat sat."}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/revise", `{"content":"Teh cat sat.","mode":"light"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"revisedContent":"The cat sat."}`, w.Body.String())
	assert.Equal(t, 1, gen.calls)
	assert.True(t, strings.HasSuffix(gen.prompts[0], "Teh cat sat."))
}

func TestRevise_APIPrefix(t *testing.T) {
	gen := &stubGenerator{output: "ok"}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/api/revise", `{"content":"x","mode":"deep"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevise_CustomWithoutPrompt(t *testing.T) {
	gen := &stubGenerator{output: "unused"}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/revise", `{"content":"x","mode":"custom"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(xerr.MissingInstruction), resp.Kind)
	assert.NotEmpty(t, resp.Error)
	assert.Equal(t, 0, gen.calls)
}

func TestRevise_MissingContent(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	w := doJSON(r, http.MethodPost, "/revise", `{"mode":"light"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(xerr.MissingField), resp.Kind)
	assert.Contains(t, resp.Error, "content")
}

func TestRevise_InvalidMode(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	w := doJSON(r, http.MethodPost, "/revise", `{"content":"x","mode":"shout"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(xerr.InvalidMode), decodeError(t, w).Kind)
}

func TestRevise_MalformedJSON(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	w := doJSON(r, http.MethodPost, "/revise", `{"content":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(xerr.MalformedRequest), decodeError(t, w).Kind)
}

func TestRevise_WrongContentType(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/revise", strings.NewReader(`{"content":"x","mode":"light"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(xerr.MalformedRequest), decodeError(t, w).Kind)
}

func TestRevise_ContentTypeWithCharset(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{output: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/revise", strings.NewReader(`{"content":"x","mode":"light"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevise_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	w := doJSON(r, http.MethodGet, "/revise", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, string(xerr.MethodNotAllowed), decodeError(t, w).Kind)
}

func TestRevise_Blocked(t *testing.T) {
	gen := &stubGenerator{err: xerr.New(xerr.GenerationBlocked, "response blocked due to: SAFETY")}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/revise", `{"content":"x","mode":"light"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(xerr.GenerationBlocked), resp.Kind)
	assert.Equal(t, "failed to revise note", resp.Error)
	assert.Contains(t, resp.Details, "SAFETY")
}

func TestRevise_GenerationFailed(t *testing.T) {
	gen := &stubGenerator{err: xerr.New(xerr.GenerationFailed, "generation timed out")}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/revise", `{"content":"x","mode":"light"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(xerr.GenerationFailed), resp.Kind)
	assert.Equal(t, "generation timed out", resp.Details)
}

func TestSynthesize_Summary(t *testing.T) {
	gen := &stubGenerator{output: "- A\n- B"}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/synthesize",
		`{"mode":"summary","notes":[{"id":1,"content":"A"},{"id":2,"content":"B"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"synthesizedContent":"- A\n- B"}`, w.Body.String())

	p := gen.prompts[0]
	assert.Less(t, strings.Index(p, "--- Document 1 ---"), strings.Index(p, "--- Document 2 ---"))
	assert.NotContains(t, p, "Title:")
}

func TestSynthesize_OneNote(t *testing.T) {
	gen := &stubGenerator{output: "unused"}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/synthesize", `{"mode":"summary","notes":[{"content":"A"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(xerr.InsufficientDocuments), decodeError(t, w).Kind)
	assert.Equal(t, 0, gen.calls)
}

func TestSynthesize_NonStringContent(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	w := doJSON(r, http.MethodPost, "/synthesize",
		`{"mode":"summary","notes":[{"content":"A"},{"content":{"text":"B"}}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(xerr.InvalidDocument), decodeError(t, w).Kind)
}

func TestSynthesize_NonStringTitle(t *testing.T) {
	gen := &stubGenerator{output: "unused"}
	r := newTestRouter(t, gen)

	w := doJSON(r, http.MethodPost, "/synthesize",
		`{"mode":"summary","notes":[{"title":5,"content":"A"},{"content":"B"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, string(xerr.InvalidDocument), resp.Kind)
	assert.Contains(t, resp.Error, "'title' must be a string")
	assert.Equal(t, 0, gen.calls)
}

func TestCORS_PreflightAllowedOrigin(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	req := httptest.NewRequest(http.MethodOptions, "/revise", nil)
	req.Header.Set("Origin", "capacitor://localhost")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "capacitor://localhost", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_BlockedOrigin(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{output: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/revise", strings.NewReader(`{"content":"x","mode":"light"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &stubGenerator{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMCPMount(t *testing.T) {
	builder, err := prompt.New("en")
	require.NoError(t, err)
	svc := service.NewNoteService(builder, &stubGenerator{})

	mounted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r := NewRouter(testConfig(), NewNoteHandler(svc), mounted)

	w := doJSON(r, http.MethodPost, "/mcp", `{}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestFunctionEngine(t *testing.T) {
	gen := &stubGenerator{output: "fixed"}
	builder, err := prompt.New("en")
	require.NoError(t, err)
	h := NewNoteHandler(service.NewNoteService(builder, gen))
	engine := NewFunctionEngine(h.Revise)

	w := doJSON(engine, http.MethodPost, "/", `{"content":"x","mode":"light"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"revisedContent":"fixed"}`, w.Body.String())

	w = doJSON(engine, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
