package handler_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/skein/apps/internal/convert"
	"github.com/tilsley/skein/apps/internal/convert/handler"
	"github.com/tilsley/skein/apps/internal/convert/source"
	"github.com/tilsley/skein/pkg/events"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(src convert.Source) *gin.Engine {
	svc := convert.NewService(nil, discardLogger())
	r := gin.New()
	handler.RegisterRoutes(r, svc, func() convert.Source { return src }, discardLogger())
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAll(t *testing.T, body string) []events.Event {
	t.Helper()
	dec := events.NewDecoder(strings.NewReader(body), discardLogger())
	var out []events.Event
	for {
		ev, err := dec.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

// ─── happy path ──────────────────────────────────────────────────────────────

func TestConvert_StreamsArtifactAsNDJSON(t *testing.T) {
	src := source.NewInMem(convert.DefaultPolicy())
	src.SetFile("a/x.ts", "1")
	src.SetFile("b/y.py", "2")

	w := post(newRouter(src), `{"url":"https://github.com/acme/demo"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	evs := decodeAll(t, w.Body.String())
	require.NotEmpty(t, evs)

	var collector events.Collector
	for _, ev := range evs {
		collector.Observe(ev)
	}
	assert.Equal(t, "// Path: a/x.ts\n1\n\n// Path: b/y.py\n2\n\n", collector.Artifact())
	assert.Equal(t, 100, collector.Progress)
	assert.Empty(t, collector.Err)
	assert.True(t, evs[len(evs)-1].Terminal())
}

func TestConvert_EmptyRepositoryCompletesAt100(t *testing.T) {
	src := source.NewInMem(convert.DefaultPolicy())

	w := post(newRouter(src), `{"url":"acme/empty"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	evs := decodeAll(t, w.Body.String())
	final := evs[len(evs)-1]
	require.NotNil(t, final.Progress)
	assert.Equal(t, 100, *final.Progress)
	for _, ev := range evs {
		assert.Empty(t, ev.Content)
		assert.Empty(t, ev.Error)
	}
}

// ─── request validation ──────────────────────────────────────────────────────

func TestConvert_MissingBody_Returns400(t *testing.T) {
	w := post(newRouter(source.NewInMem(convert.DefaultPolicy())), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestConvert_InvalidReference_Returns400BeforeStreaming(t *testing.T) {
	src := source.NewInMem(convert.DefaultPolicy())
	w := post(newRouter(src), `{"url":"no-slash-here"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid repository reference")
	assert.Zero(t, src.ListCalls(), "reference errors fail fast, before acquisition")
}

// ─── failure mid-stream ──────────────────────────────────────────────────────

func TestConvert_MidStreamFailureEmitsTerminalError(t *testing.T) {
	src := source.NewInMem(convert.DefaultPolicy())
	for _, p := range []string{"a.go", "b.go", "c.go"} {
		src.SetFile(p, "x")
	}
	src.FailRead("b.go", errors.New("transport failed"))

	w := post(newRouter(src), `{"url":"acme/demo"}`)

	// The stream already started, so the failure arrives on the channel.
	assert.Equal(t, http.StatusOK, w.Code)

	evs := decodeAll(t, w.Body.String())
	require.NotEmpty(t, evs)
	final := evs[len(evs)-1]
	assert.NotEmpty(t, final.Error, "last event must be the terminal error")

	// No progress, status or content event follows the error.
	for _, ev := range evs[:len(evs)-1] {
		assert.Empty(t, ev.Error)
	}
}

func TestHealthz(t *testing.T) {
	r := newRouter(source.NewInMem(convert.DefaultPolicy()))
	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
