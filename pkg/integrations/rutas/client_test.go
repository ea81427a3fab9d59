package rutas

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/motorrutas/pkg/cache"
	"github.com/matzehuels/motorrutas/pkg/observability"
	"github.com/matzehuels/motorrutas/pkg/partition"
)

const rutaX = `{"nombreRuta":"Ruta X","graph":{"elements":{"nodes":[{"id":1,"name":"Mesa de Partes"}],"edges":[{"source":1,"target":"FIN","tiempo":2,"accion":"derivar"}]}}}`

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func serve(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestFetchPrimary(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, rutaX)
	c := NewClient(Config{URLs: []string{srv.URL}, Logger: quietLogger()}, nil)

	res, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ruta X", res.RouteName)
	assert.Equal(t, []partition.Item{{ID: "1", Label: "Mesa de Partes"}}, res.Items)
	assert.False(t, res.Fallback())
	assert.Equal(t, srv.URL+"/api/motor-rutas/plantillas/1", res.URL)
}

func TestFetchFallsThroughToSecondary(t *testing.T) {
	primary, _ := serve(t, http.StatusInternalServerError, "")
	secondary, _ := serve(t, http.StatusOK, rutaX)
	c := NewClient(Config{URLs: []string{primary.URL, secondary.URL}, Logger: quietLogger()}, nil)

	res, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ruta X", res.RouteName)
	assert.Contains(t, res.URL, secondary.URL)
}

func TestFetchAllFailUsesPlaceholder(t *testing.T) {
	var fallbacks int
	observability.SetSourceHooks(fallbackCounter{n: &fallbacks})
	defer observability.Reset()

	notFound, _ := serve(t, http.StatusNotFound, "")
	badJSON, _ := serve(t, http.StatusOK, "<html>")
	c := NewClient(Config{URLs: []string{deadURL(t), notFound.URL, badJSON.URL}, Logger: quietLogger()}, nil)

	res, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fallback())
	assert.Equal(t, ErrorMessage, res.Err)
	assert.Empty(t, res.RouteName)
	assert.Equal(t, Placeholder(), res.Items)
	assert.Len(t, res.Items, 4)
	assert.Equal(t, 1, fallbacks)
}

func TestFetchNoURLs(t *testing.T) {
	c := NewClient(Config{Logger: quietLogger()}, nil)
	res, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fallback())

	res, err = c.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fallback())
}

func TestFetchCanceled(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, rutaX)
	c := NewClient(Config{URLs: []string{srv.URL}, Logger: quietLogger()}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchCachedAndReloadBypasses(t *testing.T) {
	srv, hits := serve(t, http.StatusOK, rutaX)
	backend, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := NewClient(Config{URLs: []string{srv.URL}, CacheTTL: time.Hour, Logger: quietLogger()}, backend)

	ctx := context.Background()
	_, err = c.Fetch(ctx)
	require.NoError(t, err)
	res, err := c.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ruta X", res.RouteName)
	assert.EqualValues(t, 1, hits.Load(), "second fetch should be served from cache")

	_, err = c.Reload(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load(), "reload should bypass the cache")
}

func TestReloadPrimaryOnly(t *testing.T) {
	primary, _ := serve(t, http.StatusServiceUnavailable, "")
	secondary, secondaryHits := serve(t, http.StatusOK, rutaX)
	c := NewClient(Config{URLs: []string{primary.URL, secondary.URL}, Logger: quietLogger()}, nil)

	res, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Fallback())
	assert.Zero(t, secondaryHits.Load())
}

func TestBreakerSkipsFailingCandidate(t *testing.T) {
	primary, primaryHits := serve(t, http.StatusInternalServerError, "")
	secondary, _ := serve(t, http.StatusOK, rutaX)
	c := NewClient(Config{
		URLs:            []string{primary.URL, secondary.URL},
		BreakerFailures: 2,
		BreakerTimeout:  time.Hour,
		Logger:          quietLogger(),
	}, nil)

	ctx := context.Background()
	for range 4 {
		res, err := c.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Ruta X", res.RouteName)
	}
	assert.EqualValues(t, 2, primaryHits.Load(), "open breaker should stop calls to the primary")
}

func TestResourceURL(t *testing.T) {
	assert.Equal(t, "http://a/api/x/7", resourceURL("http://a/", "/api/x/", 7))
	assert.Equal(t, "http://a/api/x/7", resourceURL("http://a", "api/x", 7))
}

func TestTemplateItems(t *testing.T) {
	tmpl := Template{Graph: Graph{Elements: Elements{Nodes: []Node{{ID: 3, Name: "Decanato"}, {ID: 10, Name: "Caja"}}}}}
	assert.Equal(t, []partition.Item{{ID: "3", Label: "Decanato"}, {ID: "10", Label: "Caja"}}, tmpl.Items())
}

func TestPlaceholderIsCopy(t *testing.T) {
	p := Placeholder()
	p[0].Label = "changed"
	assert.Equal(t, "Mesa de Partes", Placeholder()[0].Label)
}

type fallbackCounter struct {
	observability.NoopSourceHooks
	n *int
}

func (f fallbackCounter) OnFallback(context.Context) { *f.n++ }
