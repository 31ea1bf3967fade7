package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/sheep/internal/domain"
)

func TestIndex(t *testing.T) {
	h := Index(Templates(), domain.Field{Width: 320, Height: 400, TileSize: 40})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "width: 320px; height: 400px")

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticFS(t *testing.T) {
	for _, name := range []string{"/sheep.js", "/sheep.css"} {
		f, err := StaticFS().Open(name)
		require.NoError(t, err, name)
		b, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.NotEmpty(t, b)
		f.Close()
	}
}
