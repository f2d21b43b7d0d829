package frontend

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicerec/voicerec/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestEnsureCreatesVersionedEntry(t *testing.T) {
	t.Parallel()

	res := NewResources("1.4.0", logging.NewTestLogger())
	res.Ensure()

	items := res.Items()
	require.Len(t, items, 1)
	assert.Equal(t, ScriptURL+"?ver=1.4.0", items[0].URL)

	// Ensure is idempotent.
	res.Ensure()
	assert.Len(t, res.Items(), 1)
}

func TestEnsureUpgradesStaleEntry(t *testing.T) {
	t.Parallel()

	res := NewResources("1.4.0", logging.NewTestLogger())
	res.items = []Resource{
		{ID: "1", URL: ScriptURL + "?ver=1.3.0"},
		{ID: "2", URL: "/other-card.js?ver=9"},
	}

	res.Ensure()

	items := res.Items()
	require.Len(t, items, 2)
	assert.Equal(t, ScriptURL+"?ver=1.4.0", items[0].URL)
	assert.Equal(t, "/other-card.js?ver=9", items[1].URL, "unrelated resources untouched")
}

func TestEnsureDeletesLegacyEntry(t *testing.T) {
	t.Parallel()

	res := NewResources("1.4.0", logging.NewTestLogger())
	res.items = []Resource{{ID: "1", URL: legacyScriptURL + "?ver=0.9"}}

	res.Ensure()

	items := res.Items()
	require.Len(t, items, 1)
	assert.Equal(t, ScriptURL+"?ver=1.4.0", items[0].URL)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	res := NewResources("1.4.0", logging.NewTestLogger())
	res.Ensure()
	res.Remove()
	assert.Empty(t, res.Items())

	res.Remove() // removing again is harmless
}

func TestCardRoute(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	router := gin.New()
	Register(router, fs, "/config/www/voice-recorder-card.js", logging.NewTestLogger())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, ScriptURL, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, afero.WriteFile(fs, "/config/www/voice-recorder-card.js", []byte("// card"), 0o644))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, ScriptURL, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "// card", w.Body.String())
}
