// Package frontend manages the recorder card: the static script route and
// the resource list entry the UI loads it from.
package frontend

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/voicerec/voicerec/pkg/logging"
	"github.com/voicerec/voicerec/pkg/urlmap"
)

const (
	BaseURL    = "/voice-recorder"
	ScriptName = "voice-recorder-card.js"

	// ScriptURL is where the card script is served.
	ScriptURL = BaseURL + "/" + ScriptName

	// legacyScriptURL is where very old installs registered the card; such
	// entries are deleted, not upgraded.
	legacyScriptURL = "/" + ScriptName
)

// Resource is one entry of the frontend resource list.
type Resource struct {
	ID  string
	URL string
}

// Resources is the in-memory frontend resource list. Ensure installs or
// upgrades the card entry, Remove deletes it on last-entry teardown.
type Resources struct {
	version string
	logger  *logging.Logger

	mu     sync.Mutex
	nextID int
	items  []Resource
}

// NewResources returns a list that manages the card at the given version.
func NewResources(version string, logger *logging.Logger) *Resources {
	return &Resources{version: version, logger: logger}
}

// Ensure makes exactly one current-version card entry exist: a stale entry
// is upgraded in place, legacy-path entries are deleted, and a missing entry
// is created.
func (r *Resources) Ensure() {
	r.mu.Lock()
	defer r.mu.Unlock()

	versioned := ScriptURL + "?ver=" + r.version
	found := false
	kept := r.items[:0]

	for _, item := range r.items {
		switch {
		case strings.HasPrefix(item.URL, ScriptURL):
			found = true
			if !urlmap.VersionMatch(item.URL, r.version) {
				r.logger.Info("upgrading card resource", "from", item.URL, "to", versioned)
				item.URL = versioned
			}
			kept = append(kept, item)
		case strings.HasPrefix(item.URL, legacyScriptURL):
			r.logger.Info("deleting outdated card resource", "url", item.URL)
		default:
			kept = append(kept, item)
		}
	}
	r.items = kept

	if !found {
		r.nextID++
		r.items = append(r.items, Resource{ID: strconv.Itoa(r.nextID), URL: versioned})
		r.logger.Info("registered card resource", "url", versioned)
	}
}

// Remove deletes the card entry, if present.
func (r *Resources) Remove() {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	for _, item := range r.items {
		if strings.HasPrefix(item.URL, ScriptURL) {
			r.logger.Info("removed card resource", "url", item.URL)
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
}

// Items returns a copy of the resource list.
func (r *Resources) Items() []Resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Resource(nil), r.items...)
}

// Register adds the card script route. cardPath points at the script file on
// fs; the route answers 404 until the file exists.
func Register(router *gin.Engine, fs afero.Fs, cardPath string, logger *logging.Logger) {
	router.GET(ScriptURL, func(c *gin.Context) {
		raw, err := afero.ReadFile(fs, cardPath)
		if err != nil {
			logger.Warn("card script unavailable", "path", cardPath, "error", err)
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "application/javascript", raw)
	})
	logger.Info("card script route registered", "url", ScriptURL, "path", cardPath)
}
