// Package urlmap rewrites recording storage paths into the public URLs the
// frontend can actually fetch them from.
package urlmap

import (
	"net/url"
	"strings"
)

// Roots describes the directory roots that have a public alias. A storage
// path under MediaRoot is served at MediaAlias, one under AssetsRoot at
// AssetsAlias. Anything else has no alias and is exposed as-is.
type Roots struct {
	MediaRoot   string
	MediaAlias  string
	AssetsRoot  string
	AssetsAlias string
}

// PublicURL maps a storage path to its public URL. The mapping is purely
// presentational: the file on disk never moves.
func (r Roots) PublicURL(storagePath string) string {
	if rest, ok := under(storagePath, r.MediaRoot); ok {
		return r.MediaAlias + rest
	}
	if rest, ok := under(storagePath, r.AssetsRoot); ok {
		return r.AssetsAlias + rest
	}
	return storagePath
}

// under reports whether path lives below root and returns the remainder
// including its leading slash. A root equal to the path itself does not
// count; there is no file to serve then.
func under(path, root string) (string, bool) {
	if root == "" {
		return "", false
	}
	root = strings.TrimRight(root, "/")
	if strings.HasPrefix(path, root+"/") {
		return path[len(root):], true
	}
	return "", false
}

// VersionMatch reports whether the ver query parameter of rawURL equals want.
// A URL without a ver parameter never matches.
func VersionMatch(rawURL, want string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Query().Get("ver") == want
}
