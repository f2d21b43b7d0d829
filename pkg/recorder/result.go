package recorder

// Sentinel values substituted when an optional multipart field is absent or
// empty. These exact strings are part of the event contract consumed by
// automations, so they are kept verbatim.
const (
	DefaultEventName = "null"
	DefaultBrowserID = "null"
	DefaultUserID    = "unknown"
)

// Recognized multipart field names. Unrecognized fields are ignored without
// error; the names themselves are a stable external contract.
const (
	FieldFile      = "file"
	FieldEventName = "eventname"
	FieldBrowserID = "browserid"
	FieldUserID    = "user_id"
)

// Result describes one stored recording. It lives only long enough to build
// the HTTP response and the saved event; the file itself is the persistence.
type Result struct {
	Filename    string
	Path        string
	PublicPath  string
	Size        int64
	ContentType string
	EventName   string
	BrowserID   string
	UserID      string
}
