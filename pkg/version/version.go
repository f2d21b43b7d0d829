package version

// Application version information
var (
	Version = "dev"
	Commit  = ""
)

// CardVersion is the version tag appended to the frontend card resource URL.
// Bump it whenever the card script changes so browsers refetch it.
const CardVersion = "1.4.0"
