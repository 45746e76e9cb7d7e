package storefront

// Version information for the storefront web client
const (
	// Version is the current release
	Version = "development"

	// APIVersion is the backend API contract this client was written against
	APIVersion = "v1"

	// BuildDate is set during build time
	BuildDate = "development"

	// GitCommit is set during build time
	GitCommit = "unknown"
)
