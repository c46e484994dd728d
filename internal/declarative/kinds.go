package declarative

// SupportedAPIVersion is the current API version for YAML documents.
const SupportedAPIVersion = "explorec/v1"

// Document kinds.
const (
	KindExplore    = "Explore"
	KindFilterRule = "FilterRule"
)
