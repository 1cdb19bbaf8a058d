package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldSearchID identifies one media search invocation
	FieldSearchID = "search_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldProvider is the stock media provider name
	FieldProvider = "provider"

	// FieldPatternKey is the learner's coarse prompt classification
	FieldPatternKey = "pattern_key"
)

// Metric fields, attached per entry for aggregation.
const (
	FieldDurationMs = "duration_ms"
	FieldCount      = "count"
	FieldSize       = "size"
	FieldStatus     = "status"

	// FieldStrategy is the search strategy that produced a log line
	FieldStrategy = "strategy"

	// FieldQuery is the query string sent to the provider
	FieldQuery = "query"
)
