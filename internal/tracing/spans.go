package tracing

// Span attribute keys for dispatched calls.
const (
	AttrCallID     = "dispatch.call.id"
	AttrCallParent = "dispatch.call.parent_id"
	AttrCallDepth  = "dispatch.call.depth"
	AttrOperation  = "dispatch.operation"
	AttrArity      = "dispatch.arity"
	AttrArgs       = "dispatch.args"

	AttrClauseID    = "dispatch.clause.id"
	AttrClauseIndex = "dispatch.clause.index"
	AttrClauseKey   = "dispatch.clause.key"

	AttrErrorType = "error.type"
)

// SpanPrefixCall prefixes the operation name in span names: dispatch.fact.
const SpanPrefixCall = "dispatch."

// Event names for span events.
const (
	EventClauseSelected = "clause.selected"
	EventNoMatch        = "no_match"
)

// Values of AttrErrorType.
const (
	ErrorTypeUnknownOperation = "unknown_operation"
	ErrorTypeNoMatch          = "no_matching_clause"
	ErrorTypeMaxDepth         = "max_depth_exceeded"
	ErrorTypeImplementation   = "implementation"
)
