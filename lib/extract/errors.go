package extract

// ParseError is raised only when the root container for a record kind
// is entirely absent. Zero matching items inside a present container
// is an empty result, not an error.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Message
}
