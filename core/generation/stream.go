package generation

// Stream delivers one reply as ordered fragments. Implementations yield each
// fragment with a nil error, or a single zero fragment with the failure;
// cancelled requests end iteration silently.
type Stream interface {
	// Fragments is a range-over-func iterator.
	Fragments(yield func(Fragment, error) bool)
	// Text returns the full decoded reply once iteration has finished.
	Text() string
}
