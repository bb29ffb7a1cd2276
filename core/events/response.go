package events

// FailureClass labels why a generation attempt could not produce a reply.
type FailureClass string

const (
	// FailureConfiguration covers missing credentials and other fatal,
	// non-retryable setup problems.
	FailureConfiguration FailureClass = "configuration"
	// FailureTransport covers network errors and non-success HTTP statuses.
	FailureTransport FailureClass = "transport"
	// FailureEmptyReply covers responses that decoded to no usable text.
	FailureEmptyReply FailureClass = "empty_reply"
)

// KindResponseFragment identifies streamed response fragments.
const KindResponseFragment Kind = "assistant_response.fragment"

// ResponseFragment carries one speakable fragment of the reply, in emission
// order, tagged with the locale inferred for its script.
type ResponseFragment struct {
	Base
	Text   string
	Locale string
}

// NewResponseFragment creates a response fragment event.
func NewResponseFragment(text, locale string) ResponseFragment {
	return ResponseFragment{Base: NewBase(KindResponseFragment), Text: text, Locale: locale}
}

// KindResponseComplete identifies the end of a successful generation.
const KindResponseComplete Kind = "assistant_response.complete"

// ResponseComplete marks the end of fragment emission and carries the fully
// assembled reply text.
type ResponseComplete struct {
	Base
	Text string
}

// NewResponseComplete creates a response complete event.
func NewResponseComplete(text string) ResponseComplete {
	return ResponseComplete{Base: NewBase(KindResponseComplete), Text: text}
}

// KindResponseFailed identifies a failed generation.
const KindResponseFailed Kind = "assistant_response.failed"

// ResponseFailed marks a generation that failed after the retry budget.
// Cancelled generations never produce this event.
type ResponseFailed struct {
	Base
	Class FailureClass
	Err   error
}

// NewResponseFailed creates a response failed event.
func NewResponseFailed(class FailureClass, err error) ResponseFailed {
	return ResponseFailed{Base: NewBase(KindResponseFailed), Class: class, Err: err}
}
