package conversation

// TurnState is the single process-wide state of the conversation loop. At
// most one of Generating and Speaking drives output at any time.
type TurnState string

const (
	TurnStateIdle       TurnState = "idle"
	TurnStateListening  TurnState = "listening"
	TurnStateGenerating TurnState = "generating"
	TurnStateSpeaking   TurnState = "speaking"
)
