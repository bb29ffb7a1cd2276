package events

// KindUserSpeechStarted identifies the start of detected user speech.
const KindUserSpeechStarted Kind = "user_input.speech_started"

// UserSpeechStarted marks the start of detected user speech activity.
type UserSpeechStarted struct{ Base }

// NewUserSpeechStarted creates a user speech started event.
func NewUserSpeechStarted() UserSpeechStarted {
	return UserSpeechStarted{Base: NewBase(KindUserSpeechStarted)}
}

// KindUserSpeechEnded identifies the end of detected user speech.
const KindUserSpeechEnded Kind = "user_input.speech_ended"

// UserSpeechEnded marks the end of detected user speech activity.
type UserSpeechEnded struct{ Base }

// NewUserSpeechEnded creates a user speech ended event.
func NewUserSpeechEnded() UserSpeechEnded {
	return UserSpeechEnded{Base: NewBase(KindUserSpeechEnded)}
}

// KindUserTranscriptInterimUpdated identifies interim transcript updates.
const KindUserTranscriptInterimUpdated Kind = "user_input.transcript_interim_updated"

// UserTranscriptInterimUpdated carries a mutable interim transcript snapshot.
// An empty transcript clears the interim display.
type UserTranscriptInterimUpdated struct {
	Base
	Transcript string
}

// NewUserTranscriptInterimUpdated creates an interim transcript event.
func NewUserTranscriptInterimUpdated(transcript string) UserTranscriptInterimUpdated {
	return UserTranscriptInterimUpdated{Base: NewBase(KindUserTranscriptInterimUpdated), Transcript: transcript}
}

// KindUserTranscriptFinal identifies finalized transcripts.
const KindUserTranscriptFinal Kind = "user_input.transcript_final"

// UserTranscriptFinal carries the terminal transcript for an utterance.
type UserTranscriptFinal struct {
	Base
	Transcript string
}

// NewUserTranscriptFinal creates a final transcript event.
func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}
