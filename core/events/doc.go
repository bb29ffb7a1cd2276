// Package events defines the typed conversation event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*
//   - assistant_response.*
//   - assistant_speech.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Fragment: append-only response text piece emitted in generation order,
//     carrying the locale tag inferred for it.
//   - Interim: mutable point-in-time transcript snapshot superseded by later
//     interim events and cleared by the matching final.
//   - Final: terminal immutable text for the current stream/turn phase.
//
// user_input events
//
//   - UserSpeechStarted (user_input.speech_started): speech activity began.
//   - UserSpeechEnded (user_input.speech_ended): speech activity ended.
//   - UserTranscriptInterimUpdated (user_input.transcript_interim_updated):
//     mutable interim transcript snapshot.
//   - UserTranscriptFinal (user_input.transcript_final): terminal transcript
//     for the utterance; the value that drives a turn.
//
// assistant_response events
//
//   - ResponseFragment (assistant_response.fragment): streamed speakable text
//     fragment with its locale tag.
//   - ResponseComplete (assistant_response.complete): generation finished;
//     carries the fully assembled reply text.
//   - ResponseFailed (assistant_response.failed): generation failed after the
//     retry budget; carries the failure class. Cancellation is never reported
//     through this event.
//
// assistant_speech events
//
//   - SpeechStarted (assistant_speech.started): the synthesizer began
//     draining its queue.
//   - SpeechEnded (assistant_speech.ended): the queue drained or was stopped.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a finalized transcript was accepted.
//   - TurnCompleted (turn_state.completed): the turn settled back to idle
//     after a successful reply.
//   - TurnFailed (turn_state.failed): the turn settled to idle with an error.
//   - TurnCancelled (turn_state.cancelled): the turn was cancelled, either
//     explicitly or by newer input.
package events
