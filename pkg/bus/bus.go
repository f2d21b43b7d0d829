// Package bus delivers voicerec events to interested listeners. The websocket
// Hub is the production implementation; LogBus serves headless runs.
package bus

import "context"

// EventSaved is fired once per successfully stored recording.
const EventSaved = "voice_recorder_saved"

// Bus fans an event out to listeners. Implementations must not block the
// caller on slow consumers.
type Bus interface {
	Fire(ctx context.Context, event string, payload map[string]any)
}
