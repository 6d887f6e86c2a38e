package journal

import "time"

// Status is the lifecycle position of a journal row.
type Status string

const (
	// StatusRunning rows have been admitted but not yet settled.
	StatusRunning Status = "running"

	// StatusCompleted rows have settled.
	StatusCompleted Status = "completed"
)

// Activation is one admitted trigger of one prop.
type Activation struct {
	ID           string     `json:"id"`
	Prop         string     `json:"prop"`
	DeviceID     string     `json:"device_id"`
	Mode         string     `json:"mode"`
	Activation   int        `json:"activation"`
	TriggeredAt  time.Time  `json:"triggered_at"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
	StepsSent    int        `json:"steps_sent"`
	StepsFailed  int        `json:"steps_failed"`
	StepsSkipped int        `json:"steps_skipped"`
	Clips        int        `json:"clips"`
	AudioMS      *int64     `json:"audio_duration_ms,omitempty"`
	AudioError   *string    `json:"audio_error,omitempty"`
	Discarded    int        `json:"discarded"`
	Status       Status     `json:"status"`
}
