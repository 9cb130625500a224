package curriculum

import "time"

// AttemptOutcome is the pass/fail result of one module attempt.
type AttemptOutcome string

const (
	OutcomePass AttemptOutcome = "PASS"
	OutcomeFail AttemptOutcome = "FAIL"
)

// AttemptRecord is one entry of the learner's long-term attempt history.
// Records are append-only and read back most-recent-first.
type AttemptRecord struct {
	ID         string         `json:"id"`
	SessionKey string         `json:"session_key"`
	NodeID     string         `json:"node_id"`
	Topic      string         `json:"topic"`
	Outcome    AttemptOutcome `json:"outcome"`
	Score      float64        `json:"score"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Passed reports whether the attempt passed.
func (r AttemptRecord) Passed() bool {
	return r.Outcome == OutcomePass
}

// SessionInfo summarises one saved curriculum of a learner.
type SessionInfo struct {
	Key       string
	Topic     string
	UpdatedAt time.Time
}
