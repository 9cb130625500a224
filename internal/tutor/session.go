package tutor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/pipeline"
)

// SessionGateway persists graph snapshots and the attempt history. Every
// error it returns is logged and swallowed by the Service; the session
// carries on with its in-memory state.
type SessionGateway interface {
	// Load returns the newest snapshot saved under key, or nil if none.
	Load(ctx context.Context, key string) (*curriculum.Snapshot, error)
	Save(ctx context.Context, key string, snap curriculum.Snapshot) error
	// RecentAttempts returns at most limit records for topic, newest first.
	RecentAttempts(ctx context.Context, topic string, limit int) ([]curriculum.AttemptRecord, error)
	AppendAttempt(ctx context.Context, rec curriculum.AttemptRecord) error
}

// SessionKey is the persistence key of a learner's session on topic.
func SessionKey(userID, topic string) string {
	return userID + "/" + TopicSlug(topic)
}

// TopicSlug lower-cases topic and replaces spaces and slashes with
// underscores.
func TopicSlug(topic string) string {
	s := strings.ToLower(strings.TrimSpace(topic))
	return strings.NewReplacer(" ", "_", "/", "_").Replace(s)
}

// LogEntry is one line of a session's audit log.
type LogEntry struct {
	Time    time.Time
	Message string
}

// Module is the module currently being studied.
type Module struct {
	Concept pipeline.Concept
	Content *pipeline.Result
	History []curriculum.AttemptRecord
}

// Session is the explicit state of one learner working through one topic.
// It is owned by a single caller and is not safe for concurrent use.
type Session struct {
	Key     string
	UserID  string
	Topic   string
	Level   string
	Graph   *curriculum.Graph
	Resumed bool

	// Current is nil between modules.
	Current *Module

	log []LogEntry
}

// Log returns the session's audit log, oldest first.
func (s *Session) Log() []LogEntry {
	out := make([]LogEntry, len(s.log))
	copy(out, s.log)
	return out
}

func (s *Session) record(format string, args ...any) {
	s.log = append(s.log, LogEntry{Time: time.Now(), Message: fmt.Sprintf(format, args...)})
}
