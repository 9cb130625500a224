package curriculum

// Status is a node's derived state relative to the learner.
type Status string

const (
	StatusLocked    Status = "LOCKED"    // One or more prerequisites not yet completed
	StatusAvailable Status = "AVAILABLE" // All prerequisites completed; node not yet passed
	StatusCompleted Status = "COMPLETED" // Learner passed the node's assessment
)

// Icon returns the display icon for a status.
func (s Status) Icon() string {
	switch s {
	case StatusLocked:
		return "🔒"
	case StatusAvailable:
		return "🔓"
	case StatusCompleted:
		return "✅"
	default:
		return "?"
	}
}

// Label returns the display label for a status.
func (s Status) Label() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusAvailable:
		return "Available"
	case StatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Node is a concept as proposed by the curriculum architect.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Edge points from a prerequisite (Source) to its dependent (Target).
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NodeView is a read-only view of a node with its current status.
type NodeView struct {
	ID     string
	Label  string
	Status Status
}
