package generation

import (
	"github.com/go-playground/validator/v10"

	"github.com/abhisek/pathwise/internal/curriculum"
)

// QuizSize is the number of items in every assessment set.
const QuizSize = 10

// OptionsPerItem is the number of answer options per quiz item.
const OptionsPerItem = 4

// payloadValidate checks decoded payloads after schema validation. The
// schema guarantees shape; these tags guarantee the values are usable.
var payloadValidate = validator.New()

// GraphProposal is the curriculum architect's answer.
type GraphProposal struct {
	Nodes []ProposedNode `json:"nodes" validate:"min=5,max=8,dive"`
	Edges []ProposedEdge `json:"edges" validate:"dive"`
}

type ProposedNode struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label" validate:"required"`
}

type ProposedEdge struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// Curriculum converts the proposal into graph input.
func (p GraphProposal) Curriculum() ([]curriculum.Node, []curriculum.Edge) {
	nodes := make([]curriculum.Node, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = curriculum.Node{ID: n.ID, Label: n.Label}
	}
	edges := make([]curriculum.Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = curriculum.Edge{Source: e.Source, Target: e.Target}
	}
	return nodes, edges
}

// Explanation is the lecture text for one concept.
type Explanation struct {
	ContentText string `json:"content_text" validate:"required"`
}

// QuizItem is one multiple-choice question.
type QuizItem struct {
	Question           string   `json:"question" validate:"required"`
	Options            []string `json:"options" validate:"len=4,dive,required"`
	CorrectOptionIndex int      `json:"correct_option_index" validate:"min=0,max=3"`
	Explanation        string   `json:"explanation"`
}

// Quiz is a fixed-size assessment set.
type Quiz struct {
	Items []QuizItem `json:"quiz_items" validate:"len=10,dive"`
}

// Notation is an optional formula for the concept. An empty equation means
// none was relevant.
type Notation struct {
	LatexEquation string `json:"latex_equation"`
	Reason        string `json:"reason"`
}

// Empty reports whether no formula was produced.
func (n Notation) Empty() bool {
	return n.LatexEquation == ""
}

// AuditReport rates how likely the explanation is to contain errors.
type AuditReport struct {
	RiskScore     float64 `json:"risk_score" validate:"gte=0,lte=1"`
	FlaggedReason string  `json:"flagged_reason"`
}

// RemediationCandidate proposes a new prerequisite for a failed concept.
// The id may come back empty; the remediation policy decides what to do.
type RemediationCandidate struct {
	ID     string `json:"remedial_node_id"`
	Label  string `json:"remedial_node_label" validate:"required"`
	Reason string `json:"reason"`
}

// BiasMode steers the explanation based on recent attempt history.
type BiasMode string

const (
	BiasNeutral  BiasMode = "neutral"
	BiasRemedial BiasMode = "remedial"
	BiasConcise  BiasMode = "concise"
)

// Bias is the history summary handed to the explanation task.
type Bias struct {
	Mode        BiasMode
	FailedNodes []string
	Summary     string
}
