package curriculum

import (
	"slices"
	"sync"
)

// Graph is the per-session concept dependency graph together with the
// learner's completion state. Statuses are never set by callers; they are
// recomputed from the completed set and the reverse adjacency after every
// mutation.
//
// A Graph is owned by exactly one session. Its methods are safe for
// concurrent use.
type Graph struct {
	mu sync.RWMutex

	topic   string
	context string

	order     []string          // node ids in insertion order
	labels    map[string]string // id -> label
	statuses  map[string]Status // cache written only by recompute and the injection override
	adjacency map[string][]string
	reverse   map[string][]string
	completed map[string]bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		labels:    make(map[string]string),
		statuses:  make(map[string]Status),
		adjacency: make(map[string][]string),
		reverse:   make(map[string][]string),
		completed: make(map[string]bool),
	}
}

// Load replaces all state with the given nodes and edges. Edges whose
// endpoints are not among nodes are dropped. All nodes start locked and a
// full recompute follows.
func (g *Graph) Load(nodes []Node, edges []Edge, topic, context string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.topic = topic
	g.context = context
	g.order = nil
	g.labels = make(map[string]string, len(nodes))
	g.statuses = make(map[string]Status, len(nodes))
	g.adjacency = make(map[string][]string, len(nodes))
	g.reverse = make(map[string][]string, len(nodes))
	g.completed = make(map[string]bool)

	for _, n := range nodes {
		if _, seen := g.labels[n.ID]; !seen {
			g.order = append(g.order, n.ID)
		}
		g.labels[n.ID] = n.Label
		g.statuses[n.ID] = StatusLocked
		g.adjacency[n.ID] = []string{}
		g.reverse[n.ID] = []string{}
	}

	for _, e := range edges {
		_, srcOK := g.labels[e.Source]
		_, tgtOK := g.labels[e.Target]
		if !srcOK || !tgtOK {
			continue
		}
		g.adjacency[e.Source] = append(g.adjacency[e.Source], e.Target)
		g.reverse[e.Target] = append(g.reverse[e.Target], e.Source)
	}

	g.recompute()
}

// StatusOf derives the status of id from the completed set and its
// prerequisites. The second result is false if id is unknown.
func (g *Graph) StatusOf(id string) (Status, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.labels[id]; !ok {
		return StatusLocked, false
	}
	return g.derive(id), true
}

// derive is the pure status function. Callers must hold the lock.
func (g *Graph) derive(id string) Status {
	if g.completed[id] {
		return StatusCompleted
	}
	for _, p := range g.reverse[id] {
		if !g.completed[p] {
			return StatusLocked
		}
	}
	return StatusAvailable
}

// recompute rewrites every cached status. Callers must hold the write lock.
func (g *Graph) recompute() {
	for _, id := range g.order {
		g.statuses[id] = g.derive(id)
	}
}

// MarkCompleted adds id to the completed set. Unknown ids are ignored and
// reported as false.
func (g *Graph) MarkCompleted(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.labels[id]; !ok {
		return false
	}
	g.completed[id] = true
	g.recompute()
	return true
}

// InjectRemedialNode splices a new prerequisite newID in front of targetID.
// It returns false without mutating anything if newID is empty or already
// present. When targetID is unknown the edge is still recorded in both
// adjacency maps, but there is no target status to force.
func (g *Graph) InjectRemedialNode(targetID, newID, newLabel string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if newID == "" {
		return false
	}
	if _, exists := g.labels[newID]; exists {
		return false
	}

	g.order = append(g.order, newID)
	g.labels[newID] = newLabel
	g.statuses[newID] = StatusAvailable
	g.adjacency[newID] = []string{targetID}
	g.reverse[newID] = []string{}
	g.reverse[targetID] = append(g.reverse[targetID], newID)

	// The target is re-locked unconditionally, even if another satisfied
	// path would leave it available; the recompute below then agrees
	// because newID is an unmet prerequisite.
	if _, ok := g.labels[targetID]; ok {
		g.statuses[targetID] = StatusLocked
	}

	g.recompute()
	return true
}

// AvailableNodes returns the nodes that can be started now, in insertion order.
func (g *Graph) AvailableNodes() []NodeView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []NodeView
	for _, id := range g.order {
		if g.statuses[id] == StatusAvailable {
			out = append(out, NodeView{ID: id, Label: g.labels[id], Status: StatusAvailable})
		}
	}
	return out
}

// Nodes returns every node with its status, in insertion order.
func (g *Graph) Nodes() []NodeView {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]NodeView, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, NodeView{ID: id, Label: g.labels[id], Status: g.statuses[id]})
	}
	return out
}

// Node returns a single node by id.
func (g *Graph) Node(id string) (NodeView, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	label, ok := g.labels[id]
	if !ok {
		return NodeView{}, false
	}
	return NodeView{ID: id, Label: label, Status: g.statuses[id]}, true
}

// Prerequisites returns the ids of the direct prerequisites of id.
func (g *Graph) Prerequisites(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.reverse[id])
}

// Dependents returns the ids of nodes that directly depend on id.
func (g *Graph) Dependents(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.adjacency[id])
}

// CompletedIDs returns the completed set in insertion order.
func (g *Graph) CompletedIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, id := range g.order {
		if g.completed[id] {
			out = append(out, id)
		}
	}
	return out
}

// AllCompleted reports whether a non-empty graph has every node completed.
func (g *Graph) AllCompleted() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.order) == 0 {
		return false
	}
	for _, id := range g.order {
		if !g.completed[id] {
			return false
		}
	}
	return true
}

// Topic returns the topic the graph was built for.
func (g *Graph) Topic() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topic
}

// Context returns the level/context tag the graph was built for.
func (g *Graph) Context() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.context
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}
