package curriculum

import (
	"slices"
	"sort"
)

// SnapshotVersion is bumped whenever the persisted layout changes.
const SnapshotVersion = 1

// SnapshotNode is the persisted form of a node.
type SnapshotNode struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
}

// Snapshot is the full, JSON-representable state of a Graph.
type Snapshot struct {
	Version          int                     `json:"version"`
	Nodes            map[string]SnapshotNode `json:"nodes"`
	Order            []string                `json:"order"`
	Adjacency        map[string][]string     `json:"adjacency"`
	ReverseAdjacency map[string][]string     `json:"reverse_adjacency"`
	CompletedNodes   []string                `json:"completed_nodes"`
	Topic            string                  `json:"topic"`
	Context          string                  `json:"context"`
}

// Snapshot captures the graph's state for persistence.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := Snapshot{
		Version:          SnapshotVersion,
		Nodes:            make(map[string]SnapshotNode, len(g.labels)),
		Order:            slices.Clone(g.order),
		Adjacency:        cloneAdjacency(g.adjacency),
		ReverseAdjacency: cloneAdjacency(g.reverse),
		CompletedNodes:   make([]string, 0, len(g.completed)),
		Topic:            g.topic,
		Context:          g.context,
	}
	for id, label := range g.labels {
		snap.Nodes[id] = SnapshotNode{Label: label, Status: g.statuses[id]}
	}
	for id := range g.completed {
		snap.CompletedNodes = append(snap.CompletedNodes, id)
	}
	sort.Strings(snap.CompletedNodes)
	return snap
}

// Restore replaces the graph's state with snap and recomputes statuses.
// Persisted statuses are ignored; they are derived again.
func (g *Graph) Restore(snap Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.topic = snap.Topic
	g.context = snap.Context
	g.labels = make(map[string]string, len(snap.Nodes))
	g.statuses = make(map[string]Status, len(snap.Nodes))
	g.adjacency = cloneAdjacency(snap.Adjacency)
	g.reverse = cloneAdjacency(snap.ReverseAdjacency)
	g.completed = make(map[string]bool, len(snap.CompletedNodes))

	for id, n := range snap.Nodes {
		g.labels[id] = n.Label
	}

	// Keep the recorded order for known ids, then append any node the
	// order list is missing in a stable order.
	g.order = make([]string, 0, len(snap.Nodes))
	seen := make(map[string]bool, len(snap.Nodes))
	for _, id := range snap.Order {
		if _, ok := g.labels[id]; ok && !seen[id] {
			g.order = append(g.order, id)
			seen[id] = true
		}
	}
	var missing []string
	for id := range g.labels {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	g.order = append(g.order, missing...)

	for _, id := range snap.CompletedNodes {
		g.completed[id] = true
	}

	g.recompute()
}

// FromSnapshot builds a new Graph from a snapshot.
func FromSnapshot(snap Snapshot) *Graph {
	g := New()
	g.Restore(snap)
	return g
}

func cloneAdjacency(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
		if out[k] == nil {
			out[k] = []string{}
		}
	}
	return out
}
