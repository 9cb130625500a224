package curriculum

import (
	"fmt"
	"strings"
)

// ValidateProposal performs structural checks on a proposed graph before it
// is loaded. Returns a combined error describing all problems found, or nil.
// Edges with unknown endpoints are not an error; Load drops them.
func ValidateProposal(nodes []Node, edges []Edge) error {
	var errs []string

	if len(nodes) == 0 {
		errs = append(errs, "proposal has no nodes")
	}

	idSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			errs = append(errs, fmt.Sprintf("node with label %q has an empty id", n.Label))
			continue
		}
		if idSet[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate node id: %q", n.ID))
		}
		idSet[n.ID] = true
	}

	// Check for cycles using Kahn's algorithm over the edges Load would keep.
	inDegree := make(map[string]int, len(idSet))
	adjList := make(map[string][]string)
	for id := range idSet {
		inDegree[id] = 0
	}
	for _, e := range edges {
		if !idSet[e.Source] || !idSet[e.Target] {
			continue
		}
		adjList[e.Source] = append(adjList[e.Source], e.Target)
		inDegree[e.Target]++
	}

	var queue []string
	for _, n := range nodes {
		if idSet[n.ID] && inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
			inDegree[n.ID] = -1
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range adjList[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
				inDegree[dep] = -1
			}
		}
	}

	if visited < len(idSet) {
		var cycleNodes []string
		for _, n := range nodes {
			if inDegree[n.ID] > 0 {
				cycleNodes = append(cycleNodes, n.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving concepts: %s", strings.Join(cycleNodes, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum proposal validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
