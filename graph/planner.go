package graph

import "sort"

// Wave is a set of node ids whose dependencies are all satisfied by
// earlier waves; nodes within a wave carry no dependency relationship to
// one another and may be generated concurrently.
type Wave struct {
	WaveNumber int
	NodeIDs    []string
}

// ExecutionPlan lays out a Project's nodes into sequential waves via
// Kahn's algorithm. Nodes that cannot be reached (because they sit on a
// cycle, or depend — transitively — on a node that does) are reported in
// SkippedNodes rather than silently dropped.
type ExecutionPlan struct {
	Waves        []Wave
	TotalNodes   int
	SkippedNodes []string
}

// OrderedNodeIDs flattens the plan's waves into a single execution-order
// slice.
func (p ExecutionPlan) OrderedNodeIDs() []string {
	var ids []string
	for _, w := range p.Waves {
		ids = append(ids, w.NodeIDs...)
	}
	return ids
}

// Contains reports whether nodeID appears in any wave of the plan.
func (p ExecutionPlan) Contains(nodeID string) bool {
	for _, w := range p.Waves {
		for _, id := range w.NodeIDs {
			if id == nodeID {
				return true
			}
		}
	}
	return false
}

// Plan builds an ExecutionPlan from the project's current node and edge
// set via Kahn's algorithm: each wave is the set of remaining nodes whose
// dependencies have all been placed in an earlier wave. Node ids within a
// wave are sorted for reproducible output; the spec does not mandate an
// order among nodes in the same wave, only that callers tolerate any
// permutation.
func Plan(p *Project) ExecutionPlan {
	nodeIDs := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		nodeIDs[n.ID] = true
	}

	dependencies := make(map[string]map[string]bool, len(nodeIDs))
	dependents := make(map[string]map[string]bool, len(nodeIDs))
	for id := range nodeIDs {
		dependencies[id] = make(map[string]bool)
		dependents[id] = make(map[string]bool)
	}
	for _, e := range p.Edges {
		if nodeIDs[e.Target] && nodeIDs[e.Source] {
			dependencies[e.Target][e.Source] = true
			dependents[e.Source][e.Target] = true
		}
	}

	inDegree := make(map[string]int, len(nodeIDs))
	remaining := make(map[string]bool, len(nodeIDs))
	for id := range nodeIDs {
		inDegree[id] = len(dependencies[id])
		remaining[id] = true
	}

	var waves []Wave
	waveNumber := 0
	for len(remaining) > 0 {
		var ready []string
		for id := range remaining {
			if inDegree[id] == 0 {
				ready = append(ready, id)
			}
		}
		if len(ready) == 0 {
			break
		}
		sort.Strings(ready)

		waves = append(waves, Wave{WaveNumber: waveNumber, NodeIDs: ready})
		for _, id := range ready {
			delete(remaining, id)
			for dependent := range dependents[id] {
				if inDegree[dependent] > 0 {
					inDegree[dependent]--
				}
			}
		}
		waveNumber++
	}

	total := 0
	for _, w := range waves {
		total += len(w.NodeIDs)
	}
	var skipped []string
	for id := range remaining {
		skipped = append(skipped, id)
	}
	sort.Strings(skipped)

	return ExecutionPlan{Waves: waves, TotalNodes: total, SkippedNodes: skipped}
}
