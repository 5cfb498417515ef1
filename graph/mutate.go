package graph

import "github.com/google/uuid"

// FindNode returns a pointer into p.Nodes for the node with the given id,
// or nil if no such node exists. The returned pointer aliases p.Nodes; it
// is invalidated by any subsequent AddNode/DeleteNode call.
func (p *Project) FindNode(id string) *Node {
	for i := range p.Nodes {
		if p.Nodes[i].ID == id {
			return &p.Nodes[i]
		}
	}
	return nil
}

// DependenciesOf returns the edges whose Target is nodeID: the nodes that
// must be considered when generating nodeID.
func (p *Project) DependenciesOf(nodeID string) []Edge {
	var out []Edge
	for _, e := range p.Edges {
		if e.Target == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// DependentsOf returns the edges whose Source is nodeID: the nodes whose
// prompts will include nodeID's exports and generated code.
func (p *Project) DependentsOf(nodeID string) []Edge {
	var out []Edge
	for _, e := range p.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// AddNode appends node to the project, assigning a fresh id if node.ID is
// empty, and rejecting the addition if a node with the same FilePath
// already exists. On success the inserted node (with its assigned id) is
// returned.
func (p *Project) AddNode(node Node) (Node, error) {
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	for _, n := range p.Nodes {
		if n.FilePath == node.FilePath {
			return Node{}, newStructuralError(ErrDuplicateFilePath,
				"a node with file path '%s' already exists", node.FilePath)
		}
	}
	if node.Status == "" {
		node.Status = StatusPending
	}
	p.Nodes = append(p.Nodes, node)
	return node, nil
}

// UpdateNode overwrites the editable fields of the node identified by
// nodeID with those of updates. Status, GeneratedCode, and ErrorMessage
// are lifecycle fields owned by the Executor and are left untouched. A
// FilePath already used by another node is rejected with
// ErrDuplicateFilePath, leaving the node unchanged.
func (p *Project) UpdateNode(nodeID string, updates Node) (Node, error) {
	n := p.FindNode(nodeID)
	if n == nil {
		return Node{}, newStructuralError(ErrNodeNotFound, "node '%s' not found", nodeID)
	}
	for _, other := range p.Nodes {
		if other.ID != nodeID && other.FilePath == updates.FilePath {
			return Node{}, newStructuralError(ErrDuplicateFilePath,
				"a node with file path '%s' already exists", updates.FilePath)
		}
	}
	n.Name = updates.Name
	n.FilePath = updates.FilePath
	n.Language = updates.Language
	n.Description = updates.Description
	n.Purpose = updates.Purpose
	n.Exports = updates.Exports
	n.LLMConfig = updates.LLMConfig
	n.Position = updates.Position
	return *n, nil
}

// DeleteNode removes the node identified by nodeID along with every edge
// that touches it.
func (p *Project) DeleteNode(nodeID string) error {
	idx := -1
	for i, n := range p.Nodes {
		if n.ID == nodeID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return newStructuralError(ErrNodeNotFound, "node '%s' not found", nodeID)
	}
	p.Nodes = append(p.Nodes[:idx], p.Nodes[idx+1:]...)

	kept := p.Edges[:0]
	for _, e := range p.Edges {
		if e.Source != nodeID && e.Target != nodeID {
			kept = append(kept, e)
		}
	}
	p.Edges = kept
	return nil
}

// AddEdge creates a dependency edge from source to target, validating that
// both endpoints exist, that the edge is not a self-loop or duplicate, and
// that it would not introduce a cycle into the graph.
func (p *Project) AddEdge(source, target, label string) (Edge, error) {
	if p.FindNode(source) == nil {
		return Edge{}, newStructuralError(ErrMissingEndpoint, "source node '%s' not found", source)
	}
	if p.FindNode(target) == nil {
		return Edge{}, newStructuralError(ErrMissingEndpoint, "target node '%s' not found", target)
	}
	if source == target {
		return Edge{}, newStructuralError(ErrSelfLoop, "cannot create an edge from a node to itself")
	}
	for _, e := range p.Edges {
		if e.Source == source && e.Target == target {
			return Edge{}, newStructuralError(ErrDuplicateEdge, "edge already exists")
		}
	}
	if WouldCreateCycle(p, source, target) {
		return Edge{}, newStructuralError(ErrWouldCreateCycle, "adding this edge would create a circular dependency")
	}

	edge := Edge{ID: uuid.NewString(), Source: source, Target: target, Label: label}
	p.Edges = append(p.Edges, edge)
	return edge, nil
}

// DeleteEdge removes the edge identified by edgeID.
func (p *Project) DeleteEdge(edgeID string) error {
	idx := -1
	for i, e := range p.Edges {
		if e.ID == edgeID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return newStructuralError(ErrNodeNotFound, "edge '%s' not found", edgeID)
	}
	p.Edges = append(p.Edges[:idx], p.Edges[idx+1:]...)
	return nil
}
