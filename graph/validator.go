package graph

// FindingKind distinguishes a validation error (the graph is structurally
// broken) from a warning (the graph is usable but probably incomplete).
type FindingKind string

const (
	KindCyclicDependency  FindingKind = "cyclic_dependency"
	KindMissingNode       FindingKind = "missing_node"
	KindDuplicateFilePath FindingKind = "duplicate_file_path"
	KindEmptyDescription  FindingKind = "empty_description"
	KindNoExports         FindingKind = "no_exports"
	KindUnreachableNode   FindingKind = "unreachable_node"
)

// Finding is a single validation error or warning, naming the affected
// node or file path.
type Finding struct {
	Kind    FindingKind
	NodeID  string
	Detail  string
}

// ValidationResult is the outcome of ValidateProject: a project with any
// Errors is not safe to plan or execute; Warnings never block execution.
type ValidationResult struct {
	Errors   []Finding
	Warnings []Finding
}

// IsValid reports whether the project has no structural errors.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// HasWarnings reports whether the project has any non-blocking findings.
func (r ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// adjacency builds a forward adjacency list (source -> targets) restricted
// to edges whose endpoints both exist, plus the set of node ids known to
// the project.
func adjacency(p *Project) (adj map[string][]string, known map[string]bool) {
	known = make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		known[n.ID] = true
	}
	adj = make(map[string][]string, len(p.Nodes))
	for _, e := range p.Edges {
		if known[e.Source] && known[e.Target] {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}
	return adj, known
}

// isCyclic reports whether the directed graph described by adj (over the
// node ids in known) contains a cycle, via recursive DFS with a 3-color
// marking (white/gray/black).
func isCyclic(adj map[string][]string, known map[string]bool) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(known))

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for id := range known {
		if color[id] == white {
			if visit(id) {
				return true
			}
		}
	}
	return false
}

// WouldCreateCycle reports whether adding an edge source->target to p
// would introduce a cycle, without mutating p. Unknown endpoints never
// create a cycle (AddEdge rejects them separately, with a more specific
// error).
func WouldCreateCycle(p *Project, source, target string) bool {
	adj, known := adjacency(p)
	if !known[source] || !known[target] {
		return false
	}
	adj[source] = append(adj[source], target)
	return isCyclic(adj, known)
}

// ValidateProject checks a project's structural integrity (dangling edge
// endpoints, cycles, duplicate file paths) and flags incompleteness
// (missing descriptions or exports, unreachable nodes) as warnings.
//
// The original implementation's CyclicDependency finding does not identify
// which nodes participate in the cycle (only that one exists); this is
// preserved rather than fixed.
func ValidateProject(p *Project) ValidationResult {
	var result ValidationResult

	adj, known := adjacency(p)
	for _, e := range p.Edges {
		if !known[e.Source] {
			result.Errors = append(result.Errors, Finding{Kind: KindMissingNode, NodeID: e.Source})
		}
		if !known[e.Target] {
			result.Errors = append(result.Errors, Finding{Kind: KindMissingNode, NodeID: e.Target})
		}
	}

	if isCyclic(adj, known) {
		result.Errors = append(result.Errors, Finding{Kind: KindCyclicDependency, Detail: "cycle detected in graph"})
	}

	byPath := make(map[string][]string)
	for _, n := range p.Nodes {
		byPath[n.FilePath] = append(byPath[n.FilePath], n.ID)
	}
	for path, ids := range byPath {
		if len(ids) > 1 {
			result.Errors = append(result.Errors, Finding{Kind: KindDuplicateFilePath, Detail: path})
		}
	}

	inEdge := make(map[string]bool, len(p.Nodes))
	for _, e := range p.Edges {
		inEdge[e.Source] = true
		inEdge[e.Target] = true
	}
	for _, n := range p.Nodes {
		if !inEdge[n.ID] && len(p.Nodes) > 1 {
			result.Warnings = append(result.Warnings, Finding{Kind: KindUnreachableNode, NodeID: n.ID})
		}
		if n.Description == "" {
			result.Warnings = append(result.Warnings, Finding{Kind: KindEmptyDescription, NodeID: n.ID})
		}
		if len(n.Exports) == 0 {
			result.Warnings = append(result.Warnings, Finding{Kind: KindNoExports, NodeID: n.ID})
		}
	}

	return result
}
