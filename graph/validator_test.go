package graph

import "testing"

func TestWouldCreateCycle_DetectsIndirectCycle(t *testing.T) {
	p := NewProject("/tmp/proj")
	a := mustAddNode(t, p, "a.ts")
	b := mustAddNode(t, p, "b.ts")
	c := mustAddNode(t, p, "c.ts")
	if _, err := p.AddEdge(a.ID, b.ID, ""); err != nil {
		t.Fatalf("AddEdge a->b: %v", err)
	}
	if _, err := p.AddEdge(b.ID, c.ID, ""); err != nil {
		t.Fatalf("AddEdge b->c: %v", err)
	}

	if !WouldCreateCycle(p, c.ID, a.ID) {
		t.Fatal("expected adding c->a to be reported as a cycle")
	}
	if WouldCreateCycle(p, a.ID, c.ID) {
		t.Fatal("did not expect adding a->c (already reachable, same direction) to report a false negative path")
	}
}

func TestWouldCreateCycle_UnknownEndpointsNeverCycle(t *testing.T) {
	p := NewProject("/tmp/proj")
	a := mustAddNode(t, p, "a.ts")
	if WouldCreateCycle(p, a.ID, "unknown") {
		t.Fatal("an edge to an unknown node cannot create a cycle")
	}
}

// TestValidateProject_NoCycleInDiamond covers invariant 1 for the
// acyclic S2 diamond: no structural errors.
func TestValidateProject_NoCycleInDiamond(t *testing.T) {
	p := NewProject("/tmp/proj")
	a := mustAddNode(t, p, "a.ts")
	b := mustAddNode(t, p, "b.ts")
	c := mustAddNode(t, p, "c.ts")
	d := mustAddNode(t, p, "d.ts")
	for _, e := range [][2]string{{a.ID, c.ID}, {b.ID, c.ID}, {c.ID, d.ID}} {
		if _, err := p.AddEdge(e[0], e[1], ""); err != nil {
			t.Fatalf("AddEdge %v: %v", e, err)
		}
	}

	result := ValidateProject(p)
	if !result.IsValid() {
		t.Fatalf("expected a valid diamond, got errors: %+v", result.Errors)
	}
}

func TestValidateProject_FlagsDanglingEdgeAndDuplicatePath(t *testing.T) {
	p := &Project{
		Nodes: []Node{
			{ID: "n1", FilePath: "dup.ts"},
			{ID: "n2", FilePath: "dup.ts"},
		},
		Edges: []Edge{
			{ID: "e1", Source: "n1", Target: "ghost"},
		},
	}

	result := ValidateProject(p)
	if result.IsValid() {
		t.Fatal("expected structural errors for dangling edge and duplicate path")
	}

	var sawMissingNode, sawDuplicatePath bool
	for _, f := range result.Errors {
		switch f.Kind {
		case KindMissingNode:
			sawMissingNode = true
		case KindDuplicateFilePath:
			sawDuplicatePath = true
		}
	}
	if !sawMissingNode {
		t.Error("expected a KindMissingNode finding for the dangling edge")
	}
	if !sawDuplicatePath {
		t.Error("expected a KindDuplicateFilePath finding")
	}
}

func TestValidateProject_WarnsOnEmptyDescriptionAndNoExports(t *testing.T) {
	p := NewProject("/tmp/proj")
	mustAddNode(t, p, "a.ts")

	result := ValidateProject(p)
	if !result.IsValid() {
		t.Fatalf("a node missing description/exports is still structurally valid, got errors: %+v", result.Errors)
	}
	if !result.HasWarnings() {
		t.Fatal("expected warnings for empty description and no exports")
	}
}
