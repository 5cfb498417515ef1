package graph

import "testing"

func newTestNode(filePath string) Node {
	return Node{Name: filePath, FilePath: filePath, Language: LanguageTypeScript}
}

func mustAddNode(t *testing.T, p *Project, filePath string) Node {
	t.Helper()
	n, err := p.AddNode(newTestNode(filePath))
	if err != nil {
		t.Fatalf("AddNode(%q) returned unexpected error: %v", filePath, err)
	}
	return n
}

func TestAddNode_AssignsID(t *testing.T) {
	p := NewProject("/tmp/proj")
	n := mustAddNode(t, p, "a.ts")
	if n.ID == "" {
		t.Fatal("expected AddNode to assign a non-empty ID")
	}
	if n.Status != StatusPending {
		t.Fatalf("expected new node status = Pending, got %q", n.Status)
	}
}

// TestAddNode_DuplicateFilePath covers S4: a second node at the same
// FilePath is rejected and the project is left unchanged.
func TestAddNode_DuplicateFilePath(t *testing.T) {
	p := NewProject("/tmp/proj")
	mustAddNode(t, p, "x.ts")

	_, err := p.AddNode(newTestNode("x.ts"))
	if err == nil {
		t.Fatal("expected an error adding a duplicate file path")
	}
	var structErr *StructuralError
	if !asStructuralError(err, &structErr) {
		t.Fatalf("expected *StructuralError, got %T", err)
	}
	if structErr.Code != ErrDuplicateFilePath {
		t.Fatalf("expected code %q, got %q", ErrDuplicateFilePath, structErr.Code)
	}
	if len(p.Nodes) != 1 {
		t.Fatalf("expected project to still have 1 node, got %d", len(p.Nodes))
	}
}

func TestUpdateNode_OverwritesEditableFieldsOnly(t *testing.T) {
	p := NewProject("/tmp/proj")
	n := mustAddNode(t, p, "a.ts")
	code := "export const x = 1;"
	p.FindNode(n.ID).GeneratedCode = &code
	p.FindNode(n.ID).Status = StatusComplete

	updated, err := p.UpdateNode(n.ID, Node{Name: "renamed", FilePath: "a.ts", Description: "new desc"})
	if err != nil {
		t.Fatalf("UpdateNode returned unexpected error: %v", err)
	}
	if updated.Name != "renamed" || updated.Description != "new desc" {
		t.Fatalf("expected editable fields to update, got %+v", updated)
	}
	if updated.Status != StatusComplete || updated.GeneratedCode == nil {
		t.Fatalf("expected lifecycle fields untouched, got status=%q code=%v", updated.Status, updated.GeneratedCode)
	}
}

func TestUpdateNode_NotFound(t *testing.T) {
	p := NewProject("/tmp/proj")
	_, err := p.UpdateNode("missing", Node{})
	assertStructuralErrorCode(t, err, ErrNodeNotFound)
}

func TestDeleteNode_RemovesTouchingEdges(t *testing.T) {
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

	if err := p.DeleteNode(b.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if len(p.Nodes) != 2 {
		t.Fatalf("expected 2 remaining nodes, got %d", len(p.Nodes))
	}
	if len(p.Edges) != 0 {
		t.Fatalf("expected both edges touching b to be removed, got %d", len(p.Edges))
	}
}

func TestAddEdge_RejectsSelfLoop(t *testing.T) {
	p := NewProject("/tmp/proj")
	a := mustAddNode(t, p, "a.ts")
	_, err := p.AddEdge(a.ID, a.ID, "")
	assertStructuralErrorCode(t, err, ErrSelfLoop)
}

func TestAddEdge_RejectsDuplicate(t *testing.T) {
	p := NewProject("/tmp/proj")
	a := mustAddNode(t, p, "a.ts")
	b := mustAddNode(t, p, "b.ts")
	if _, err := p.AddEdge(a.ID, b.ID, ""); err != nil {
		t.Fatalf("first AddEdge: %v", err)
	}
	_, err := p.AddEdge(a.ID, b.ID, "")
	assertStructuralErrorCode(t, err, ErrDuplicateEdge)
}

func TestAddEdge_RejectsMissingEndpoint(t *testing.T) {
	p := NewProject("/tmp/proj")
	a := mustAddNode(t, p, "a.ts")
	_, err := p.AddEdge(a.ID, "does-not-exist", "")
	assertStructuralErrorCode(t, err, ErrMissingEndpoint)
}

// TestAddEdge_RejectsCycle covers S3: existing edges A->B, B->C; adding
// C->A must fail with WouldCreateCycle and leave the project unchanged.
func TestAddEdge_RejectsCycle(t *testing.T) {
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

	edgeCountBefore := len(p.Edges)
	_, err := p.AddEdge(c.ID, a.ID, "")
	assertStructuralErrorCode(t, err, ErrWouldCreateCycle)
	if len(p.Edges) != edgeCountBefore {
		t.Fatalf("expected edge count unchanged after rejected cycle, got %d want %d", len(p.Edges), edgeCountBefore)
	}
}

func TestDeleteEdge(t *testing.T) {
	p := NewProject("/tmp/proj")
	a := mustAddNode(t, p, "a.ts")
	b := mustAddNode(t, p, "b.ts")
	e, err := p.AddEdge(a.ID, b.ID, "")
	if err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := p.DeleteEdge(e.ID); err != nil {
		t.Fatalf("DeleteEdge: %v", err)
	}
	if len(p.Edges) != 0 {
		t.Fatalf("expected edge removed, got %d remaining", len(p.Edges))
	}
}

func assertStructuralErrorCode(t *testing.T, err error, want StructuralErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error with code %q, got nil", want)
	}
	var structErr *StructuralError
	if !asStructuralError(err, &structErr) {
		t.Fatalf("expected *StructuralError, got %T", err)
	}
	if structErr.Code != want {
		t.Fatalf("expected code %q, got %q", want, structErr.Code)
	}
}

func asStructuralError(err error, target **StructuralError) bool {
	se, ok := err.(*StructuralError)
	if !ok {
		return false
	}
	*target = se
	return true
}
