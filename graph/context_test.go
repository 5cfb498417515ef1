package graph

import (
	"strings"
	"testing"
)

// TestBuildPrompt_InjectsDependencyCode covers S5: project with edge
// A->B, A.GeneratedCode = "export const x = 1;". The prompt built for B
// contains that literal string inside a fenced block under a subsection
// naming A's file path.
func TestBuildPrompt_InjectsDependencyCode(t *testing.T) {
	p := NewProject("/tmp/proj")
	a, err := p.AddNode(Node{Name: "a", FilePath: "a.ts", Language: LanguageTypeScript})
	if err != nil {
		t.Fatalf("AddNode a: %v", err)
	}
	b, err := p.AddNode(Node{Name: "b", FilePath: "b.ts", Language: LanguageTypeScript})
	if err != nil {
		t.Fatalf("AddNode b: %v", err)
	}
	if _, err := p.AddEdge(a.ID, b.ID, ""); err != nil {
		t.Fatalf("AddEdge a->b: %v", err)
	}

	code := "export const x = 1;"
	p.FindNode(a.ID).GeneratedCode = &code

	prompt, err := BuildPrompt(p, b.ID)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if !strings.Contains(prompt, "a.ts") {
		t.Error("expected prompt to mention dependency's file path")
	}
	if !strings.Contains(prompt, "```\n"+code) {
		t.Errorf("expected prompt to contain the dependency's code fenced, got:\n%s", prompt)
	}
}

func TestBuildPrompt_FallsBackToExportsWithoutGeneratedCode(t *testing.T) {
	p := NewProject("/tmp/proj")
	a, err := p.AddNode(Node{
		Name:     "a",
		FilePath: "a.ts",
		Language: LanguageTypeScript,
		Exports:  []ExportSignature{{Name: "x", TypeSignature: "number"}},
	})
	if err != nil {
		t.Fatalf("AddNode a: %v", err)
	}
	b, err := p.AddNode(Node{Name: "b", FilePath: "b.ts", Language: LanguageTypeScript})
	if err != nil {
		t.Fatalf("AddNode b: %v", err)
	}
	if _, err := p.AddEdge(a.ID, b.ID, ""); err != nil {
		t.Fatalf("AddEdge a->b: %v", err)
	}

	prompt, err := BuildPrompt(p, b.ID)
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}
	if !strings.Contains(prompt, "x: number") {
		t.Errorf("expected prompt to fall back to export signatures, got:\n%s", prompt)
	}
}

func TestBuildPrompt_NodeNotFound(t *testing.T) {
	p := NewProject("/tmp/proj")
	_, err := BuildPrompt(p, "missing")
	assertStructuralErrorCode(t, err, ErrNodeNotFound)
}

// TestStripCodeBlocks covers S7.
func TestStripCodeBlocks(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"fenced with language", "```go\npackage main\n```", "package main"},
		{"unfenced", "no fence", "no fence"},
		{"fenced without language", "```\nhello\n```", "hello"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeBlocks(tc.input); got != tc.want {
				t.Errorf("StripCodeBlocks(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestStripCodeBlocks_Idempotent(t *testing.T) {
	inputs := []string{
		"```go\npackage main\n```",
		"no fence",
		"```\n```\n```",
	}
	for _, in := range inputs {
		once := StripCodeBlocks(in)
		twice := StripCodeBlocks(once)
		if once != twice {
			t.Errorf("StripCodeBlocks not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
