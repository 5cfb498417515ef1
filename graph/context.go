package graph

import (
	"fmt"
	"regexp"
	"strings"
)

var languageNames = map[Language]string{
	LanguageTypeScript: "TypeScript",
	LanguageJavaScript: "JavaScript",
	LanguagePython:     "Python",
	LanguageRust:       "Rust",
	LanguageGo:         "Go",
}

func formatLanguage(lang Language) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return string(lang)
}

// dependency pairs a node this node depends on with the label of the edge
// that connects them.
type dependency struct {
	node  *Node
	label string
}

func dependenciesOf(p *Project, nodeID string) []dependency {
	var deps []dependency
	for _, e := range p.Edges {
		if e.Target != nodeID {
			continue
		}
		source := p.FindNode(e.Source)
		if source == nil {
			continue
		}
		label := e.Label
		if label == "" {
			label = "dependency"
		}
		deps = append(deps, dependency{node: source, label: label})
	}
	return deps
}

// BuildPrompt assembles the user-turn prompt for generating nodeID's file:
// a header naming the language and file path, the node's purpose and
// description, its required exports, its dependencies' generated code (or
// export signatures, if not yet generated), any constraints, and a closing
// instruction to emit raw code only.
//
// Returns a StructuralError with code ErrNodeNotFound if nodeID does not
// exist in p.
func BuildPrompt(p *Project, nodeID string) (string, error) {
	node := p.FindNode(nodeID)
	if node == nil {
		return "", newStructuralError(ErrNodeNotFound, "node '%s' not found", nodeID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are implementing a %s module.\n\n", formatLanguage(node.Language))
	fmt.Fprintf(&b, "## File: %s\n", node.FilePath)

	if node.Purpose != "" {
		fmt.Fprintf(&b, "## Purpose: %s\n\n", node.Purpose)
	}
	if node.Description != "" {
		fmt.Fprintf(&b, "## Description\n%s\n\n", node.Description)
	}

	if len(node.Exports) > 0 {
		b.WriteString("## You must export:\n")
		for _, exp := range node.Exports {
			writeExport(&b, exp)
		}
		b.WriteString("\n")
	}

	deps := dependenciesOf(p, nodeID)
	if len(deps) > 0 {
		b.WriteString("## Dependencies (you can import from these files):\n\n")
		for _, dep := range deps {
			fmt.Fprintf(&b, "### %s `%s`\n", dep.label, dep.node.FilePath)
			if dep.node.GeneratedCode != nil {
				b.WriteString("```\n")
				code := *dep.node.GeneratedCode
				b.WriteString(code)
				if !strings.HasSuffix(code, "\n") {
					b.WriteString("\n")
				}
				b.WriteString("```\n\n")
			} else {
				b.WriteString("Exports:\n")
				for _, exp := range dep.node.Exports {
					fmt.Fprintf(&b, "- %s: %s\n", exp.Name, exp.TypeSignature)
					if exp.Description != "" {
						fmt.Fprintf(&b, "  %s\n", exp.Description)
					}
				}
				b.WriteString("\n")
			}
		}
	}

	if len(node.LLMConfig.Constraints) > 0 {
		b.WriteString("## Constraints:\n")
		for _, c := range node.LLMConfig.Constraints {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}

	b.WriteString("Generate the complete implementation.\n\n")
	b.WriteString("IMPORTANT: Output ONLY the raw code. Do NOT wrap the code in markdown code blocks (``` or ```typescript). Do NOT include any explanations, comments about the code, or surrounding text. The output should be directly usable as a source file.")

	return b.String(), nil
}

func writeExport(b *strings.Builder, exp ExportSignature) {
	fmt.Fprintf(b, "- %s", exp.Name)
	if exp.TypeSignature != "" {
		fmt.Fprintf(b, ": %s", exp.TypeSignature)
	}
	b.WriteString("\n")
	if exp.Description != "" {
		fmt.Fprintf(b, "  %s\n", exp.Description)
	}
}

// BuildSystemPrompt assembles the system-turn prompt for a node: a
// language-flavored persona, plus the node's custom system prompt if one
// was configured.
func BuildSystemPrompt(n *Node) string {
	base := fmt.Sprintf("You are an expert %s programmer. Generate clean, well-documented, production-ready code.", formatLanguage(n.Language))
	if n.LLMConfig.SystemPrompt != nil && *n.LLMConfig.SystemPrompt != "" {
		return base + "\n\n" + *n.LLMConfig.SystemPrompt
	}
	return base
}

var codeFenceRE = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*\\n?(.*?)\\n?```$")

// StripCodeBlocks removes a single enclosing markdown code fence from LLM
// output, if present (```language\n...\n``` or ```\n...\n```). Content
// that isn't wrapped in a fence is returned trimmed, unchanged.
func StripCodeBlocks(content string) string {
	content = strings.TrimSpace(content)
	if m := codeFenceRE.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return content
}
