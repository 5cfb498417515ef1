// Package graph provides the core orchestration engine for needlepoint:
// a dependency graph of source files, a validator and topological planner,
// a prompt-context builder, and an executor that drives code generation
// across the graph wave by wave.
package graph

import "time"

// Language identifies the programming language a node's generated file is
// written in. The constants below are the known set; (*Project).AddNode
// does not check the value, and prompt building uses an unknown tag as-is.
type Language string

const (
	LanguageTypeScript Language = "typescript"
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageRust       Language = "rust"
	LanguageGo         Language = "go"
)

// ProviderTag names one of the three LLM providers needlepoint knows how to
// call. It is a closed set matching NewProvider's switch.
type ProviderTag string

const (
	ProviderAnthropic ProviderTag = "anthropic"
	ProviderOpenAI    ProviderTag = "openai"
	ProviderOllama    ProviderTag = "ollama"
)

// NodeStatus tracks a node's position in the generation lifecycle.
type NodeStatus string

const (
	StatusPending    NodeStatus = "pending"
	StatusGenerating NodeStatus = "generating"
	StatusComplete   NodeStatus = "complete"
	StatusError      NodeStatus = "error"
)

// Position holds editor/canvas coordinates. Needlepoint's core never reads
// these; they are opaque to the engine and round-tripped for the adapter
// surface (the original desktop UI placed nodes on a canvas).
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// ExportSignature documents one symbol a node's generated file must export.
type ExportSignature struct {
	Name          string `json:"name" yaml:"name"`
	TypeSignature string `json:"typeSignature" yaml:"typeSignature"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
}

// LLMConfig selects a provider, model, and generation constraints for a
// single node (or, on a Manifest, the project-wide default).
type LLMConfig struct {
	Provider     ProviderTag `json:"provider" yaml:"provider"`
	Model        string      `json:"model" yaml:"model"`
	SystemPrompt *string     `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	Constraints  []string    `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	APIKeyEnv    string      `json:"apiKeyEnv,omitempty" yaml:"apiKeyEnv,omitempty"`
}

// DefaultLLMConfig returns needlepoint's default generation config: the
// Anthropic model the original desktop client shipped with.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:  ProviderAnthropic,
		Model:     "claude-sonnet-4-20250514",
		APIKeyEnv: "ANTHROPIC_API_KEY",
	}
}

// Node is one file to be generated: its identity, its place in the
// dependency graph, the contract it must satisfy, and the outcome of its
// most recent generation attempt.
type Node struct {
	ID            string            `json:"id" yaml:"id"`
	Name          string            `json:"name" yaml:"name"`
	FilePath      string            `json:"filePath" yaml:"filePath"`
	Language      Language          `json:"language" yaml:"language"`
	Description   string            `json:"description" yaml:"description"`
	Purpose       string            `json:"purpose" yaml:"purpose"`
	Exports       []ExportSignature `json:"exports,omitempty" yaml:"exports,omitempty"`
	LLMConfig     LLMConfig         `json:"llmConfig" yaml:"llmConfig"`
	Status        NodeStatus        `json:"status" yaml:"status"`
	GeneratedCode *string           `json:"generatedCode,omitempty" yaml:"generatedCode,omitempty"`
	ErrorMessage  *string           `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Position      Position          `json:"position" yaml:"position"`
}

// Edge is a directed dependency: Source must be generated, or at least be
// present in the graph, before Target's prompt is built, because Target's
// context includes Source's exports and (once generated) its code.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Manifest carries project-level metadata: its name, version, optional
// entry point node, and the default LLM configuration new nodes inherit.
type Manifest struct {
	Name       string    `json:"name" yaml:"name"`
	Version    string    `json:"version" yaml:"version"`
	EntryPoint *string   `json:"entryPoint,omitempty" yaml:"entryPoint,omitempty"`
	DefaultLLM LLMConfig `json:"defaultLlm" yaml:"defaultLlm"`
}

// DefaultManifest returns the manifest a freshly created project starts
// with, matching the original client's "New Project" / "0.1.0" defaults.
func DefaultManifest() Manifest {
	return Manifest{
		Name:       "New Project",
		Version:    "0.1.0",
		DefaultLLM: DefaultLLMConfig(),
	}
}

// Project is the in-memory graph: a manifest, the node set, and the edge
// set. ProjectPath is the directory the project was loaded from (or will
// be saved to); it is never serialized as part of the node/edge data.
//
// Project is not itself safe for concurrent use — callers that share a
// Project across goroutines (the HTTP server and the Executor both do)
// must guard it with an external sync.RWMutex, exactly as Executor does.
type Project struct {
	Manifest    Manifest `json:"manifest" yaml:"manifest"`
	Nodes       []Node   `json:"nodes" yaml:"nodes"`
	Edges       []Edge   `json:"edges" yaml:"edges"`
	ProjectPath string   `json:"-" yaml:"-"`
}

// NewProject returns an empty project with default manifest values, rooted
// at projectPath.
func NewProject(projectPath string) *Project {
	return &Project{
		Manifest:    DefaultManifest(),
		Nodes:       []Node{},
		Edges:       []Edge{},
		ProjectPath: projectPath,
	}
}

// now is overridable in tests; production code always uses time.Now.
var now = time.Now
