// Command needlepoint is a thin CLI client for a running needlepointd
// server: every subcommand issues one HTTP request and prints the
// result, mirroring the original desktop client's command-line
// companion.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamilmandziuk/needlepoint/fsutil"
	"github.com/kamilmandziuk/needlepoint/graph"
)

var port int

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "needlepoint",
		Short: "Command-line client for a running needlepointd server",
	}
	root.PersistentFlags().IntVar(&port, "port", 9999, "port needlepointd is listening on")

	root.AddCommand(
		newStatusCmd(),
		newProjectCmd(),
		newNewCmd(),
		newLoadCmd(),
		newSaveCmd(),
		newNodesCmd(),
		newNodeCmd(),
		newAddNodeCmd(),
		newUpdateNodeCmd(),
		newDeleteNodeCmd(),
		newEdgesCmd(),
		newAddEdgeCmd(),
		newDeleteEdgeCmd(),
		newPlanCmd(),
		newPromptCmd(),
		newGenerateCmd(),
		newGenerateAllCmd(),
		newWriteFilesCmd(),
		newSetKeysCmd(),
	)
	return root
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server status and whether a project is loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status map[string]any
			if err := newClient(port).get("/status", &status); err != nil {
				return err
			}
			printJSON(status)
			return nil
		},
	}
}

func newProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project",
		Short: "Show the currently loaded project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p graph.Project
			if err := newClient(port).get("/project", &p); err != nil {
				return err
			}
			printJSON(p)
			return nil
		},
	}
}

func newNewCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "new <path>",
		Short: "Create a new project at path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p graph.Project
			body := map[string]string{"path": args[0], "name": name}
			if err := newClient(port).post("/project/new", body, &p); err != nil {
				return err
			}
			printJSON(p)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	return cmd
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <path>",
		Short: "Load an existing project from path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p graph.Project
			body := map[string]string{"path": args[0]}
			if err := newClient(port).post("/project/load", body, &p); err != nil {
				return err
			}
			printJSON(p)
			return nil
		},
	}
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the currently loaded project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]string
			if err := newClient(port).post("/project/save", nil, &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
}

func newNodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List every node in the loaded project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var nodes []graph.Node
			if err := newClient(port).get("/nodes", &nodes); err != nil {
				return err
			}
			printJSON(nodes)
			return nil
		},
	}
}

func newNodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "node <id>",
		Short: "Show a single node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n graph.Node
			if err := newClient(port).get("/nodes/"+args[0], &n); err != nil {
				return err
			}
			printJSON(n)
			return nil
		},
	}
}

func newAddNodeCmd() *cobra.Command {
	var name, filePath, language string
	cmd := &cobra.Command{
		Use:   "add-node",
		Short: "Create a node",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"name": name, "file_path": filePath, "language": language}
			var n graph.Node
			if err := newClient(port).post("/nodes", body, &n); err != nil {
				return err
			}
			printJSON(n)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "node name (required)")
	cmd.Flags().StringVar(&filePath, "file-path", "", "file path the node generates (required)")
	cmd.Flags().StringVar(&language, "language", "", "source language")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("file-path")
	return cmd
}

func newUpdateNodeCmd() *cobra.Command {
	var name, filePath, language, description, purpose string
	cmd := &cobra.Command{
		Use:   "update-node <id>",
		Short: "Update a node's editable fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var existing graph.Node
			if err := newClient(port).get("/nodes/"+args[0], &existing); err != nil {
				return err
			}
			if name != "" {
				existing.Name = name
			}
			if filePath != "" {
				existing.FilePath = filePath
			}
			if language != "" {
				existing.Language = graph.Language(language)
			}
			if description != "" {
				existing.Description = description
			}
			if purpose != "" {
				existing.Purpose = purpose
			}
			var updated graph.Node
			if err := newClient(port).put("/nodes/"+args[0], existing, &updated); err != nil {
				return err
			}
			printJSON(updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&filePath, "file-path", "", "new file path")
	cmd.Flags().StringVar(&language, "language", "", "new language")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&purpose, "purpose", "", "new purpose")
	return cmd
}

func newDeleteNodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-node <id>",
		Short: "Delete a node and any edges touching it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]string
			if err := newClient(port).delete("/nodes/"+args[0], &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
}

func newEdgesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edges",
		Short: "List every edge in the loaded project",
		RunE: func(cmd *cobra.Command, args []string) error {
			var edges []graph.Edge
			if err := newClient(port).get("/edges", &edges); err != nil {
				return err
			}
			printJSON(edges)
			return nil
		},
	}
}

func newAddEdgeCmd() *cobra.Command {
	var source, target, label string
	cmd := &cobra.Command{
		Use:   "add-edge",
		Short: "Create a dependency edge",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"source": source, "target": target, "label": label}
			var e graph.Edge
			if err := newClient(port).post("/edges", body, &e); err != nil {
				return err
			}
			printJSON(e)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source node id (required)")
	cmd.Flags().StringVar(&target, "target", "", "target node id (required)")
	cmd.Flags().StringVar(&label, "label", "", "edge label")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newDeleteEdgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-edge <id>",
		Short: "Delete an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]string
			if err := newClient(port).delete("/edges/"+args[0], &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
}

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the execution plan without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var plan graph.ExecutionPlan
			if err := newClient(port).get("/execution-plan", &plan); err != nil {
				return err
			}
			printJSON(plan)
			return nil
		},
	}
}

func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <id>",
		Short: "Show the prompt that would be sent for a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out map[string]string
			if err := newClient(port).get("/prompt/"+args[0], &out); err != nil {
				return err
			}
			fmt.Println(out["prompt"])
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var apiKey string
	cmd := &cobra.Command{
		Use:   "generate <id>",
		Short: "Generate a single node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{}
			if apiKey != "" {
				body["apiKey"] = apiKey
			}
			var n graph.Node
			if err := newClient(port).post("/generate/"+args[0], body, &n); err != nil {
				return err
			}
			printJSON(n)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "credential to use for this call only")
	return cmd
}

func newGenerateAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-all",
		Short: "Generate every reachable node, wave by wave",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p graph.Project
			if err := newClient(port).post("/generate-all", nil, &p); err != nil {
				return err
			}
			printJSON(p)
			return nil
		},
	}
}

func newWriteFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-files",
		Short: "Write every Complete node's generated code to its file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			var p graph.Project
			if err := newClient(port).get("/project", &p); err != nil {
				return err
			}
			written := 0
			for _, n := range p.Nodes {
				if n.Status != graph.StatusComplete || n.GeneratedCode == nil {
					continue
				}
				if err := fsutil.WriteFile(p.ProjectPath, n.FilePath, *n.GeneratedCode); err != nil {
					return fmt.Errorf("writing %s: %w", n.FilePath, err)
				}
				written++
			}
			fmt.Printf("wrote %d file(s) to %s\n", written, p.ProjectPath)
			return nil
		},
	}
}

func newSetKeysCmd() *cobra.Command {
	var anthropic, openai, ollamaBaseURL string
	cmd := &cobra.Command{
		Use:   "set-keys",
		Short: "Update stored provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{
				"anthropic":     anthropic,
				"openai":        openai,
				"ollamaBaseUrl": ollamaBaseURL,
			}
			var out map[string]string
			if err := newClient(port).post("/api-keys", body, &out); err != nil {
				return err
			}
			printJSON(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&anthropic, "anthropic", "", "Anthropic API key")
	cmd.Flags().StringVar(&openai, "openai", "", "OpenAI API key")
	cmd.Flags().StringVar(&ollamaBaseURL, "ollama-base-url", "", "Ollama base URL")
	return cmd
}
