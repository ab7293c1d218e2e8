package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads .classkit.kdl from projectRoot. A missing file is not an
// error: (nil, nil) tells the caller to try the next source.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".classkit.kdl")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read .classkit.kdl: %w", err)
	}
	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, fmt.Errorf(".classkit.kdl: %w", err)
	}
	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Root = s
					}
				case "name":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Name = s
					}
				}
			}
		case "scan":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "budget_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Scan.BudgetMs = v
					}
				case "max_parallel":
					if v, ok := firstIntArg(cn); ok {
						cfg.Scan.MaxParallel = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "symbols":
			for _, cn := range n.Children {
				if nodeName(cn) == "provider" {
					if s, ok := firstStringArg(cn); ok {
						cfg.Symbols.Provider = s
					}
				}
			}
		case "include":
			cfg.Workspace.Include = append(cfg.Workspace.Include, collectStringArgs(n)...)
		case "exclude":
			// An exclude block replaces the defaults entirely.
			cfg.Workspace.Exclude = collectStringArgs(n)
		}
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads strings from inline arguments, or from child
// nodes when the block form `exclude { "pattern" }` is used. In the block
// form a bare string is parsed as the child node's name.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
