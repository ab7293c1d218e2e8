package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/classkit/classkit/internal/config"
	"github.com/classkit/classkit/internal/edits"
	"github.com/classkit/classkit/internal/mcp"
	"github.com/classkit/classkit/internal/service"
	"github.com/classkit/classkit/internal/types"
	"github.com/classkit/classkit/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = cwd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, err
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Workspace.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Workspace.Exclude = append(cfg.Workspace.Exclude, excludeFlags...)
	}
	if c.Bool("no-symbols") {
		cfg.Symbols.Provider = "none"
	}
	return cfg, nil
}

func newService(c *cli.Context) (*service.Service, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	return service.New(cfg)
}

func main() {
	app := &cli.App{
		Name:                   "classkit",
		Usage:                  "Structural refactoring for C# source: derive classes, extract interfaces, move members to base",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (defaults to the working directory)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Additional exclude glob patterns",
			},
			&cli.BoolFlag{
				Name:  "no-symbols",
				Usage: "Disable the parser-backed symbol provider and use text scanning only",
			},
		},
		Commands: []*cli.Command{
			deriveCommand(),
			extractInterfaceCommand(),
			moveToBaseCommand(),
			membersCommand(),
			findCommand(),
			mcpCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "classkit: %v\n", err)
		os.Exit(1)
	}
}

func deriveCommand() *cli.Command {
	return &cli.Command{
		Name:      "derive",
		Usage:     "Generate a derived class from a base class",
		ArgsUsage: "<file> <base-class> <derived-name>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "separate-file",
				Usage: "Write the derived class to its own file next to the source",
			},
			applyFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("usage: classkit derive <file> <base-class> <derived-name>", 2)
			}
			svc, err := newService(c)
			if err != nil {
				return err
			}
			res, err := svc.DeriveClass(c.Context, c.Args().Get(0), c.Args().Get(1), c.Args().Get(2), c.Bool("separate-file"))
			if err != nil {
				return err
			}
			if c.Bool("apply") {
				return applyEdit(svc, res.Edit)
			}
			return printJSON(map[string]any{
				"edit":       res.Edit,
				"selections": res.Selections,
				"newFile":    res.NewFilePath,
			})
		},
	}
}

func extractInterfaceCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract-interface",
		Aliases:   []string{"extract"},
		Usage:     "Extract the member at a position into an interface",
		ArgsUsage: "<file> <line>:<character> <interface-name>",
		Flags:     []cli.Flag{applyFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("usage: classkit extract-interface <file> <line>:<character> <interface>", 2)
			}
			pos, err := parsePosition(c.Args().Get(1))
			if err != nil {
				return err
			}
			svc, err := newService(c)
			if err != nil {
				return err
			}
			res, err := svc.ExtractInterface(c.Context, c.Args().Get(0), pos, c.Args().Get(2))
			if err != nil {
				return err
			}
			if res.AlreadyDeclared {
				fmt.Printf("%s already declares %s; nothing to do\n", c.Args().Get(2), res.Member.Name)
				return nil
			}
			if c.Bool("apply") {
				return applyEdit(svc, res.Edit)
			}
			return printJSON(map[string]any{
				"edit":    res.Edit,
				"created": res.Created,
				"member":  res.Member.Name,
			})
		},
	}
}

func moveToBaseCommand() *cli.Command {
	return &cli.Command{
		Name:      "move-to-base",
		Aliases:   []string{"move"},
		Usage:     "Move the member at a position into its base class",
		ArgsUsage: "<file> <line>:<character>",
		Flags:     []cli.Flag{applyFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: classkit move-to-base <file> <line>:<character>", 2)
			}
			pos, err := parsePosition(c.Args().Get(1))
			if err != nil {
				return err
			}
			svc, err := newService(c)
			if err != nil {
				return err
			}
			res, err := svc.MoveToBase(c.Context, c.Args().Get(0), pos)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Println("no movable member at that position")
				return nil
			}
			if c.Bool("apply") {
				return applyEdit(svc, res.Edit)
			}
			return printJSON(map[string]any{
				"edit":   res.Edit,
				"member": res.Member,
				"base":   res.Base,
				"moved":  res.MovedAll,
			})
		},
	}
}

func membersCommand() *cli.Command {
	return &cli.Command{
		Name:      "members",
		Usage:     "List the members of a class",
		ArgsUsage: "<file> <class>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: classkit members <file> <class>", 2)
			}
			svc, err := newService(c)
			if err != nil {
				return err
			}
			members, err := svc.ListMembers(c.Context, c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			for _, m := range members {
				fmt.Printf("%-8s %s [%d:%d]\n", m.Kind, m.Name, m.Start, m.End)
			}
			return nil
		},
	}
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Find the files declaring a class across the workspace",
		ArgsUsage: "<class>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "partial",
				Usage: "Only report partial declarations",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: classkit find <class>", 2)
			}
			svc, err := newService(c)
			if err != nil {
				return err
			}
			name := c.Args().Get(0)
			if c.Bool("partial") {
				hits, err := svc.PartialClasses(c.Context, name)
				if err != nil {
					return err
				}
				for _, h := range hits {
					for _, line := range h.Lines {
						fmt.Printf("%s:%d\n", h.Path, line+1)
					}
				}
				return nil
			}
			locs, err := svc.FindClass(c.Context, name)
			if err != nil {
				return err
			}
			for _, l := range locs {
				marker := ""
				if l.Partial {
					marker = " (partial)"
				}
				fmt.Printf("%s:%d %s.%s%s\n", l.Path, l.Line+1, l.Namespace, l.ClassName, marker)
			}
			return nil
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the refactoring tools over the Model Context Protocol on stdio",
		Action: func(c *cli.Context) error {
			svc, err := newService(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcp.NewServer(svc).Run(ctx)
		},
	}
}

func applyFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "apply",
		Usage: "Write the resulting edits to disk instead of printing them",
	}
}

// applyEdit materializes a workspace edit onto disk: changed files are
// rewritten in place, created files must not already exist.
func applyEdit(svc *service.Service, we *types.WorkspaceEdit) error {
	docs := make(map[string]*types.Document, len(we.Changes))
	for uri := range we.Changes {
		doc, err := svc.WS.ReadDocument(uri)
		if err != nil {
			return err
		}
		docs[uri] = doc
	}
	updated, err := edits.ApplyWorkspace(we, docs)
	if err != nil {
		return err
	}
	for uri, text := range updated {
		abs := filepath.Join(svc.WS.Root, filepath.FromSlash(uri))
		if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
			return err
		}
		fmt.Printf("updated %s\n", uri)
	}
	for uri, content := range we.CreateFiles {
		abs := filepath.Join(svc.WS.Root, filepath.FromSlash(uri))
		if _, err := os.Stat(abs); err == nil {
			return fmt.Errorf("refusing to overwrite existing file %s", uri)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			return err
		}
		fmt.Printf("created %s\n", uri)
	}
	return nil
}

func parsePosition(s string) (types.Position, error) {
	var line, character int
	if _, err := fmt.Sscanf(s, "%d:%d", &line, &character); err != nil {
		return types.Position{}, fmt.Errorf("position must be <line>:<character>, got %q", s)
	}
	return types.Position{Line: line, Character: character}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
