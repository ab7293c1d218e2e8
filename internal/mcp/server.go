// Package mcp exposes the refactoring operations as Model Context Protocol
// tools over stdio, so editors and agents drive them without a CLI round
// trip per keystroke.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/classkit/classkit/internal/debug"
	"github.com/classkit/classkit/internal/service"
	"github.com/classkit/classkit/internal/types"
	"github.com/classkit/classkit/internal/version"
)

// Server hosts the tool handlers over a service instance.
type Server struct {
	svc    *service.Service
	server *mcp.Server
}

// NewServer builds the MCP server and registers every tool. Debug output is
// rerouted away from stdout, which carries the protocol stream.
func NewServer(svc *service.Service) *Server {
	debug.SetMCPMode(true)

	s := &Server{
		svc: svc,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "classkit",
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves the protocol on stdio until ctx is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "derive_class",
		Description: "Generate a derived class from a base class: forwarding constructors, override stubs for abstract members, and selection anchors on generic parameters.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Source file containing the base class, relative to the project root",
				},
				"base": {
					Type:        "string",
					Description: "Base class name",
				},
				"name": {
					Type:        "string",
					Description: "Name for the new derived class",
				},
				"separate_file": {
					Type:        "boolean",
					Description: "Write the derived class to its own file instead of below the base class",
				},
			},
			Required: []string{"file", "base", "name"},
		},
	}, s.handleDeriveClass)

	s.server.AddTool(&mcp.Tool{
		Name:        "extract_interface",
		Description: "Extract the member at a position into an interface. Adds to an existing interface in the same file, or creates one in the enclosing namespace. Re-extracting an already-declared member is a no-op.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Source file, relative to the project root",
				},
				"line": {
					Type:        "integer",
					Description: "Zero-based line of the member declaration",
				},
				"character": {
					Type:        "integer",
					Description: "Zero-based character within the line",
				},
				"interface": {
					Type:        "string",
					Description: "Target interface name",
				},
			},
			Required: []string{"file", "line", "character", "interface"},
		},
	}, s.handleExtractInterface)

	s.server.AddTool(&mcp.Tool{
		Name:        "move_to_base",
		Description: "Move the member at a position, together with the members it references, into the base class declared in the same file. Private members are promoted to protected.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Source file, relative to the project root",
				},
				"line": {
					Type:        "integer",
					Description: "Zero-based line inside the member to move",
				},
				"character": {
					Type:        "integer",
					Description: "Zero-based character within the line",
				},
			},
			Required: []string{"file", "line", "character"},
		},
	}, s.handleMoveToBase)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_members",
		Description: "List the fields, properties and methods of a class with their source spans.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Source file, relative to the project root",
				},
				"class": {
					Type:        "string",
					Description: "Class name",
				},
			},
			Required: []string{"file", "class"},
		},
	}, s.handleListMembers)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_class",
		Description: "Find every file declaring a class, including partial declarations, across the workspace.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"class": {
					Type:        "string",
					Description: "Class name to look up",
				},
			},
			Required: []string{"class"},
		},
	}, s.handleFindClass)
}

type deriveParams struct {
	File         string `json:"file"`
	Base         string `json:"base"`
	Name         string `json:"name"`
	SeparateFile bool   `json:"separate_file"`
}

func (s *Server) handleDeriveClass(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p deriveParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	res, err := s.svc.DeriveClass(ctx, p.File, p.Base, p.Name, p.SeparateFile)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{
		"edit":       res.Edit,
		"selections": res.Selections,
		"newFile":    res.NewFilePath,
	})
}

type extractParams struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
	Interface string `json:"interface"`
}

func (s *Server) handleExtractInterface(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p extractParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	pos := types.Position{Line: p.Line, Character: p.Character}
	res, err := s.svc.ExtractInterface(ctx, p.File, pos, p.Interface)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{
		"edit":            res.Edit,
		"alreadyDeclared": res.AlreadyDeclared,
		"created":         res.Created,
		"member":          res.Member.Name,
	})
}

type moveParams struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
}

func (s *Server) handleMoveToBase(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p moveParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	pos := types.Position{Line: p.Line, Character: p.Character}
	res, err := s.svc.MoveToBase(ctx, p.File, pos)
	if err != nil {
		return errorResult(err), nil
	}
	if res == nil {
		return jsonResult(map[string]any{"applicable": false})
	}
	return jsonResult(map[string]any{
		"applicable": true,
		"edit":       res.Edit,
		"member":     res.Member,
		"base":       res.Base,
		"moved":      res.MovedAll,
	})
}

type listParams struct {
	File  string `json:"file"`
	Class string `json:"class"`
}

func (s *Server) handleListMembers(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p listParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	members, err := s.svc.ListMembers(ctx, p.File, p.Class)
	if err != nil {
		return errorResult(err), nil
	}
	type memberOut struct {
		Kind  string `json:"kind"`
		Name  string `json:"name"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	}
	out := make([]memberOut, 0, len(members))
	for _, m := range members {
		out = append(out, memberOut{
			Kind:  string(m.Kind),
			Name:  m.Name,
			Start: m.Start,
			End:   m.End,
		})
	}
	return jsonResult(map[string]any{"members": out})
}

type findParams struct {
	Class string `json:"class"`
}

func (s *Server) handleFindClass(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p findParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	locs, err := s.svc.FindClass(ctx, p.Class)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"locations": locs})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}
