// Package service is the application layer shared by the CLI and the MCP
// server: it owns the workspace, the class-name index and the symbol cache,
// and exposes each refactoring operation as a single call.
package service

import (
	"context"
	stderrors "errors"
	"path"
	"time"

	"github.com/classkit/classkit/internal/config"
	"github.com/classkit/classkit/internal/debug"
	"github.com/classkit/classkit/internal/derive"
	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/iface"
	"github.com/classkit/classkit/internal/index"
	"github.com/classkit/classkit/internal/movebase"
	"github.com/classkit/classkit/internal/parser"
	"github.com/classkit/classkit/internal/symbols"
	"github.com/classkit/classkit/internal/types"
	"github.com/classkit/classkit/internal/workspace"
)

// Service wires configuration, workspace access and the refactoring
// engines together.
type Service struct {
	Cfg   *config.Config
	WS    *workspace.Workspace
	Index *index.Index
	Cache *symbols.Cache

	ifaceEngine  *iface.Engine
	moveEngine   *movebase.Engine
	deriveEngine *derive.Engine
}

// New builds a service from resolved configuration. The symbol provider is
// selected by cfg.Symbols.Provider; "none" leaves every operation on its
// textual fallback.
func New(cfg *config.Config) (*Service, error) {
	ws := workspace.New(cfg.Project.Root, cfg.Workspace.Include, cfg.Workspace.Exclude)
	ws.MaxParallel = cfg.Scan.MaxParallel

	var provider symbols.Provider
	if cfg.Symbols.Provider != "none" {
		p, err := parser.NewCSharpProvider()
		if err != nil {
			return nil, err
		}
		provider = p
	}
	cache := symbols.NewCache(provider)

	return &Service{
		Cfg:          cfg,
		WS:           ws,
		Index:        index.New(ws),
		Cache:        cache,
		ifaceEngine:  iface.NewEngine(cache),
		moveEngine:   movebase.NewEngine(cache),
		deriveEngine: derive.NewEngine(cache),
	}, nil
}

// scanContext applies the configured scan budget to ctx.
func (s *Service) scanContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Cfg.Scan.BudgetMs <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(s.Cfg.Scan.BudgetMs)*time.Millisecond)
}

// DeriveResult is the outcome of a derive operation.
type DeriveResult struct {
	Edit       *types.WorkspaceEdit
	Selections []types.Range
	// NewFilePath is set when the derived class went to its own file.
	NewFilePath string
}

// DeriveClass synthesizes a derived class from the base class declared in
// filePath. With separateFile the class lands in a sibling <derived>.cs
// recorded as a file creation in the workspace edit.
func (s *Service) DeriveClass(ctx context.Context, filePath, baseName, derivedName string, separateFile bool) (*DeriveResult, error) {
	doc, err := s.WS.ReadDocument(filePath)
	if err != nil {
		return nil, err
	}

	if !separateFile {
		we, selections, err := s.deriveEngine.InsertBelow(ctx, doc, baseName, derivedName)
		if err != nil {
			return nil, err
		}
		return &DeriveResult{Edit: we, Selections: selections}, nil
	}

	content, selections, err := s.deriveEngine.SeparateFile(ctx, doc, baseName, derivedName)
	if err != nil {
		return nil, err
	}
	newPath := path.Join(path.Dir(doc.URI), derivedName+".cs")
	we := types.NewWorkspaceEdit()
	we.AddCreateFile(newPath, content)
	return &DeriveResult{Edit: we, Selections: selections, NewFilePath: newPath}, nil
}

// ExtractResult is the outcome of an interface extraction.
type ExtractResult struct {
	Edit *types.WorkspaceEdit
	// AlreadyDeclared reports the success-no-op: the target interface
	// already declares the member.
	AlreadyDeclared bool
	// Created reports that the interface did not exist and was synthesized.
	Created bool
	Member  *iface.ExtractedMember
}

// ExtractInterface extracts the member at pos into interfaceName: into the
// existing declaration when the document has one, otherwise into a new
// interface synthesized in the member's namespace scope.
func (s *Service) ExtractInterface(ctx context.Context, filePath string, pos types.Position, interfaceName string) (*ExtractResult, error) {
	doc, err := s.WS.ReadDocument(filePath)
	if err != nil {
		return nil, err
	}

	member := s.ifaceEngine.Detect(ctx, doc, pos)
	if member == nil {
		return nil, errors.NewResolutionError("member", "at cursor")
	}

	for _, info := range s.ifaceEngine.Interfaces(ctx, doc) {
		if info.Name == interfaceName {
			we, noop, err := s.ifaceEngine.AddToExisting(ctx, doc, member, interfaceName)
			if err != nil {
				return nil, err
			}
			return &ExtractResult{Edit: we, AlreadyDeclared: noop, Member: member}, nil
		}
	}

	we, err := s.ifaceEngine.CreateNew(ctx, doc, member, interfaceName)
	if err != nil {
		return nil, err
	}
	return &ExtractResult{Edit: we, Created: true, Member: member}, nil
}

// MoveResult is the outcome of a move-to-base operation.
type MoveResult struct {
	Edit     *types.WorkspaceEdit
	Member   string
	Base     string
	MovedAll []string
}

// MoveToBase moves the member at pos, with its dependency closure, into the
// base class declared in the same document. A nil result with nil error
// means no action applies at the cursor.
func (s *Service) MoveToBase(ctx context.Context, filePath string, pos types.Position) (*MoveResult, error) {
	doc, err := s.WS.ReadDocument(filePath)
	if err != nil {
		return nil, err
	}

	mctx := s.moveEngine.Prepare(ctx, doc, pos)
	if mctx == nil {
		return nil, nil
	}

	we := s.moveEngine.BuildEdits(doc, mctx)
	moved := movebase.DependencyClosure(mctx.Member, mctx.AllMembers)
	names := make([]string, 0, len(moved))
	for _, m := range moved {
		names = append(names, m.Name)
	}
	return &MoveResult{
		Edit:     we,
		Member:   mctx.Member.Name,
		Base:     mctx.BaseClassName,
		MovedAll: names,
	}, nil
}

// ListMembers returns the movable members of the named class in filePath.
func (s *Service) ListMembers(ctx context.Context, filePath, className string) ([]*movebase.MovableClassMemberInfo, error) {
	doc, err := s.WS.ReadDocument(filePath)
	if err != nil {
		return nil, err
	}
	return s.moveEngine.Members(ctx, doc, className)
}

// FindClass looks up class declarations by name across the workspace,
// building the index on first use.
func (s *Service) FindClass(ctx context.Context, className string) ([]index.ClassLocation, error) {
	sctx, cancel := s.scanContext(ctx)
	defer cancel()
	if err := s.Index.Build(sctx); err != nil {
		// A budget overrun degrades to whatever was indexed so far.
		debug.Printf("find: index build stopped early: %v", err)
	}
	return s.Index.Lookup(className), nil
}

// PartialClasses finds every file declaring `partial class className`,
// honoring the configured scan budget. A budget overrun degrades to the
// hits gathered so far, even when that is none.
func (s *Service) PartialClasses(ctx context.Context, className string) ([]workspace.PartialClassHit, error) {
	sctx, cancel := s.scanContext(ctx)
	defer cancel()
	hits, err := s.WS.FindPartialClasses(sctx, className)
	if stderrors.Is(err, context.DeadlineExceeded) {
		debug.Printf("partial scan stopped early: %v", err)
		return hits, nil
	}
	return hits, err
}
