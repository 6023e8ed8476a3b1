// Package pipeline wires Marin's compilation stages — staging, dependency
// analysis, checking, lowering, and (optionally) execution — into one
// ordered sequence a caller runs front to back.
//
// Grounded on funvibe/funxy's internal/pipeline: a Pipeline wrapping a
// slice of Processors, each taking and returning a context, Run iterating
// them in order and continuing past a stage that reported errors so later
// stages can still contribute diagnostics (e.g. a language-server caller
// wants both parse and semantic errors in one pass). funxy's own
// Processor/PipelineContext types were never completed in that repo; this
// package defines them concretely around Marin's actual stages.
package pipeline

import (
	"github.com/catapillie/marin/internal/bytecode"
	"github.com/catapillie/marin/internal/check"
	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/depgraph"
	"github.com/catapillie/marin/internal/diagnostics"
	"github.com/catapillie/marin/internal/entity"
	"github.com/catapillie/marin/internal/ir"
	"github.com/catapillie/marin/internal/lower"
	"github.com/catapillie/marin/internal/source"
	"github.com/catapillie/marin/internal/vm"
)

// PipelineContext threads state between stages. Each stage reads what
// earlier stages left and appends its own diagnostics to Batch; a stage
// that cannot proceed (e.g. lowering without a checked module) leaves its
// own outputs zero rather than panicking, so later stages degrade
// gracefully instead of the whole run aborting.
type PipelineContext struct {
	Opts      config.Options
	UserPaths []string

	// Execute selects whether the vm stage actually runs the lowered
	// module, or the pipeline stops once bytecode is produced (a caller
	// checking or lowering only, e.g. an editor's diagnostics pass, sets
	// this false).
	Execute bool

	Batch diagnostics.Batch

	Set   *source.Set
	Graph *depgraph.Graph
	Order []int

	Checker  *check.Checker
	Modules  map[int]*ir.Module
	Entities *entity.Table

	Module *bytecode.Module

	VM       *vm.VM
	Result   vm.Value
	RanVM    bool
	FatalErr error
}

// Processor is one stage of the pipeline: it consumes and returns a
// context, appending diagnostics or outputs as it goes.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

// New returns a Pipeline running processors in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Continue on errors to collect diagnostics from all stages
		// (e.g. LSP needs both parse and semantic errors).
	}
	return ctx
}

// Default returns the stage sequence a normal compile-and-run invocation
// uses: stage, analyze dependencies, check, lower, execute.
func Default() *Pipeline {
	return New(
		StageSource{},
		AnalyzeDeps{},
		CheckModules{},
		LowerModule{},
		RunVM{},
	)
}

// StageSource loads the standard library (if configured) and every
// user-listed file into a source.Set.
type StageSource struct{}

func (StageSource) Process(ctx *PipelineContext) *PipelineContext {
	set, batch, err := source.Stage(ctx.Opts, ctx.UserPaths)
	if batch != nil {
		ctx.Batch.Merge(batch)
	}
	if err != nil {
		ctx.FatalErr = err
		return ctx
	}
	ctx.Set = set
	return ctx
}

// AnalyzeDeps resolves imports into a dependency graph and an evaluation
// order, reporting cycles.
type AnalyzeDeps struct{}

func (AnalyzeDeps) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Set == nil {
		return ctx
	}
	graph, order, batch := depgraph.Analyze(ctx.Set, ctx.Opts)
	ctx.Batch.Merge(batch)
	ctx.Graph = graph
	ctx.Order = order
	return ctx
}

// CheckModules runs the type checker over every staged file in
// dependency-then-dependent order, producing a typed module per file.
type CheckModules struct{}

func (CheckModules) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Set == nil || ctx.Order == nil {
		return ctx
	}
	c := check.New(ctx.Set, ctx.Opts)
	modules := c.CheckAll(ctx.Order)
	ctx.Checker = c
	ctx.Modules = modules
	ctx.Entities = c.Entities
	ctx.Batch.Merge(&c.Batch)
	return ctx
}

// LowerModule compiles every checked module into one bytecode.Module. It
// is skipped once an earlier stage has reported an error: lowering a
// program the checker rejected would walk ir it never finished validating
// (§4.3's exhaustiveness and class-resolution guarantees only hold for a
// clean check).
type LowerModule struct{}

func (LowerModule) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Modules == nil || ctx.Batch.HasErrors() {
		return ctx
	}
	module, err := lower.Lower(ctx.Order, ctx.Modules, ctx.Entities)
	if err != nil {
		ctx.FatalErr = err
		return ctx
	}
	ctx.Module = module
	return ctx
}

// RunVM executes the lowered module, when ctx.Execute requested it and
// nothing upstream failed.
type RunVM struct{}

func (RunVM) Process(ctx *PipelineContext) *PipelineContext {
	if !ctx.Execute || ctx.Module == nil || ctx.Batch.HasErrors() {
		return ctx
	}
	machine := vm.New(ctx.Module)
	result, err := machine.Run()
	ctx.VM = machine
	if err != nil {
		ctx.FatalErr = err
		return ctx
	}
	ctx.Result = result
	ctx.RanVM = true
	return ctx
}
