package pipeline

import (
	"github.com/solvix/solvix/internal/ast"
	"github.com/solvix/solvix/internal/diagnostics"
	"github.com/solvix/solvix/internal/token"
)

// PipelineContext carries one input line through the processing stages.
// A line is either a bare expression (Expr set) or an equation (Equation
// set); never both.
type PipelineContext struct {
	SourceCode  string
	TokenStream []token.Token
	Expr        ast.Expr
	Equation    *ast.Equation
	Errors      []*diagnostics.DiagnosticError
}

func NewPipelineContext(sourceCode string) *PipelineContext {
	return &PipelineContext{SourceCode: sourceCode}
}

// Processor is a single pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Later stages still run after errors so the
// context collects diagnostics from every stage.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
