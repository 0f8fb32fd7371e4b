package parser

import (
	"github.com/solvix/solvix/internal/diagnostics"
	"github.com/solvix/solvix/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		// Safeguard; the lexer stage always runs first.
		ctx.Errors = append(ctx.Errors, diagnostics.New(0, 0, "parser: token stream is nil"))
		return ctx
	}

	p := New(ctx.TokenStream)
	expr, eq := p.ParseLine()
	ctx.Expr = expr
	ctx.Equation = eq
	ctx.Errors = append(ctx.Errors, p.Errors()...)
	return ctx
}
