package compiler

import (
	"log"
)

// Stage is one step of the compile pipeline. Run mutates ctx in place and
// returns a structured error on the first failure, which aborts the
// pipeline (spec.md §9).
type Stage interface {
	Name() string
	Run(ctx *CompileContext) error
}

// Pipeline runs a fixed sequence of Stages over one CompileContext.
type Pipeline struct {
	stages []Stage
	logger *log.Logger
}

// NewPipeline builds an empty pipeline. Progress lines go to logger if
// non-nil, otherwise to the package-level default (stdout, no timestamp
// prefix, matching the teacher's plain console style).
func NewPipeline(logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = defaultLogger
	}
	return &Pipeline{logger: logger}
}

// AddStage appends s to the pipeline's sequence.
func (p *Pipeline) AddStage(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Execute runs every stage in order against ctx, logging "[<run-id>]
// <name>" before each and stopping at the first error.
func (p *Pipeline) Execute(ctx *CompileContext) error {
	for _, s := range p.stages {
		p.logger.Printf("%s[%s]%s %s", stageColor, ctx.RunID[:8], stageReset, s.Name())
		if err := s.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
