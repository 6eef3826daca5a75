package compiler

import (
	"tensorc/internal/analyzer"
	"tensorc/internal/manifest"
)

// LoadManifestStage parses the project manifest and resolves its
// parameter bindings (spec.md §4.2).
type LoadManifestStage struct{}

func (LoadManifestStage) Name() string { return "load manifest" }

func (LoadManifestStage) Run(ctx *CompileContext) error {
	m, err := manifest.Load(ctx.ManifestPath)
	if err != nil {
		return err
	}
	if err := m.ValidateAddresses(); err != nil {
		return err
	}
	params, err := m.ResolveParameters()
	if err != nil {
		return err
	}
	ctx.Manifest = m
	ctx.Params = params
	return nil
}

// AnalyzeStage builds the inter-program execution plan (spec.md §4.7).
type AnalyzeStage struct{}

func (AnalyzeStage) Name() string { return "analyze project" }

func (AnalyzeStage) Run(ctx *CompileContext) error {
	plan, err := analyzer.Analyze(ctx.Manifest)
	if err != nil {
		return err
	}
	ctx.Plan = plan
	for _, p := range plan.Programs {
		ctx.Programs = append(ctx.Programs, &ProgramUnit{ID: p.ID})
	}
	return nil
}
