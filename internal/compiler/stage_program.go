package compiler

import (
	"path/filepath"

	"tensorc/internal/analyzer"
	"tensorc/internal/cache"
	"tensorc/internal/codegen"
	cerrors "tensorc/internal/errors"
	"tensorc/internal/graphload"
	"tensorc/internal/inliner"
	"tensorc/internal/ir"
	"tensorc/internal/linearizer"
	"tensorc/internal/ops"
	"tensorc/internal/resolver"
	"tensorc/internal/types"
)

// emitterConfigVersion is mixed into every cache key so a change to the
// code emitter's output shape invalidates old cache entries instead of
// silently reusing stale bytes for a matching IR hash.
const emitterConfigVersion = "codegen-v1"

// CompileProgramsStage runs graph-load, inline, resolve, linearize, and
// code emission for every program in the plan's execution order. Order
// matters: a program whose input is bound to another program's output
// needs that producer already resolved so it can borrow its shape and
// datatype (spec.md §4.5 step 2).
type CompileProgramsStage struct {
	// LibDir is the fallback sub-graph search directory passed to the
	// inliner (spec.md §4.3). Defaults to "lib" next to the manifest.
	LibDir string
	// Cache, if set, short-circuits code emission for a program whose
	// resolved linear IR hashes to an entry already stored (spec.md §9,
	// the cache's determinism-for-free argument).
	Cache *cache.Cache
}

func (CompileProgramsStage) Name() string { return "compile programs" }

func (s CompileProgramsStage) Run(ctx *CompileContext) error {
	libDir := s.LibDir
	if libDir == "" {
		libDir = filepath.Join(filepath.Dir(ctx.ManifestPath), "lib")
	}

	manifestDir := filepath.Dir(ctx.ManifestPath)

	for _, plan := range ctx.Plan.Programs {
		unit := ctx.programByID(plan.ID)
		if unit == nil {
			return cerrors.New(cerrors.UnknownReference, plan.ID, "program plan has no matching unit")
		}

		graphPath := plan.Path
		if !filepath.IsAbs(graphPath) {
			graphPath = filepath.Join(manifestDir, graphPath)
		}
		g, err := graphload.Parse(graphPath)
		if err != nil {
			return err
		}

		raw, err := inliner.Inline(g, inliner.Options{LibDir: libDir})
		if err != nil {
			return err
		}
		unit.Raw = raw

		inputSpecs, err := s.inputSpecs(ctx, plan)
		if err != nil {
			return err
		}

		resolved, err := resolver.Resolve(raw, resolver.Options{
			InputSpecs:  inputSpecs,
			Params:      ctx.Params.Concrete,
			TypeMapping: ctx.Manifest.TypeMapping,
		})
		if err != nil {
			return err
		}
		unit.Resolved = resolved

		linear, err := linearizer.Linearize(resolved)
		if err != nil {
			return err
		}
		unit.Linear = linear

		header, source, err := s.emit(plan.ID, linear)
		if err != nil {
			return err
		}
		unit.Header = header
		unit.Source = source

		ctx.GeneratedFiles[codegen.SanitizeID(plan.ID)+".h"] = header
		ctx.GeneratedFiles[codegen.SanitizeID(plan.ID)+".c"] = source
	}

	return nil
}

// inputSpecs builds the resolver's InputSpecs for plan's program: every
// declared Input name must resolve to a concrete Port, sourced from
// either a manifest resource's shape or an already-resolved upstream
// program's matching Output port.
func (s CompileProgramsStage) inputSpecs(ctx *CompileContext, plan analyzer.ProgramPlan) (map[string]types.Port, error) {
	specs := map[string]types.Port{}
	for port, b := range plan.InputBindings {
		if b.IsResource {
			def, ok := ctx.Plan.Resources[b.ResourceID]
			if !ok {
				return nil, cerrors.New(cerrors.UnknownReference, b.ResourceID, "program %q input %q references unknown resource", plan.ID, port)
			}
			dt := ctx.Manifest.TypeMapping[b.ResourceID]
			if dt == "" {
				dt = types.F32
			}
			specs[port] = types.Port{Name: port, Shape: def.Shape, Datatype: dt}
			continue
		}

		producer := ctx.programByID(b.SourceProgram)
		if producer == nil || producer.Resolved == nil {
			return nil, cerrors.New(cerrors.UnknownReference, b.SourceProgram, "program %q input %q references unresolved producer program", plan.ID, port)
		}
		shape, dt, ok := findOutputPort(producer.Resolved, b.SourcePort)
		if !ok {
			return nil, cerrors.New(cerrors.UnknownReference, b.SourcePort, "producer program %q has no output port %q", b.SourceProgram, b.SourcePort)
		}
		specs[port] = types.Port{Name: port, Shape: shape, Datatype: dt}
	}

	return specs, nil
}

// emit renders a program's header/source, consulting s.Cache first when
// present and storing a fresh emission back into it on a miss.
func (s CompileProgramsStage) emit(progID string, linear *ir.LinearGraph) (header, source string, err error) {
	if s.Cache == nil {
		return codegen.EmitProgram(progID, linear)
	}

	key := cache.Key(progID, linear.Canonical(), emitterConfigVersion)
	if entry, ok, lookupErr := s.Cache.Lookup(key); lookupErr == nil && ok {
		return entry.Header, entry.Source, nil
	}

	header, source, err = codegen.EmitProgram(progID, linear)
	if err != nil {
		return "", "", err
	}
	_ = s.Cache.Store(key, cache.Entry{Header: header, Source: source})
	return header, source, nil
}

// findOutputPort locates the resolved Output node bound to the given
// port name within a program's resolved graph.
func findOutputPort(resolved *ir.ResolvedGraph, port string) (types.Shape, types.Datatype, bool) {
	for _, n := range resolved.Nodes {
		if n.Op.Kind == ops.Output && n.Op.Name == port {
			return n.Shape, n.Datatype, true
		}
	}
	return nil, "", false
}
