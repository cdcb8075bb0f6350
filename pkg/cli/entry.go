// Package cli drives scope files through the inference engine and renders
// per-query results for a terminal.
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/weylang/weyl/internal/config"
	"github.com/weylang/weyl/internal/engine"
	"github.com/weylang/weyl/internal/scopefile"
	"github.com/weylang/weyl/internal/typesystem"
)

// Options controls output and tracing.
type Options struct {
	Trace bool
	Color string // auto | always | never
	Out   io.Writer
}

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiDim   = "\033[2m"
)

type renderer struct {
	out   io.Writer
	color bool
}

func newRenderer(opts Options) *renderer {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	color := false
	switch opts.Color {
	case "always":
		color = true
	case "never":
		color = false
	default:
		if f, ok := out.(*os.File); ok {
			color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	return &renderer{out: out, color: color}
}

func (r *renderer) paint(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}

func (r *renderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// Solve loads a scope file, answers every query, and returns a process exit
// code (non-zero when any query failed).
func Solve(path string, opts Options) int {
	render := newRenderer(opts)

	scope, queries, err := scopefile.Load(path)
	if err != nil {
		render.printf("%s %v\n", render.paint(ansiRed, "error:"), err)
		return 1
	}
	if len(queries) == 0 {
		render.printf("%s: no queries\n", path)
		return 0
	}

	log := zap.NewNop()
	if opts.Trace {
		dev, err := zap.NewDevelopment()
		if err == nil {
			log = dev
			defer func() { _ = log.Sync() }()
		}
	}

	failures := 0
	for _, q := range queries {
		eng := engine.New(scope, engine.WithLogger(log))
		req := engine.Request{
			Witnesses: map[string][]typesystem.Type{config.QueryWitnessName: q.Require},
			Assoc:     q.Free,
		}
		res := eng.Infer(req)
		if !renderResult(render, q, res) {
			failures++
		}
	}
	if failures > 0 {
		render.printf("%d of %d queries failed\n", failures, len(queries))
		return 1
	}
	return 0
}

func renderResult(render *renderer, q scopefile.Query, res *engine.Result) bool {
	if res.Success {
		witness := res.Resolved[config.QueryWitnessName]
		render.printf("%s %s: %s", render.paint(ansiGreen, "ok"), q.Name, witness)
		if len(q.Free) > 0 {
			parts := make([]string, 0, len(q.Free))
			for _, name := range q.Free {
				if t, ok := res.ResolvedType(name); ok {
					parts = append(parts, fmt.Sprintf("%s = %s", name, t))
				}
			}
			sort.Strings(parts)
			for _, p := range parts {
				render.printf("  %s", render.paint(ansiDim, p))
			}
		}
		render.printf("\n")
		return true
	}

	render.printf("%s %s\n", render.paint(ansiRed, "fail"), q.Name)
	for _, d := range res.Diagnostics {
		render.printf("  %s\n", d.Error())
	}
	return false
}

// Check loads a scope file without solving, validating declarations only.
func Check(path string, opts Options) int {
	render := newRenderer(opts)
	scope, queries, err := scopefile.Load(path)
	if err != nil {
		render.printf("%s %v\n", render.paint(ansiRed, "error:"), err)
		return 1
	}
	entries, rigid := scope.ScopeInstances()
	render.printf("%s: %d candidates, %d rigid parameters, %d queries\n",
		path, len(entries), len(rigid), len(queries))
	return 0
}
