// SPDX-License-Identifier: MIT

package program

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/cvgauss/gate"
	"github.com/katalvlaran/cvgauss/ops"
)

const tracerName = "github.com/katalvlaran/cvgauss/program"

var (
	decompositionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvgauss_decompositions_total",
			Help: "Gates decomposed by Compile, by gate kind and outcome",
		},
		[]string{"kind", "status"},
	)
	decompositionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cvgauss_decomposition_duration_seconds",
			Help:    "Time spent decomposing a single gate",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		},
		[]string{"kind"},
	)
	opsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cvgauss_ops_emitted_total",
			Help: "Elementary operations emitted by Compile, by operation kind",
		},
		[]string{"op"},
	)
)

// Compile decomposes every command, at most Concurrency at a time, and
// returns the steps in program order with operations on register modes.
// The first failing command cancels the rest and its error is returned.
func (p *Program) Compile(ctx context.Context, opts ...Option) ([]Step, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Compile")
	defer span.End()
	span.SetAttributes(
		attribute.Int("cvgauss.modes", p.n),
		attribute.Int("cvgauss.commands", len(p.cmds)),
	)

	start := time.Now()
	steps := make([]Step, len(p.cmds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, c := range p.cmds {
		i, c := i, c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			step, err := compileCommand(c, cfg)
			if err != nil {
				return fmt.Errorf("Compile: command %d: %w", i, err)
			}
			steps[i] = step

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compile failed")

		return nil, err
	}

	total := 0
	for _, s := range steps {
		total += len(s.Ops)
	}
	span.SetAttributes(attribute.Int("cvgauss.ops", total))
	cfg.Logger.Debug().
		Int("modes", p.n).
		Int("commands", len(steps)).
		Int("ops", total).
		Dur("elapsed", time.Since(start)).
		Msg("program: compiled")

	return steps, nil
}

func compileCommand(c Command, cfg Options) (Step, error) {
	kind := c.Gate.Kind().String()
	start := time.Now()
	seq, err := c.Gate.Decompose(gate.WithTolerance(cfg.Tolerance), gate.WithLogger(cfg.Logger))
	decompositionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		decompositionsTotal.WithLabelValues(kind, "error").Inc()

		return Step{}, fmt.Errorf("%v on %v: %w", c.Gate, c.Modes, err)
	}
	decompositionsTotal.WithLabelValues(kind, "success").Inc()

	out := make([]ops.Op, len(seq))
	for k, o := range seq {
		if out[k], err = o.Remap(c.Modes); err != nil {
			return Step{}, fmt.Errorf("%v on %v: %w", c.Gate, c.Modes, err)
		}
		opsEmitted.WithLabelValues(o.Kind.String()).Inc()
	}

	return Step{
		Command:     Command{Gate: c.Gate, Modes: append([]int(nil), c.Modes...)},
		Preparation: c.Gate.Kind().IsPreparation(),
		Ops:         out,
	}, nil
}

// Flatten concatenates the operations of steps. Each preparation step is
// preceded by Thermal(m, 0) on each of its modes, which resets the mode to
// vacuum; these resets are emitted even though they are trivial as
// transforms.
func Flatten(steps []Step) []ops.Op {
	var out []ops.Op
	for _, s := range steps {
		if s.Preparation {
			for _, m := range s.Command.Modes {
				out = append(out, ops.NewThermal(m, 0))
			}
		}
		out = append(out, s.Ops...)
	}
	if out == nil {
		out = []ops.Op{}
	}

	return out
}
