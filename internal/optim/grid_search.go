// Package optim tunes controller parameters by exhaustive search over
// simulated runs.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/botcore/internal/sim"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Points enumerates the grid with the first parameter varying slowest.
func (g *GridSearch) Points() []map[string]float64 {
	points := []map[string]float64{{}}
	for depth, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(points)*len(g.ranges[depth]))
		for _, p := range points {
			for _, v := range g.ranges[depth] {
				q := make(map[string]float64, len(p)+1)
				for k, pv := range p {
					q[k] = pv
				}
				q[name] = v
				next = append(next, q)
			}
		}
		points = next
	}
	return points
}

// Best is the winning grid point.
type Best struct {
	Params map[string]float64
	Value  float64
	Result *sim.Result
	// Evaluated counts the points whose run produced the metric.
	Evaluated int
}

// Score turns a finished run into the value to minimise. ok is false when
// the run should not be considered at all.
type Score func(r *sim.Result) (v float64, ok bool)

// ByMetric scores by a recorded metric. Runs that never settled are
// skipped when requireSettled is set.
func ByMetric(name string, requireSettled bool) Score {
	return func(r *sim.Result) (float64, bool) {
		if requireSettled && !r.Settled {
			return 0, false
		}
		v, ok := r.Metrics[name]
		return v, ok && !math.IsNaN(v)
	}
}

// Search runs a bench for every grid point, at most limit at a time, and
// returns the point with the lowest score. Ties go to the earlier point.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Bench, error),
	cfg sim.Config,
	score Score,
	limit int,
) (Best, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Best{}, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	points := g.Points()
	results, err := sim.Sweep(ctx, len(points), limit, cfg, func(i int) (*sim.Bench, error) {
		return build(points[i])
	})
	if err != nil {
		return Best{}, err
	}

	best := Best{Value: math.Inf(1)}
	for i, r := range results {
		if r == nil || len(r.Errors) > 0 {
			continue
		}
		v, ok := score(r)
		if !ok {
			continue
		}
		best.Evaluated++
		if v < best.Value {
			best.Value = v
			best.Params = points[i]
			best.Result = r
		}
	}
	if best.Params == nil {
		return best, fmt.Errorf("no grid point produced a score")
	}
	return best, nil
}
