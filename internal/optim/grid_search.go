package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/experiment"
	"go.uber.org/zap"
)

var ErrNoCandidate = errors.New("no parameter combination ran")

// Axis is one tunable parameter and the values tried for it.
type Axis struct {
	Param  string
	Values []float64
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// Objective scores a finished run. Lower is better.
type Objective func(*experiment.Result) float64

// Target scores a run by how far the named quantity lands from want.
func Target(name string, want float64) (Objective, error) {
	if name == "" {
		return nil, fmt.Errorf("objective needs a quantity name")
	}
	return func(r *experiment.Result) float64 {
		v, ok := Quantity(r, name)
		if !ok {
			return math.Inf(1)
		}
		return math.Abs(v - want)
	}, nil
}

var quantities = map[string]func(*experiment.Result) float64{
	"time":     func(r *experiment.Result) float64 { return r.Report.Time },
	"speed":    func(r *experiment.Result) float64 { return r.Report.Speed },
	"distance": func(r *experiment.Result) float64 { return r.Report.Pos.X - r.Report.Initial.X },
	"steps":    func(r *experiment.Result) float64 { return float64(r.Report.Steps) },
}

// Quantity looks name up in the report first and then in the metrics.
func Quantity(r *experiment.Result, name string) (float64, bool) {
	if f, ok := quantities[name]; ok && r.Report != nil {
		return f(r), true
	}
	v, ok := r.Metrics[name]
	return v, ok
}

type Best struct {
	Params map[string]float64 `json:"params"`
	Score  float64            `json:"score"`
	Result *experiment.Result `json:"result"`
	Tried  int                `json:"tried"`
}

type GridSearch struct {
	axes []Axis
	log  *zap.Logger
}

func NewGridSearch(log *zap.Logger, axes ...Axis) *GridSearch {
	if log == nil {
		log = zap.NewNop()
	}
	return &GridSearch{axes: axes, log: log}
}

// Search runs base once for every combination of axis values and keeps
// the lowest scoring run. Combinations the scenario rejects are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Scenario, score Objective) (*Best, error) {
	best := &Best{Score: math.Inf(1)}
	err := g.searchRecursive(ctx, 0, map[string]float64{}, base, score, best)
	if err != nil {
		return nil, err
	}
	if best.Params == nil {
		return nil, ErrNoCandidate
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Scenario,
	score Objective,
	best *Best,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		s := base.Clone()
		for k, v := range current {
			if err := s.SetParam(k, v); err != nil {
				g.log.Debug("skip candidate", zap.Any("params", current), zap.Error(err))
				return nil
			}
		}
		best.Tried++
		res, err := experiment.Run(ctx, s, g.log)
		if err != nil {
			g.log.Debug("candidate failed", zap.Any("params", current), zap.Error(err))
			return nil
		}

		if v := score(res); v < best.Score {
			best.Score = v
			best.Result = res
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Param] = val

		if err := g.searchRecursive(ctx, depth+1, next, base, score, best); err != nil {
			return err
		}
	}
	return nil
}
