package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/incline/internal/config"
)

func TestLinspace(t *testing.T) {
	got := Linspace(1, 5, 5)
	want := []float64{1, 2, 3, 4, 5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("Linspace = %v, want %v", got, want)
		}
	}
	if got := Linspace(2, 9, 1); len(got) != 1 || got[0] != 2 {
		t.Errorf("single value = %v, want [2]", got)
	}
}

func TestSearchFindsLaunchSpeed(t *testing.T) {
	base, err := config.GetPreset("launch")
	if err != nil {
		t.Fatal(err)
	}
	// the launch preset at 3 m/s lands after roughly 1.641 s
	score, err := Target("time", 1.641)
	if err != nil {
		t.Fatal(err)
	}

	best, err := NewGridSearch(nil, Axis{Param: "launch_speed", Values: Linspace(1, 5, 9)}).
		Search(context.Background(), base, score)
	if err != nil {
		t.Fatal(err)
	}
	if best.Tried != 9 {
		t.Errorf("tried %d, want 9", best.Tried)
	}
	if best.Params["launch_speed"] != 3 {
		t.Errorf("best launch speed = %v, want 3", best.Params["launch_speed"])
	}
	if best.Score > 0.01 {
		t.Errorf("score = %v, want under 0.01", best.Score)
	}
}

func TestSearchSkipsRejectedValues(t *testing.T) {
	base, _ := config.GetPreset("slide")
	score, _ := Target("speed", 0)

	// negative masses never validate
	_, err := NewGridSearch(nil, Axis{Param: "mass", Values: []float64{-2, -1}}).
		Search(context.Background(), base, score)
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("error = %v, want ErrNoCandidate", err)
	}
}

func TestSearchCanceled(t *testing.T) {
	base, _ := config.GetPreset("slide")
	score, _ := Target("time", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGridSearch(nil, Axis{Param: "angle_deg", Values: []float64{10, 20}}).Search(ctx, base, score)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestQuantityFallsBackToMetrics(t *testing.T) {
	base, _ := config.GetPreset("slide")
	score, _ := Target("energy_drift", 0)
	best, err := NewGridSearch(nil, Axis{Param: "angle_deg", Values: []float64{20, 30}}).
		Search(context.Background(), base, score)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Quantity(best.Result, "energy_drift"); !ok {
		t.Error("energy_drift not found in metrics")
	}
	if _, ok := Quantity(best.Result, "no_such_metric"); ok {
		t.Error("unknown quantity reported as found")
	}
}

func TestTargetRejectsEmptyName(t *testing.T) {
	if _, err := Target("", 1); err == nil {
		t.Error("expected error for empty name")
	}
}
