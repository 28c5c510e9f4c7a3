package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func testRun(t *testing.T) (*config.Scenario, *sim.Report, []sim.Sample) {
	t.Helper()
	s, err := config.GetPreset("slide")
	if err != nil {
		t.Fatal(err)
	}
	samples := []sim.Sample{
		{Step: 0, Time: 0, Pos: r3.Vec{X: 1.7, Y: 0.76, Z: 0.08}, Vel: r3.Vec{X: -0.0017, Y: -0.0007}, Distance: 1.86, Speed: 0.0019, Accel: 3.75},
		{Step: 1, Time: 0.0005, Pos: r3.Vec{X: 1.6999, Y: 0.7599, Z: 0.08}, Vel: r3.Vec{X: -0.0035, Y: -0.0014}, Distance: 1.8599, Speed: 0.0038, Accel: 3.75},
	}
	report := &sim.Report{Time: 0.001, Steps: 2, Pos: samples[1].Pos, Vel: samples[1].Vel, Speed: 0.0038, Accel: 3.75}
	return s, report, samples
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "runs"))
	s, report, samples := testRun(t)

	runID, err := st.Save(s, report, map[string]float64{"energy_drift": 1e-4}, samples)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "slide_") {
		t.Errorf("run id %q should start with the scenario name", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario.AngleDeg != 22.5 {
		t.Errorf("expected angle 22.5, got %v", meta.Scenario.AngleDeg)
	}
	if meta.Report.Steps != 2 || meta.Samples != 2 {
		t.Errorf("expected 2 steps and samples, got %d and %d", meta.Report.Steps, meta.Samples)
	}
	if meta.Metrics["energy_drift"] != 1e-4 {
		t.Errorf("expected drift 1e-4, got %v", meta.Metrics["energy_drift"])
	}

	got, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range got {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %+v, want %+v", i, got[i], samples[i])
		}
	}
}

func TestRunIDsDoNotCollide(t *testing.T) {
	st := New(t.TempDir())
	s, report, samples := testRun(t)

	a, err := st.Save(s, report, nil, samples)
	if err != nil {
		t.Fatal(err)
	}
	b, err := st.Save(s, report, nil, samples)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("two saves share run id %q", a)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nothing"))
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestListSkipsForeignDirs(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}
	runs, err := New(dir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("ghost"); !errors.Is(err, ErrNoRun) {
		t.Errorf("expected ErrNoRun, got %v", err)
	}
	if _, err := st.LoadSamples("ghost"); !errors.Is(err, ErrNoRun) {
		t.Errorf("expected ErrNoRun, got %v", err)
	}
}

func TestExports(t *testing.T) {
	st := New(t.TempDir())
	s, report, samples := testRun(t)
	runID, err := st.Save(s, report, nil, samples)
	if err != nil {
		t.Fatal(err)
	}

	var csvOut bytes.Buffer
	if err := st.ExportCSV(&csvOut, runID); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if lines[0] != strings.Join(Header, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}

	var jsonOut bytes.Buffer
	if err := st.ExportJSON(&jsonOut, runID); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(jsonOut.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.ID != runID || len(data.Data) != 2 {
		t.Errorf("export = id %q with %d samples", data.ID, len(data.Data))
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	r.OnStep(sim.Sample{Step: 0})
	r.OnStep(sim.Sample{Step: 1})
	if len(r.Samples()) != 2 {
		t.Errorf("expected 2 samples, got %d", len(r.Samples()))
	}
	r.Reset()
	if len(r.Samples()) != 0 {
		t.Error("reset kept samples")
	}
}

func TestReadSamplesRejectsBadRows(t *testing.T) {
	in := strings.Join(Header, ",") + "\n0,a,0,0,0,0,0,0,0,0\n"
	if _, err := ReadSamples(strings.NewReader(in)); err == nil {
		t.Error("expected parse error")
	}
}
