// Package storage keeps finished runs on disk, one directory per run with
// a metadata.json and a samples.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

var ErrNoRun = errors.New("storage: run not found")

// Header is the column layout of samples.csv.
var Header = []string{"time", "x", "y", "z", "vx", "vy", "vz", "distance", "speed", "accel"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Scenario  *config.Scenario   `json:"scenario"`
	Report    *sim.Report        `json:"report"`
	Metrics   map[string]float64 `json:"metrics"`
	Samples   int                `json:"samples"`
}

// Recorder keeps every sample of a run so it can be saved afterwards.
type Recorder struct {
	samples []sim.Sample
}

func NewRecorder() *Recorder {
	return &Recorder{samples: make([]sim.Sample, 0, 4096)}
}

func (r *Recorder) OnStep(s sim.Sample)    { r.samples = append(r.samples, s) }
func (r *Recorder) Samples() []sim.Sample { return r.samples }
func (r *Recorder) Reset()                { r.samples = r.samples[:0] }

// newRunID picks a directory name that is not taken yet.
func (s *Store) newRunID(name string, now time.Time) string {
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	id := base
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

// Save writes a run and returns its ID.
func (s *Store) Save(scenario *config.Scenario, report *sim.Report, metrics map[string]float64, samples []sim.Sample) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	now := time.Now()
	runID := s.newRunID(scenario.Name, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      scenario.Name,
		Timestamp: now,
		Scenario:  scenario,
		Report:    report,
		Metrics:   metrics,
		Samples:   len(samples),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteSamples(csvFile, samples); err != nil {
		return "", err
	}
	return runID, nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// WriteSamples writes samples as CSV with Header as the first row.
func WriteSamples(out io.Writer, samples []sim.Sample) error {
	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, smp := range samples {
		row := []string{
			formatFloat(smp.Time),
			formatFloat(smp.Pos.X), formatFloat(smp.Pos.Y), formatFloat(smp.Pos.Z),
			formatFloat(smp.Vel.X), formatFloat(smp.Vel.Y), formatFloat(smp.Vel.Z),
			formatFloat(smp.Distance), formatFloat(smp.Speed), formatFloat(smp.Accel),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNoRun)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrNoRun)
		}
		return nil, err
	}
	defer file.Close()
	return ReadSamples(file)
}

// ReadSamples parses CSV written by WriteSamples.
func ReadSamples(in io.Reader) ([]sim.Sample, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(Header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		var v [10]float64
		for j := range v {
			v[j], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+2, Header[j], err)
			}
		}
		samples = append(samples, sim.Sample{
			Step:     i,
			Time:     v[0],
			Pos:      r3.Vec{X: v[1], Y: v[2], Z: v[3]},
			Vel:      r3.Vec{X: v[4], Y: v[5], Z: v[6]},
			Distance: v[7],
			Speed:    v[8],
			Accel:    v[9],
		})
	}
	return samples, nil
}

// ExportData is a stored run in one JSON document.
type ExportData struct {
	RunMetadata
	Data []sim.Sample `json:"data"`
}

func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Data: samples})
}

// ExportCSV copies the stored samples to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	return WriteSamples(w, samples)
}
