package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/ews"
)

var ErrNoEWS = errors.New("storage: run has no ews table")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
	ewsFile        = "ews.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       uint64             `json:"seed"`
	K          float64            `json:"k"`
	C          float64            `json:"c"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Detrend    string             `json:"detrend,omitempty"`
	Window     int                `json:"window,omitempty"`
	Clamped    int                `json:"clamped"`
	Metrics    map[string]float64 `json:"metrics"`
	Trends     map[string]float64 `json:"trends,omitempty"`
}

// Save writes a run directory holding metadata.json, trajectory.csv and,
// when res is non-nil, ews.csv. The metadata ID is filled in and returned.
func (s *Store) Save(meta RunMetadata, traj *dynamo.Trajectory, res *ews.Result) (string, error) {
	now := time.Now()
	name := meta.Name
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%d_%d", name, meta.Seed, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Clamped = traj.Clamped
	meta.Metrics = finiteOnly(traj.Metrics)
	if res != nil {
		meta.Detrend = string(res.Method)
		meta.Window = res.Window
		meta.Trends = finiteOnly(res.Trends)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
		return WriteTrajectoryCSV(w, traj)
	}); err != nil {
		return "", err
	}
	if res != nil {
		if err := writeCSVFile(filepath.Join(runDir, ewsFile), func(w io.Writer) error {
			return WriteEWSCSV(w, res)
		}); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns the metadata of every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory reads trajectory.csv back into a trajectory.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}

	traj := &dynamo.Trajectory{
		Times:   make([]float64, 0, len(records)),
		States:  make([]dynamo.State, 0, len(records)),
		Metrics: map[string]float64{},
	}
	for i := 1; i < len(records); i++ {
		row, err := parseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", trajectoryFile, i+1, err)
		}
		if len(row) == 0 {
			continue
		}
		traj.Times = append(traj.Times, row[0])
		traj.States = append(traj.States, dynamo.State(row[1:]))
	}
	return traj, nil
}

// LoadEWS reads ews.csv back into a result holding the time index and the
// indicator columns.
func (s *Store) LoadEWS(runID string) (*ews.Result, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, ewsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoEWS
		}
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoEWS
	}

	order := append([]string(nil), records[0][1:]...)
	res := &ews.Result{
		TimeIndex:  make([]float64, 0, len(records)-1),
		Indicators: make(map[string][]float64, len(order)),
		Order:      order,
	}
	for _, name := range order {
		res.Indicators[name] = make([]float64, 0, len(records)-1)
	}
	for i := 1; i < len(records); i++ {
		row, err := parseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", ewsFile, i+1, err)
		}
		if len(row) != len(order)+1 {
			return nil, fmt.Errorf("%s line %d: expected %d fields, got %d", ewsFile, i+1, len(order)+1, len(row))
		}
		res.TimeIndex = append(res.TimeIndex, row[0])
		for k, name := range order {
			res.Indicators[name] = append(res.Indicators[name], row[k+1])
		}
	}
	res.Trends = make(map[string]float64, len(order))
	for _, name := range order {
		res.Trends[name] = ews.KendallTau(res.TimeIndex, res.Indicators[name])
	}
	return res, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func parseRow(record []string) ([]float64, error) {
	row := make([]float64, len(record))
	for j, field := range record {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		row[j] = v
	}
	return row, nil
}

// finiteOnly drops NaN and Inf values, which JSON cannot encode.
func finiteOnly(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}
