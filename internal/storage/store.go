package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
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

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID          string              `json:"id"`
	Spring      string              `json:"spring"`
	Kind        string              `json:"kind"`
	Timestamp   time.Time           `json:"timestamp"`
	Dt          float64             `json:"dt"`
	Duration    float64             `json:"duration"`
	Force       float64             `json:"force"`
	Drag        float64             `json:"drag"`
	Integration string              `json:"integration"`
	Integrator  string              `json:"integrator"`
	Schedule    string              `json:"schedule"`
	Tuning      dynamo.TuningConfig `json:"tuning"`
	Axes        int                 `json:"axes"`
	Steps       int                 `json:"steps"`
	Metrics     map[string]float64  `json:"metrics"`
}

// Save writes result under a fresh run directory and returns its ID. ID,
// Timestamp, Axes and Steps in meta are filled in.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	runID, runDir, err := s.newRunDir(meta.Spring)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Steps = len(result.Times)
	if len(result.States) > 0 {
		meta.Axes = len(result.States[0]) / 2
	}
	meta.Metrics = finiteMetrics(result.Metrics)

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	if name == "" {
		name = "run"
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 1; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

// finiteMetrics drops values JSON cannot carry.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			log.Printf("storage: dropping non-finite metric %s=%g", k, v)
			continue
		}
		out[k] = v
	}
	return out
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

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates returns the state rows and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	result, err := s.LoadResult(runID)
	if err != nil {
		return nil, nil, err
	}
	states := make([][]float64, len(result.States))
	for i, st := range result.States {
		states[i] = st
	}
	return states, result.Times, nil
}

// LoadResult reads a run back as a Result, targets included.
func (s *Store) LoadResult(runID string) (*dynamo.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	result := &dynamo.Result{Metrics: map[string]float64{}}
	if len(records) < 2 {
		return result, nil
	}

	numState := 0
	for _, col := range records[0][1:] {
		if !strings.HasPrefix(col, "target") {
			numState++
		}
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make(dynamo.State, 0, numState)
		targets := make(dynamo.Control, 0, len(record)-1-numState)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				val = math.NaN()
			}
			if j <= numState {
				state = append(state, val)
			} else {
				targets = append(targets, val)
			}
		}
		result.Times = append(result.Times, t)
		result.States = append(result.States, state)
		result.Controls = append(result.Controls, targets)
	}

	result.StepsTaken = len(result.Times)
	if meta, err := s.Load(runID); err == nil {
		result.Metrics = meta.Metrics
	}
	return result, nil
}
