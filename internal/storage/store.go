package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/gravsim/internal/loader"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	finalFile    = "final.dat"
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
	ID            string        `json:"id"`
	Source        string        `json:"source"`
	Timestamp     time.Time     `json:"timestamp"`
	Layout        Layout        `json:"layout"`
	Dt            float64       `json:"dt"`
	EndTime       float64       `json:"t_end"`
	Steps         int           `json:"steps"`
	FinalTime     float64       `json:"final_time"`
	MinDistance   float64       `json:"min_distance"`
	Workers       int           `json:"workers"`
	SnapshotEvery int           `json:"snapshot_every"`
	Finite        bool          `json:"finite"`
	Elapsed       time.Duration `json:"elapsed_ns"`
	Metrics       Metrics       `json:"metrics"`
}

// Save writes a new run directory and returns its id. meta.ID and
// meta.Timestamp are filled in. final, if non-nil, is written as a loadable
// checkpoint of the end state.
func (s *Store) Save(meta RunMetadata, frames []Frame, final *loader.Input) (string, error) {
	meta.Timestamp = time.Now()
	meta.ID = s.newID(meta.Source, meta.Timestamp)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(runDir, statesFile), meta.Layout, frames); err != nil {
		return "", err
	}

	if final != nil {
		if err := loader.Save(filepath.Join(runDir, finalFile), final); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

func (s *Store) newID(source string, ts time.Time) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "run"
	}
	id := fmt.Sprintf("%s_%d", name, ts.Unix())
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s_%d_%d", name, ts.Unix(), n)
	}
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

func writeStates(path string, layout Layout, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, layout, frames); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes one header row and one row per frame: step, time, then
// the packed state.
func WriteCSV(w io.Writer, layout Layout, frames []Frame) error {
	cw := csv.NewWriter(w)

	header := append([]string{"step", "time"}, layout.Columns()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, fr := range frames {
		row := make([]string, 0, len(fr.State)+2)
		row = append(row, strconv.Itoa(fr.Step), formatFloat(fr.Time))
		for _, val := range fr.State {
			row = append(row, formatFloat(val))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", metaPath, err)
	}

	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([]Frame, error) {
	csvPath := filepath.Join(s.baseDir, runID, statesFile)
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", csvPath, err)
	}

	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			return nil, fmt.Errorf("%s: row %d: expected step and time columns", csvPath, i+1)
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", csvPath, i+1, err)
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", csvPath, i+1, err)
		}

		state := make([]float64, 0, len(record)-2)
		for j := 2; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", csvPath, i+1, err)
			}
			state = append(state, val)
		}
		frames = append(frames, Frame{Step: step, Time: t, State: state})
	}

	return frames, nil
}

// LoadFinal reads the end-state checkpoint of a run.
func (s *Store) LoadFinal(runID string) (*loader.Input, error) {
	return loader.Load(filepath.Join(s.baseDir, runID, finalFile))
}
