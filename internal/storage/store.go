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

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/armsim/internal/arm"
	"github.com/san-kum/armsim/internal/se2"
	"github.com/san-kum/armsim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var trajectoryHeader = []string{
	"time",
	"base_x", "base_y", "base_theta",
	"link1_x", "link1_y", "link1_theta",
	"link2_x", "link2_y", "link2_theta",
	"target_x", "target_y", "target_theta",
	"reward",
}

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
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Episode    int                `json:"episode"`
	Controller string             `json:"controller"`
	Config     arm.Config         `json:"config"`
	Outcome    string             `json:"outcome"`
	Steps      int                `json:"steps"`
	Return     float64            `json:"return"`
	Metrics    map[string]float64 `json:"metrics"`
	Counters   arm.Counters       `json:"counters"`
}

// Save writes one episode under a fresh run id. The episode summary fields of
// meta are filled in from result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])
	meta.Timestamp = now
	meta.Outcome = result.Outcome.String()
	meta.Steps = result.Steps
	meta.Return = result.Return
	meta.Counters = result.Counters
	meta.Metrics = make(map[string]float64, len(result.Metrics))
	for name, v := range result.Metrics {
		// JSON has no encoding for Inf or NaN.
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			meta.Metrics[name] = v
		}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), result.Trajectory); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return f.Close()
}

func writeTrajectory(path string, snaps []arm.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteTrajectory(f, snaps); err != nil {
		return err
	}
	return f.Close()
}

// WriteTrajectory encodes snapshots as csv, one row per tick.
func WriteTrajectory(w io.Writer, snaps []arm.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(trajectoryHeader); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, snap := range snaps {
		row := make([]string, 0, len(trajectoryHeader))
		row = append(row, format(snap.Time))
		for _, tf := range []*se2.Transform{snap.Base, snap.Link1, snap.Link2, snap.Target} {
			row = append(row, format(tf.X()), format(tf.Y()), format(tf.Angle()))
		}
		row = append(row, format(snap.Reward))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTrajectory decodes what WriteTrajectory produced.
func ReadTrajectory(r io.Reader) ([]arm.Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(trajectoryHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: trajectory missing header")
	}

	snaps := make([]arm.Snapshot, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d column %s: %w", i+1, trajectoryHeader[j], err)
			}
			vals[j] = v
		}

		pose := func(k int) *se2.Transform {
			return se2.New(r2.Vec{X: vals[k], Y: vals[k+1]}, vals[k+2])
		}
		snaps = append(snaps, arm.Snapshot{
			Time:   vals[0],
			Base:   pose(1),
			Link1:  pose(4),
			Link2:  pose(7),
			Target: pose(10),
			Reward: vals[13],
		})
	}
	return snaps, nil
}

// List returns every stored run, oldest first. Directories without readable
// metadata are skipped.
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) ([]arm.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return ReadTrajectory(f)
}

// Latest returns the id of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[len(runs)-1].ID, nil
}
