// Package storage keeps flown missions and planned trees on disk, one
// directory per run.
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
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/san-kum/lookahead/internal/config"
	"github.com/san-kum/lookahead/internal/dynamo"
	"github.com/san-kum/lookahead/internal/planner"
	"github.com/san-kum/lookahead/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	configFile     = "config.yaml"
	trajectoryFile = "trajectory.csv"
	treeFile       = "tree.csv"
)

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	KindRun  = "run"
	KindPlan = "plan"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Kind        string             `json:"kind"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	Outcome     string             `json:"outcome,omitempty"`
	Steps       int                `json:"steps"`
	ControlDt   float64            `json:"control_dt"`
	Duration    float64            `json:"duration"`
	Integrator  string             `json:"integrator"`
	Start       [3]float64         `json:"start"`
	Goal        [3]float64         `json:"goal"`
	Termination string             `json:"termination,omitempty"`
	TreeNodes   int                `json:"tree_nodes"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Save writes a closed-loop run: metadata, the config it flew with, the
// trajectory and the last tree built.
func (s *Store) Save(scenario string, cfg *config.Config, result *sim.Result) (string, error) {
	meta := s.newMetadata(KindRun, scenario, cfg)
	meta.Outcome = result.Outcome.String()
	meta.Steps = len(result.Steps)
	meta.Metrics = result.Metrics
	if result.LastTree != nil {
		meta.Termination = result.LastTree.Termination.String()
		meta.TreeNodes = len(result.LastTree.Nodes)
	}

	runDir, err := s.create(meta, cfg)
	if err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, trajectoryFile), func(w *csv.Writer) error {
		return writeTrajectory(w, result)
	}); err != nil {
		return "", err
	}
	if result.LastTree != nil {
		if err := writeCSV(filepath.Join(runDir, treeFile), func(w *csv.Writer) error {
			return writeTree(w, result.LastTree)
		}); err != nil {
			return "", err
		}
	}
	return meta.ID, nil
}

// SavePlan writes a single planning call.
func (s *Store) SavePlan(scenario string, cfg *config.Config, tree *planner.Tree) (string, error) {
	meta := s.newMetadata(KindPlan, scenario, cfg)
	meta.Termination = tree.Termination.String()
	meta.TreeNodes = len(tree.Nodes)

	runDir, err := s.create(meta, cfg)
	if err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, treeFile), func(w *csv.Writer) error {
		return writeTree(w, tree)
	}); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) newMetadata(kind, scenario string, cfg *config.Config) RunMetadata {
	if scenario == "" {
		scenario = "custom"
	}
	now := s.now()
	m := cfg.Mission
	return RunMetadata{
		ID:         fmt.Sprintf("%s_%s_%d", scenario, kind, now.UnixNano()),
		Kind:       kind,
		Scenario:   scenario,
		Timestamp:  now,
		ControlDt:  m.ControlDt,
		Duration:   m.Duration,
		Integrator: m.Integrator,
		Start:      [3]float64{m.Start.X, m.Start.Y, m.Start.Z},
		Goal:       [3]float64{m.Goal.X, m.Goal.Y, m.Goal.Z},
	}
}

func (s *Store) create(meta RunMetadata, cfg *config.Config) (string, error) {
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrap(err, "create run directory")
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", errors.Wrap(err, "create metadata")
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", errors.Wrap(err, "encode metadata")
	}

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	return runDir, nil
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
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "decode metadata of %s", runID)
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// TrajectoryPath is the CSV file holding a run's trajectory.
func (s *Store) TrajectoryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, trajectoryFile)
}

// TrajectoryRow is one line of trajectory.csv. The first row is the start
// state and carries no command.
type TrajectoryRow struct {
	State       dynamo.SimulationState
	Command     r3.Vector
	Termination planner.Termination
	TreeNodes   int
}

var trajectoryHeader = []string{
	"time", "px", "py", "pz", "vx", "vy", "vz", "ax", "ay", "az",
	"cmd_x", "cmd_y", "cmd_z", "termination", "nodes",
}

func writeTrajectory(w *csv.Writer, result *sim.Result) error {
	if err := w.Write(trajectoryHeader); err != nil {
		return err
	}
	row := func(st dynamo.SimulationState, cmd r3.Vector, term planner.Termination, nodes int) []string {
		out := formatFloats(st.Time,
			st.Position.X, st.Position.Y, st.Position.Z,
			st.Velocity.X, st.Velocity.Y, st.Velocity.Z,
			st.Acceleration.X, st.Acceleration.Y, st.Acceleration.Z,
			cmd.X, cmd.Y, cmd.Z)
		return append(out, term.String(), strconv.Itoa(nodes))
	}

	if err := w.Write(row(result.Start, r3.Vector{}, planner.TerminationNone, 0)); err != nil {
		return err
	}
	for _, step := range result.Steps {
		if err := w.Write(row(step.State, step.Command, step.Termination, step.TreeSize)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) LoadTrajectory(runID string) ([]TrajectoryRow, error) {
	records, err := readCSV(s.TrajectoryPath(runID))
	if err != nil {
		return nil, err
	}

	rows := make([]TrajectoryRow, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(trajectoryHeader) {
			return nil, errors.Errorf("trajectory line %d: expected %d fields, got %d", i+2, len(trajectoryHeader), len(rec))
		}
		v, err := parseFloats(rec[:13])
		if err != nil {
			return nil, errors.Wrapf(err, "trajectory line %d", i+2)
		}
		nodes, err := strconv.Atoi(rec[14])
		if err != nil {
			return nil, errors.Wrapf(err, "trajectory line %d", i+2)
		}
		rows = append(rows, TrajectoryRow{
			State: dynamo.SimulationState{
				Time:         v[0],
				Position:     r3.Vector{X: v[1], Y: v[2], Z: v[3]},
				Velocity:     r3.Vector{X: v[4], Y: v[5], Z: v[6]},
				Acceleration: r3.Vector{X: v[7], Y: v[8], Z: v[9]},
			},
			Command:     r3.Vector{X: v[10], Y: v[11], Z: v[12]},
			Termination: planner.ParseTermination(rec[13]),
			TreeNodes:   nodes,
		})
	}
	return rows, nil
}

var treeHeader = []string{"index", "parent", "px", "py", "pz", "sx", "sy", "sz", "h", "f", "closed", "on_path"}

func writeTree(w *csv.Writer, tree *planner.Tree) error {
	if err := w.Write(treeHeader); err != nil {
		return err
	}
	onPath := make(map[int]bool)
	for _, i := range tree.PathIndices() {
		onPath[i] = true
	}
	for _, n := range tree.Nodes {
		rec := []string{strconv.Itoa(n.Index), strconv.Itoa(n.Parent)}
		p := n.Position()
		rec = append(rec, formatFloats(p.X, p.Y, p.Z, n.Setpoint.X, n.Setpoint.Y, n.Setpoint.Z, n.H, n.F)...)
		rec = append(rec, strconv.FormatBool(n.Closed), strconv.FormatBool(onPath[n.Index]))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// LoadTree restores the nodes of a saved tree. Origin is the deepest node on
// the saved path and Termination comes from the run metadata; node states
// only carry positions.
func (s *Store) LoadTree(runID string) (*planner.Tree, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := readCSV(filepath.Join(s.baseDir, runID, treeFile))
	if err != nil {
		return nil, err
	}

	tree := &planner.Tree{
		Nodes:       make([]planner.TreeNode, 0, len(records)),
		Termination: planner.ParseTermination(meta.Termination),
		Goal:        r3.Vector{X: meta.Goal[0], Y: meta.Goal[1], Z: meta.Goal[2]},
	}
	for i, rec := range records {
		if len(rec) != len(treeHeader) {
			return nil, errors.Errorf("tree line %d: expected %d fields, got %d", i+2, len(treeHeader), len(rec))
		}
		index, err1 := strconv.Atoi(rec[0])
		parent, err2 := strconv.Atoi(rec[1])
		v, err3 := parseFloats(rec[2:10])
		closed, err4 := strconv.ParseBool(rec[10])
		onPath, err5 := strconv.ParseBool(rec[11])
		for _, e := range []error{err1, err2, err3, err4, err5} {
			if e != nil {
				return nil, errors.Wrapf(e, "tree line %d", i+2)
			}
		}
		if index != len(tree.Nodes) {
			return nil, errors.Errorf("tree line %d: expected node %d, got %d", i+2, len(tree.Nodes), index)
		}
		tree.Nodes = append(tree.Nodes, planner.TreeNode{
			Index:    index,
			Parent:   parent,
			State:    dynamo.StateAt(0, r3.Vector{X: v[0], Y: v[1], Z: v[2]}),
			Setpoint: r3.Vector{X: v[3], Y: v[4], Z: v[5]},
			H:        v[6],
			F:        v[7],
			Closed:   closed,
		})
		if onPath {
			tree.Origin = index
		}
	}
	return tree, nil
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return errors.Wrapf(err, "write %s", filepath.Base(path))
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flush %s", filepath.Base(path))
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrRunNotFound, filepath.Base(path))
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	return r.ReadAll()
}

func formatFloats(vals ...float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
