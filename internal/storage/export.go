package storage

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// ExportData is a whole run in one JSON document.
type ExportData struct {
	ID           string             `json:"id"`
	Scenario     string             `json:"scenario"`
	Outcome      string             `json:"outcome"`
	ControlDt    float64            `json:"control_dt"`
	Duration     float64            `json:"duration"`
	Steps        int                `json:"steps"`
	Times        []float64          `json:"times"`
	Positions    [][3]float64       `json:"positions"`
	Velocities   [][3]float64       `json:"velocities"`
	Commands     [][3]float64       `json:"commands"`
	Terminations []string           `json:"terminations"`
	TreeNodes    []int              `json:"tree_nodes"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Export gathers the metadata and trajectory of a stored run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Kind != KindRun {
		return nil, errors.Errorf("%s is a %s and has no trajectory", runID, meta.Kind)
	}
	rows, err := s.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		ID:           meta.ID,
		Scenario:     meta.Scenario,
		Outcome:      meta.Outcome,
		ControlDt:    meta.ControlDt,
		Duration:     meta.Duration,
		Steps:        meta.Steps,
		Times:        make([]float64, len(rows)),
		Positions:    make([][3]float64, len(rows)),
		Velocities:   make([][3]float64, len(rows)),
		Commands:     make([][3]float64, len(rows)),
		Terminations: make([]string, len(rows)),
		TreeNodes:    make([]int, len(rows)),
		Metrics:      meta.Metrics,
	}
	for i, r := range rows {
		st := r.State
		data.Times[i] = st.Time
		data.Positions[i] = [3]float64{st.Position.X, st.Position.Y, st.Position.Z}
		data.Velocities[i] = [3]float64{st.Velocity.X, st.Velocity.Y, st.Velocity.Z}
		data.Commands[i] = [3]float64{r.Command.X, r.Command.Y, r.Command.Z}
		data.Terminations[i] = r.Termination.String()
		data.TreeNodes[i] = r.TreeNodes
	}
	return data, nil
}

// ExportJSON writes Export(runID) to w as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
