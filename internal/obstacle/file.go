package obstacle

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// LoadCSV reads x,y,z rows from a point cloud file. A non-numeric first row is
// treated as a header; blank lines are skipped.
func LoadCSV(path string) ([]r3.Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open point cloud")
	}
	defer f.Close()

	pts, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read point cloud %s", path)
	}
	return pts, nil
}

func ReadCSV(r io.Reader) ([]r3.Vector, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	pts := make([]r3.Vector, 0, len(records))
	for i, rec := range records {
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		if len(rec) < 3 {
			return nil, errors.Errorf("row %d: expected 3 columns, got %d", i+1, len(rec))
		}
		var xyz [3]float64
		parsed := true
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j]), 64)
			if err != nil {
				parsed = false
				break
			}
			xyz[j] = v
		}
		if !parsed {
			if i == 0 {
				continue
			}
			return nil, errors.Errorf("row %d: non-numeric coordinate", i+1)
		}
		pts = append(pts, r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	return pts, nil
}
