package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/resilience/internal/dynamo"
	"github.com/san-kum/resilience/internal/ews"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteTrajectoryCSV writes one row per recorded point: time, x0, x1, ...
func WriteTrajectoryCSV(out io.Writer, traj *dynamo.Trajectory) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	if len(traj.States) > 0 {
		for i := range traj.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range traj.States {
		row := []string{formatFloat(traj.Times[i])}
		for _, val := range traj.States[i] {
			row = append(row, formatFloat(val))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteEWSCSV writes the time index and one column per indicator in output
// order. Undefined values are written as NaN.
func WriteEWSCSV(out io.Writer, res *ews.Result) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, res.Order...)
	if err := w.Write(header); err != nil {
		return err
	}
	for j, t := range res.TimeIndex {
		row := []string{formatFloat(t)}
		for _, name := range res.Order {
			row = append(row, formatFloat(res.Indicators[name][j]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ExportData is the single-document JSON form of a run, for plotting
// outside this tool.
type ExportData struct {
	Meta       RunMetadata           `json:"meta"`
	Times      []float64             `json:"times"`
	Stock      []float64             `json:"stock"`
	TimeIndex  []float64             `json:"ews_time,omitempty"`
	Indicators map[string][]*float64 `json:"ews,omitempty"`
}

// ExportJSON encodes a run as indented JSON. NaN indicator values become
// null.
func ExportJSON(out io.Writer, meta RunMetadata, traj *dynamo.Trajectory, res *ews.Result) error {
	data := ExportData{
		Meta:  meta,
		Times: traj.Times,
		Stock: traj.Component(0).Values,
	}
	data.Meta.Metrics = finiteOnly(traj.Metrics)
	data.Meta.Clamped = traj.Clamped

	if res != nil {
		data.TimeIndex = res.TimeIndex
		data.Indicators = make(map[string][]*float64, len(res.Indicators))
		for name, vals := range res.Indicators {
			col := make([]*float64, len(vals))
			for i := range vals {
				if !math.IsNaN(vals[i]) && !math.IsInf(vals[i], 0) {
					col[i] = &vals[i]
				}
			}
			data.Indicators[name] = col
		}
		data.Meta.Trends = finiteOnly(res.Trends)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
