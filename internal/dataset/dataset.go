// Package dataset loads a pre-cleaned observation matrix (rows are time
// steps, columns are longitude pixels) with its coordinate side table and
// hands single columns to the early-warning engine.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/resilience/internal/series"
)

var (
	ErrEmptyMatrix  = errors.New("dataset: empty matrix")
	ErrRaggedMatrix = errors.New("dataset: rows differ in length")
	ErrCoordinates  = errors.New("dataset: coordinates do not match matrix shape")
	ErrColumnRange  = errors.New("dataset: column out of range")
	ErrNoLongitudes = errors.New("dataset: no longitude coordinates")
)

// Coordinates describe the physical position of each row and column. Lat is
// carried for reference; the matrix is already a single latitude band.
type Coordinates struct {
	Lat  []float64 `yaml:"lat"`
	Lon  []float64 `yaml:"lon"`
	Time []float64 `yaml:"time"`
}

type Dataset struct {
	Data   *mat.Dense
	Header []string
	Coords *Coordinates
}

// ReadMatrix parses a CSV matrix. A first row that does not parse as numbers
// is taken as a header. Empty fields and "NaN" are missing values.
func ReadMatrix(r io.Reader) (*mat.Dense, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyMatrix
	}

	var header []string
	if _, err := parseRecord(records[0]); err != nil {
		header = records[0]
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyMatrix
	}

	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, rec := range records {
		if len(rec) != cols {
			return nil, nil, fmt.Errorf("%w: row %d has %d fields, expected %d", ErrRaggedMatrix, i, len(rec), cols)
		}
		row, err := parseRecord(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: row %d: %w", i, err)
		}
		data = append(data, row...)
	}
	if cols == 0 {
		return nil, nil, ErrEmptyMatrix
	}
	return mat.NewDense(len(records), cols, data), header, nil
}

func parseRecord(rec []string) ([]float64, error) {
	out := make([]float64, len(rec))
	for j, field := range rec {
		field = strings.TrimSpace(field)
		if field == "" || strings.EqualFold(field, "nan") {
			out[j] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

func ReadCoordinates(r io.Reader) (*Coordinates, error) {
	var c Coordinates
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("dataset: parse coordinates: %w", err)
	}
	return &c, nil
}

// New checks that the coordinates, when given, fit the matrix: one time per
// row and one longitude per column.
func New(data *mat.Dense, header []string, coords *Coordinates) (*Dataset, error) {
	rows, cols := data.Dims()
	if coords != nil {
		if len(coords.Time) != 0 && len(coords.Time) != rows {
			return nil, fmt.Errorf("%w: %d times for %d rows", ErrCoordinates, len(coords.Time), rows)
		}
		if len(coords.Lon) != 0 && len(coords.Lon) != cols {
			return nil, fmt.Errorf("%w: %d longitudes for %d columns", ErrCoordinates, len(coords.Lon), cols)
		}
	}
	return &Dataset{Data: data, Header: header, Coords: coords}, nil
}

// Open loads the matrix and, when coordsPath is not empty, its side table.
func Open(matrixPath, coordsPath string) (*Dataset, error) {
	f, err := os.Open(matrixPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, header, err := ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", matrixPath, err)
	}

	var coords *Coordinates
	if coordsPath != "" {
		cf, err := os.Open(coordsPath)
		if err != nil {
			return nil, err
		}
		defer cf.Close()
		if coords, err = ReadCoordinates(cf); err != nil {
			return nil, err
		}
	}
	return New(data, header, coords)
}

func (d *Dataset) Rows() int {
	r, _ := d.Data.Dims()
	return r
}

func (d *Dataset) Cols() int {
	_, c := d.Data.Dims()
	return c
}

// Column returns column j as a series, timestamped with the time
// coordinates when they are known. Missing values stay NaN.
func (d *Dataset) Column(j int) (series.Series, error) {
	if j < 0 || j >= d.Cols() {
		return series.Series{}, fmt.Errorf("%w: %d not in [0, %d)", ErrColumnRange, j, d.Cols())
	}
	values := mat.Col(nil, j, d.Data)
	var times []float64
	if d.Coords != nil && len(d.Coords.Time) > 0 {
		times = d.Coords.Time
	}
	return series.New(values, times)
}

// Lon returns the longitude of column j, or NaN when unknown.
func (d *Dataset) Lon(j int) float64 {
	if d.Coords == nil || j < 0 || j >= len(d.Coords.Lon) {
		return math.NaN()
	}
	return d.Coords.Lon[j]
}

// Nearest returns the column whose longitude is closest to lon. Ties go to
// the lower index.
func (d *Dataset) Nearest(lon float64) (int, error) {
	if d.Coords == nil || len(d.Coords.Lon) == 0 {
		return 0, ErrNoLongitudes
	}
	best, bestDist := 0, math.Inf(1)
	for j, l := range d.Coords.Lon {
		if dist := math.Abs(l - lon); dist < bestDist {
			best, bestDist = j, dist
		}
	}
	return best, nil
}
