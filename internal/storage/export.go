package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/springsim/internal/dynamo"
)

type ExportData struct {
	Spring      string             `json:"spring"`
	Kind        string             `json:"kind"`
	Integration string             `json:"integration"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	States      [][]float64        `json:"states"`
	Targets     [][]float64        `json:"targets"`
	Metrics     map[string]float64 `json:"metrics"`
}

func newExportData(meta RunMetadata, result *dynamo.Result) ExportData {
	data := ExportData{
		Spring:      meta.Spring,
		Kind:        meta.Kind,
		Integration: meta.Integration,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Steps:       len(result.Times),
		Times:       result.Times,
		States:      make([][]float64, len(result.States)),
		Targets:     make([][]float64, len(result.Controls)),
		Metrics:     finiteMetrics(result.Metrics),
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Targets[i] = c
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result)
}

func ExportJSONStdout(meta RunMetadata, result *dynamo.Result) error {
	return WriteJSON(os.Stdout, meta, result)
}

func WriteJSON(w io.Writer, meta RunMetadata, result *dynamo.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, result))
}

// CSVHeader names the columns: time, x0..xn-1, v0..vn-1, target0..targetm-1.
func CSVHeader(stateDim, controlDim int) []string {
	header := []string{"time"}
	n := stateDim / 2
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < stateDim-n; i++ {
		header = append(header, fmt.Sprintf("v%d", i))
	}
	for i := 0; i < controlDim; i++ {
		header = append(header, fmt.Sprintf("target%d", i))
	}
	return header
}

// WriteCSV writes one row per recorded state. Rows without targets are
// padded with zeros.
func WriteCSV(out io.Writer, result *dynamo.Result) error {
	w := csv.NewWriter(out)

	if len(result.States) == 0 {
		w.Flush()
		return w.Error()
	}

	numControls := 0
	if len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
	}
	if err := w.Write(CSVHeader(len(result.States[0]), numControls)); err != nil {
		return err
	}

	for i := range result.States {
		t := 0.0
		if i < len(result.Times) {
			t = result.Times[i]
		}
		row := []string{strconv.FormatFloat(t, 'f', 6, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if i < len(result.Controls) && len(result.Controls[i]) == numControls {
			for _, val := range result.Controls[i] {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		} else {
			for j := 0; j < numControls; j++ {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
