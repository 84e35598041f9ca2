// Package store persists closed-loop results for offline analysis.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/r-mohan/quadnmpc/internal/sim"
)

type ExportData struct {
	Model    string             `json:"model"`
	Variant  string             `json:"variant"`
	Dt       float64            `json:"dt"`
	Horizon  int                `json:"horizon"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	Failures int                `json:"solve_failures"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Inputs   [][]float64        `json:"inputs"`
	Metrics  map[string]float64 `json:"metrics"`
}

// NewExportData flattens a run result plus its scenario identifiers.
func NewExportData(model, variant string, dt float64, horizon int, duration float64, result *sim.Result) ExportData {
	return ExportData{
		Model:    model,
		Variant:  variant,
		Dt:       dt,
		Horizon:  horizon,
		Duration: duration,
		Steps:    result.StepsTaken,
		Failures: result.SolveFailures,
		Times:    result.Times,
		States:   result.States,
		Inputs:   result.Inputs,
		Metrics:  result.Metrics,
	}
}

// WriteJSON writes the run as indented JSON.
func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes the run to a JSON file.
func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}

// LoadJSON reads back a run exported with ExportJSON.
func LoadJSON(path string) (ExportData, error) {
	var data ExportData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, err
	}
	return data, nil
}

// WriteCSV writes one row per step: time, state channels, input channels.
// Inputs lag states by one sample; the final row leaves them empty.
func WriteCSV(w io.Writer, data ExportData) error {
	if len(data.States) == 0 {
		return fmt.Errorf("no states to export")
	}

	cw := csv.NewWriter(w)
	header := []string{"t"}
	for i := range data.States[0] {
		header = append(header, "x"+strconv.Itoa(i))
	}
	nu := 0
	if len(data.Inputs) > 0 {
		nu = len(data.Inputs[0])
	}
	for i := 0; i < nu; i++ {
		header = append(header, "u"+strconv.Itoa(i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for k, x := range data.States {
		row := []string{strconv.FormatFloat(data.Times[k], 'g', -1, 64)}
		for _, v := range x {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if k < len(data.Inputs) {
			for _, v := range data.Inputs[k] {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		} else {
			for i := 0; i < nu; i++ {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the run to a CSV file.
func ExportCSV(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, data)
}
