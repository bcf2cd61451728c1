package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Steps  []int       `json:"steps"`
	Times  []float64   `json:"times"`
	States []Series    `json:"states"`
}

func NewExportData(meta RunMetadata, frames []Frame) *ExportData {
	data := &ExportData{
		Run:    meta,
		Steps:  make([]int, len(frames)),
		Times:  make([]float64, len(frames)),
		States: make([]Series, len(frames)),
	}
	for i, f := range frames {
		data.Steps[i] = f.Step
		data.Times[i] = f.Time
		data.States[i] = f.State
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, frames []Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteJSON(file, meta, frames); err != nil {
		return err
	}
	return file.Close()
}

func WriteJSON(w io.Writer, meta RunMetadata, frames []Frame) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, frames))
}
