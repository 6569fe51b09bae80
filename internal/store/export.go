package store

import (
	"encoding/json"
	"io"

	"github.com/san-kum/botcore/internal/dynamo"
)

type ExportData struct {
	Run     RunMetadata     `json:"run"`
	Samples []dynamo.Sample `json:"samples"`
}

// ExportJSON writes a stored run, metadata and trace, as one document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Samples: samples})
}

// ExportCSV copies a stored trace to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	samples, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	return WriteCSV(w, samples)
}
