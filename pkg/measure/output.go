package measure

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OutputWriter writes measures as JSON documents into a directory.
type OutputWriter struct {
	dir string
}

// NewOutputWriter creates dir if needed.
func NewOutputWriter(dir string) (*OutputWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &OutputWriter{dir: dir}, nil
}

// FileName builds the output name for a measure computed on graphPath.
func FileName(m *GraphMeasure, graphPath string) string {
	base := strings.TrimSuffix(filepath.Base(graphPath), filepath.Ext(graphPath))
	return fmt.Sprintf("%s_%s_%s_%dseeds_%s.json",
		strings.ToLower(m.AlgorithmName), base, m.Direction, m.NumSeeds, m.RunID)
}

// WriteMeasure writes one measure and returns the file path.
func (w *OutputWriter) WriteMeasure(m *GraphMeasure, graphPath string) (string, error) {
	path := filepath.Join(w.dir, FileName(m, graphPath))
	return path, writeJSON(path, m)
}

// WriteRuns writes a list of measures plus their summary to name.
func (w *OutputWriter) WriteRuns(name string, runs []*GraphMeasure) (string, error) {
	doc := struct {
		Summary Summary         `json:"summary"`
		Runs    []*GraphMeasure `json:"runs"`
	}{Summarize(runs), runs}

	path := filepath.Join(w.dir, name)
	return path, writeJSON(path, doc)
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
