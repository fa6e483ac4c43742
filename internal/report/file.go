package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes every report as an indented JSON file.
type FileSink struct {
	dir string
}

// NewFileSink writes into dir. An empty dir uses the system temporary directory.
func NewFileSink(dir string) (*FileSink, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create report dir %q: %w", dir, err)
		}
	}
	return &FileSink{dir: dir}, nil
}

func (f *FileSink) Save(_ context.Context, r *Report) error {
	_, err := f.Write(r)
	return err
}

// Write stores the report and returns the file name.
func (f *FileSink) Write(r *Report) (string, error) {
	var (
		file *os.File
		err  error
	)
	if f.dir == "" {
		file, err = os.CreateTemp("", "interview_*.json")
	} else {
		file, err = os.Create(filepath.Join(f.dir, fmt.Sprintf("interview_%s.json", r.SessionID)))
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReadFile loads a report written by a FileSink.
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %q: %w", path, err)
	}
	return &r, nil
}
