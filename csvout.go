package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// OutputWriteError reports a destination that could not be written. It is
// always fatal; the run leaves no partial file behind.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("cannot write output %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() error {
	return e.Err
}

// writeCSVFile writes records to path atomically: the rows go to a temporary
// file in the same directory which is renamed over the destination once fully
// flushed. A failed run never leaves a truncated output in place.
func writeCSVFile(path string, records [][]string) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return &OutputWriteError{Path: path, Err: err}
	}
	tempPath := temp.Name()

	writer := csv.NewWriter(temp)
	if err := writer.WriteAll(records); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return &OutputWriteError{Path: path, Err: err}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return &OutputWriteError{Path: path, Err: err}
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return &OutputWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return &OutputWriteError{Path: path, Err: err}
	}
	return nil
}
