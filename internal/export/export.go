// Package export writes dataset rows and trees to disk.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/fragmede/threadprep/internal/thread"
)

// File names written by WriteAll.
const (
	ParquetFile = "dataset.parquet"
	JSONLFile   = "dataset.jsonl"
	TreesFile   = "trees.json"
)

// Paths lists the files written for one build.
type Paths struct {
	Parquet string
	JSONL   string
	Trees   string
}

// WriteAll writes the columnar dataset, a JSON Lines copy and the nested
// trees into dir.
func WriteAll(dir string, f *thread.Forest, rows []thread.Row) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("creating export dir: %w", err)
	}
	p := Paths{
		Parquet: filepath.Join(dir, ParquetFile),
		JSONL:   filepath.Join(dir, JSONLFile),
		Trees:   filepath.Join(dir, TreesFile),
	}
	if err := WriteParquet(p.Parquet, rows); err != nil {
		return p, err
	}
	if err := WriteJSONL(p.JSONL, rows); err != nil {
		return p, err
	}
	if err := WriteTrees(p.Trees, f); err != nil {
		return p, err
	}
	return p, nil
}

// WriteParquet writes rows as a parquet file.
func WriteParquet(path string, rows []thread.Row) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadParquet reads rows back from a parquet file.
func ReadParquet(path string) ([]thread.Row, error) {
	rows, err := parquet.ReadFile[thread.Row](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

// WriteJSONL writes one JSON object per row.
func WriteJSONL(path string, rows []thread.Row) error {
	return writeFile(path, func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteTrees writes the forest as an indented JSON array of nested trees.
func WriteTrees(path string, f *thread.Forest) error {
	return writeFile(path, func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	})
}

func writeFile(path string, fn func(*bufio.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(file)
	if err := fn(w); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return file.Close()
}
