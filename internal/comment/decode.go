package comment

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Decode reads a JSON array of comment objects.
func Decode(r io.Reader) ([]Record, error) {
	var recs []Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decoding comments: %w", err)
	}
	return recs, nil
}

// ReadFile reads a JSON array of comment objects from path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
