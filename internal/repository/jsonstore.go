package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeFileAtomic replaces path with the JSON encoding of v. The document is
// written to a temp file in the same directory first and swapped in with a
// rename, so readers never observe a partial write.
func writeFileAtomic(path string, v interface{}) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("marshal store document: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// loadJSONFile reads path into v, reporting whether a usable document was
// found. Missing or corrupt files are not errors; callers start empty.
func loadJSONFile(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}
