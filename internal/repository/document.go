package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// readDocument loads one whole JSON document from disk. A missing file is
// reported via os.IsNotExist on the returned error.
func readDocument(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// writeDocument rewrites the whole document: marshal, write to a temp file
// in the same directory, then rename over the target. Rename keeps a crash
// from leaving a half-written document behind.
func writeDocument(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
