package codec

import (
	"encoding/json"
	"fmt"
	"os"
)

// Marshal encodes records as a 2-space indented JSON array.
func Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Unmarshal parses a JSON array of records.
func Unmarshal(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse drawing: %w", err)
	}
	return records, nil
}

// ReadFile reads and decodes a drawing file. Nothing is returned unless
// the whole file decodes.
func ReadFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	records, err := Unmarshal(data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	res, err := Decode(records)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// WriteFile writes records to path. The file is written to a temporary
// name first and renamed into place.
func WriteFile(path string, records []Record) error {
	data, err := Marshal(records)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
