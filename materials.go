package danton

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// MaterialTable is the lepton engine's compiled dE/dx and scattering table
// set, reduced here to the handful of values our reference PUMAS-like
// engine consults. It stands in for the real PUMAS binary material dump
// (spec §4.10, danton.c's `load_pumas()`).
type MaterialTable struct {
	Rock MaterialEntry
	Sea  MaterialEntry
	Air  MaterialEntry
}

// MaterialEntry holds the per-material constants a lepton engine needs.
type MaterialEntry struct {
	Z, A float64
	DEDX float64 // GeV per (kg/m^2)
}

// DefaultMaterials returns the built-in table matching the Earth model's
// three material groups (spec §4.1).
func DefaultMaterials() MaterialTable {
	return MaterialTable{
		Rock: MaterialEntry{Z: 13, A: 26, DEDX: 2.0e-6},
		Sea:  MaterialEntry{Z: 3.33334, A: 6.00557, DEDX: 2.0e-6},
		Air:  MaterialEntry{Z: 7.26199, A: 14.5477, DEDX: 2.0e-6},
	}
}

// LoadOrBuildMaterials loads a gob-encoded material cache from path if
// present, otherwise builds the default table and writes it to path for
// next time — mirroring danton.c's `load_pumas()` dump/reload and the
// teacher's `Nav.SaveNav`/`ReadNav` binary-cache idiom (common.go).
func LoadOrBuildMaterials(path string) (MaterialTable, error) {
	if path == "" {
		return DefaultMaterials(), nil
	}
	if data, err := os.ReadFile(path); err == nil {
		var table MaterialTable
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&table); err != nil {
			return MaterialTable{}, fmt.Errorf("danton: corrupt material cache %q: %w", path, err)
		}
		return table, nil
	} else if !os.IsNotExist(err) {
		return MaterialTable{}, fmt.Errorf("danton: reading material cache %q: %w", path, err)
	}

	table := DefaultMaterials()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(table); err != nil {
		return MaterialTable{}, fmt.Errorf("danton: encoding material cache: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return MaterialTable{}, fmt.Errorf("danton: writing material cache %q: %w", path, err)
	}
	return table, nil
}
