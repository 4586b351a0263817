package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	fingerprintFileName = "pythrun.fingerprint.json"
	metadataFileName    = "pythrun.meta.json"
)

// Fingerprint is the persisted record of the last dependency set and
// source kind successfully processed for an environment.
type Fingerprint struct {
	Dependencies     []string   `json:"dependencies"`
	DependencySource SourceKind `json:"dependency_source"`
}

// EnvMetadata is the write-once creation record for an environment.
// Informational only; nothing is keyed off it.
type EnvMetadata struct {
	ScriptPath string `json:"script_path"`
	CreatedAt  string `json:"created_at"`
}

// FingerprintPath returns the fingerprint file path for an environment.
func FingerprintPath(location string) string {
	return filepath.Join(location, fingerprintFileName)
}

// MetadataPath returns the metadata file path for an environment.
func MetadataPath(location string) string {
	return filepath.Join(location, metadataFileName)
}

// LoadFingerprint reads the fingerprint record for an environment.
// A missing record is normal: it returns an empty set and ok=false.
// A record that exists but cannot be parsed is corruption and surfaces
// as an error — silently resetting it could mask a source-kind change
// and let a stale environment be reused.
func LoadFingerprint(location string) (DependencySet, SourceKind, bool, error) {
	data, err := os.ReadFile(FingerprintPath(location))
	if err != nil {
		if os.IsNotExist(err) {
			return make(DependencySet), "", false, nil
		}
		return nil, "", false, fmt.Errorf("reading fingerprint: %w", err)
	}

	var fp Fingerprint
	if err := json.Unmarshal(data, &fp); err != nil {
		return nil, "", false, fmt.Errorf("corrupt fingerprint record at %s: %w", FingerprintPath(location), err)
	}
	if !fp.DependencySource.valid() {
		return nil, "", false, fmt.Errorf("corrupt fingerprint record at %s: unknown dependency_source %q",
			FingerprintPath(location), fp.DependencySource)
	}
	return NewDependencySet(fp.Dependencies...), fp.DependencySource, true, nil
}

// SaveFingerprint persists the current dependency set and kind.
// Written via temp-file-then-rename so a half-written file is never
// mistaken for a valid record.
func SaveFingerprint(location string, set DependencySet, kind SourceKind) error {
	fp := Fingerprint{
		Dependencies:     set.Sorted(),
		DependencySource: kind,
	}
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling fingerprint: %w", err)
	}
	data = append(data, '\n')

	path := FingerprintPath(location)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing fingerprint: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving fingerprint: %w", err)
	}
	return nil
}

// WriteMetadata records the creating script and timestamp for a newly
// created environment. Called once per creation; an existing record is
// left untouched so created_at survives in-place reinstalls.
func WriteMetadata(location, scriptPath string) error {
	path := MetadataPath(location)
	if fileExists(path) {
		return nil
	}
	meta := EnvMetadata{
		ScriptPath: scriptPath,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	return nil
}

// ReadMetadata reads an environment's creation record.
// Returns nil, nil if the file does not exist.
func ReadMetadata(location string) (*EnvMetadata, error) {
	data, err := os.ReadFile(MetadataPath(location))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	var meta EnvMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}
	return &meta, nil
}
