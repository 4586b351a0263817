package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFingerprint_Absent(t *testing.T) {
	dir := t.TempDir()
	set, kind, ok, err := LoadFingerprint(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("ok = true for absent record")
	}
	if kind != "" {
		t.Errorf("kind = %q, want empty", kind)
	}
	if len(set) != 0 {
		t.Errorf("set = %v, want empty", set.Sorted())
	}
}

func TestSaveLoadFingerprint_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	if err := SaveFingerprint(dir, NewDependencySet("requests", "flask"), SourceImports); err != nil {
		t.Fatalf("save: %v", err)
	}

	set, kind, ok, err := LoadFingerprint(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("ok = false after save")
	}
	if kind != SourceImports {
		t.Errorf("kind = %q, want %q", kind, SourceImports)
	}
	if !set.Equal(NewDependencySet("flask", "requests")) {
		t.Errorf("set = %v", set.Sorted())
	}
}

func TestSaveFingerprint_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	if err := SaveFingerprint(dir, NewDependencySet("requests"), SourceRequirements); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(FingerprintPath(dir) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
}

func TestLoadFingerprint_CorruptJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(FingerprintPath(dir), []byte("{half-writ"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := LoadFingerprint(dir); err == nil {
		t.Fatal("expected error for corrupt record; it must surface, not reset")
	}
}

func TestLoadFingerprint_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	content := `{"dependencies": ["requests"], "dependency_source": "telepathy"}`
	if err := os.WriteFile(FingerprintPath(dir), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := LoadFingerprint(dir); err == nil {
		t.Fatal("expected error for unknown dependency_source")
	}
}

func TestWriteMetadata_WriteOnce(t *testing.T) {
	dir := t.TempDir()
	if err := WriteMetadata(dir, "/home/user/s.py"); err != nil {
		t.Fatalf("write: %v", err)
	}
	first, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if first == nil {
		t.Fatal("metadata missing after write")
	}
	if first.ScriptPath != "/home/user/s.py" {
		t.Errorf("script_path = %q", first.ScriptPath)
	}
	if first.CreatedAt == "" {
		t.Error("created_at empty")
	}

	// A second write must not disturb the creation record.
	if err := WriteMetadata(dir, "/other/script.py"); err != nil {
		t.Fatalf("second write: %v", err)
	}
	second, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("reread: %v", err)
	}
	if second.ScriptPath != first.ScriptPath || second.CreatedAt != first.CreatedAt {
		t.Errorf("metadata changed on second write: %+v vs %+v", second, first)
	}
}

func TestReadMetadata_Absent(t *testing.T) {
	meta, err := ReadMetadata(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta != nil {
		t.Errorf("meta = %+v, want nil", meta)
	}
}
