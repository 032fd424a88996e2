package curriculum

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DetectsManifestChange(t *testing.T) {
	dir := writeCurriculum(t, map[string]string{ManifestFile: testManifest})

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(testManifest+"\n# edited\n"), 0o644); err != nil {
		t.Fatalf("rewrite manifest: %v", err)
	}

	select {
	case change := <-w.Changes:
		if filepath.Base(change.File) != ManifestFile {
			t.Errorf("change.File = %q, want %s", change.File, ManifestFile)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := writeCurriculum(t, map[string]string{ManifestFile: testManifest})

	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change for %s", change.File)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestIsCurriculumFile(t *testing.T) {
	t.Parallel()
	tests := map[string]bool{
		"/x/curriculum.toml": true,
		"/x/04-pitch.md":     true,
		"/x/other.toml":      false,
		"/x/readme.txt":      false,
	}
	for name, want := range tests {
		if got := isCurriculumFile(name); got != want {
			t.Errorf("isCurriculumFile(%q) = %v, want %v", name, got, want)
		}
	}
}
