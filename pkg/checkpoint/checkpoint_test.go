package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"jiraminer/pkg/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	return NewStore(path, logger.NewTestLogger())
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	progress := store.Load([]string{"SPARK", "KAFKA"})

	if len(progress) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(progress))
	}
	for _, project := range []string{"SPARK", "KAFKA"} {
		marker := progress[project]
		if marker.Completed || marker.Offset != 0 {
			t.Errorf("Expected fresh marker for %s, got %v", project, marker)
		}
	}
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	progress := Progress{
		"SPARK": At(250),
		"KAFKA": Done(),
	}
	if err := store.Save(progress); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	loaded := store.Load([]string{"SPARK", "KAFKA", "HADOOP"})

	if loaded["SPARK"].Offset != 250 || loaded["SPARK"].Completed {
		t.Errorf("Expected SPARK at 250, got %v", loaded["SPARK"])
	}
	if !loaded["KAFKA"].Completed {
		t.Errorf("Expected KAFKA completed, got %v", loaded["KAFKA"])
	}
	// Newly configured project initialized to zero.
	if loaded["HADOOP"].Offset != 0 || loaded["HADOOP"].Completed {
		t.Errorf("Expected fresh HADOOP marker, got %v", loaded["HADOOP"])
	}
}

func TestStoreLoadCorruptFile(t *testing.T) {
	store := newTestStore(t)

	if err := os.WriteFile(store.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	progress := store.Load([]string{"SPARK"})

	if progress["SPARK"].Offset != 0 || progress["SPARK"].Completed {
		t.Errorf("Expected fresh marker after corruption, got %v", progress["SPARK"])
	}
}

func TestStoreSaveLeavesNoTempFile(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Progress{"SPARK": At(1)}); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}
}

func TestMarkerFileFormat(t *testing.T) {
	data, err := json.Marshal(Progress{"SPARK": At(120), "KAFKA": Done()})
	if err != nil {
		t.Fatalf("Failed to marshal progress: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal progress: %v", err)
	}

	if raw["SPARK"] != float64(120) {
		t.Errorf("Expected offset serialized as bare number, got %v", raw["SPARK"])
	}
	if raw["KAFKA"] != "COMPLETED" {
		t.Errorf("Expected terminal marker serialized as COMPLETED, got %v", raw["KAFKA"])
	}
}

func TestMarkerUnmarshalRejectsGarbage(t *testing.T) {
	cases := []string{`"DONE"`, `-5`, `1.5`, `{}`}
	for _, tc := range cases {
		var m Marker
		if err := json.Unmarshal([]byte(tc), &m); err == nil {
			t.Errorf("Expected error unmarshaling %s", tc)
		}
	}
}
