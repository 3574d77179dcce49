package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"

	"jiraminer/pkg/logger"
)

// completedSentinel is the terminal marker value in the checkpoint file
const completedSentinel = "COMPLETED"

// Marker is a project's resumable cursor: an issue offset, or the terminal
// state once every issue has been fetched.
type Marker struct {
	Offset    int
	Completed bool
}

// Done returns a terminal marker
func Done() Marker {
	return Marker{Completed: true}
}

// At returns a marker at the given offset
func At(offset int) Marker {
	return Marker{Offset: offset}
}

// MarshalJSON encodes the marker as a plain offset or the terminal sentinel,
// keeping the file format `{"SPARK": 120, "KAFKA": "COMPLETED"}`.
func (m Marker) MarshalJSON() ([]byte, error) {
	if m.Completed {
		return json.Marshal(completedSentinel)
	}
	return json.Marshal(m.Offset)
}

// UnmarshalJSON accepts either an integer offset or the terminal sentinel
func (m *Marker) UnmarshalJSON(data []byte) error {
	var offset int
	if err := json.Unmarshal(data, &offset); err == nil {
		if offset < 0 {
			return fmt.Errorf("negative offset %d", offset)
		}
		*m = Marker{Offset: offset}
		return nil
	}

	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil && sentinel == completedSentinel {
		*m = Marker{Completed: true}
		return nil
	}

	return fmt.Errorf("invalid progress marker: %s", string(data))
}

func (m Marker) String() string {
	if m.Completed {
		return completedSentinel
	}
	return fmt.Sprintf("%d", m.Offset)
}

// Progress maps project keys to their progress markers
type Progress map[string]Marker

// Store persists the progress snapshot for all projects
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore creates a checkpoint store backed by the given file
func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Store{path: path, logger: log}
}

// Path returns the checkpoint file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the checkpoint snapshot. A missing or corrupt file is never
// fatal: progress restarts from offset zero and a warning is logged. Every
// configured project absent from the file is initialized to offset zero.
func (s *Store) Load(projects []string) Progress {
	progress := make(Progress, len(projects))
	for _, project := range projects {
		progress[project] = Marker{}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("no checkpoint file found, starting fresh")
		} else {
			s.logger.WarnWithFields("failed to read checkpoint file, starting from scratch", map[string]interface{}{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return progress
	}

	var stored Progress
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.WarnWithFields("checkpoint file corrupted, starting from scratch", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return progress
	}

	for project, marker := range stored {
		progress[project] = marker
	}

	s.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"path":     s.path,
		"projects": len(progress),
	})

	return progress
}

// Save writes the full progress snapshot atomically: the snapshot goes to a
// temp file which is synced and renamed over the previous one, so a crash
// mid-write never corrupts the last valid checkpoint.
func (s *Store) Save(progress Progress) error {
	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(progress); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	s.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"path":     s.path,
		"projects": len(progress),
	})

	return nil
}
