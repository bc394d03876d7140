package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/empsent-cli/internal/utils"
	"github.com/google/uuid"
)

const (
	// FileName is the manifest file written at the root of an output directory.
	FileName = "manifest.json"
)

// Manifest describes one report run persisted next to its outputs.
type Manifest struct {
	RunID          string     `json:"run_id"`
	Input          string     `json:"input"`
	RowsRead       int        `json:"rows_read"`
	Records        int        `json:"records"`
	Duplicates     int        `json:"duplicates"`
	DroppedMissing int        `json:"dropped_missing"`
	Artifacts      []Artifact `json:"artifacts"`
	Skipped        []Skipped  `json:"skipped"`
	Warnings       []string   `json:"warnings"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Not serialized: output directory holding manifest.json
	rootDir string `json:"-"`
}

// New constructs an in-memory manifest for a run. Call Save() to persist.
func New(input, rootDir string) *Manifest {
	now := time.Now()
	return &Manifest{
		RunID:     uuid.NewString(),
		Input:     input,
		Artifacts: []Artifact{},
		Skipped:   []Skipped{},
		Warnings:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   rootDir,
	}
}

// Load reads manifest.json from the provided output directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the output directory.
func (m *Manifest) RootDir() string { return m.rootDir }

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, FileName), data)
}

// AddFile stats a written file and records it as an artifact.
func (m *Manifest) AddFile(path, kind, title string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat artifact: %w", err)
	}
	rel := path
	if m.rootDir != "" {
		if r, err := filepath.Rel(m.rootDir, path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}
	a := Artifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Path:      rel,
		Bytes:     info.Size(),
		CreatedAt: info.ModTime(),
	}
	m.Add(a)
	return a, nil
}

// Add appends an already described artifact.
func (m *Manifest) Add(a Artifact) {
	m.Artifacts = append(m.Artifacts, a)
	m.UpdatedAt = time.Now()
}

// Skip records a chart that was not produced.
func (m *Manifest) Skip(chart, reason string) {
	m.Skipped = append(m.Skipped, Skipped{Chart: chart, Reason: reason})
	m.UpdatedAt = time.Now()
}

// Charts returns the chart artifacts in the order they were added.
func (m *Manifest) Charts() []Artifact {
	var out []Artifact
	for _, a := range m.Artifacts {
		if a.Kind == KindChart {
			out = append(out, a)
		}
	}
	return out
}

// Artifact kinds.
const (
	KindChart    = "chart"
	KindSummary  = "summary"
	KindWorkbook = "workbook"
)
