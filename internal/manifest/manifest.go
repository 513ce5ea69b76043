package manifest

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/voiceboard/modelfetch/api/catalog"
	"github.com/voiceboard/modelfetch/internal/misc"
)

const (
	// FileName is the manifest file written into the models directory.
	FileName = "manifest.json"

	// Version is the manifest format version.
	Version = "1.0.0"
)

// Entry describes one model file present on disk.
type Entry struct {
	Filename    string  `json:"filename"`
	SizeBytes   int64   `json:"size_bytes"`
	SizeMB      float64 `json:"size_mb"`
	Description string  `json:"description"`
	Format      string  `json:"format"`
}

// Manifest summarizes the model files present after a run.
type Manifest struct {
	Models    map[string]Entry `json:"models"`
	CreatedAt time.Time        `json:"created_at"`
	Version   string           `json:"version"`
}

// Build scans folder for the given catalog models and records every file
// found on disk, whatever run produced it.
func Build(folder string, models []*catalog.Model) *Manifest {
	m := &Manifest{
		Models:    make(map[string]Entry, len(models)),
		CreatedAt: time.Now().UTC(),
		Version:   Version,
	}

	for _, model := range models {
		size, ok := misc.FileSize(filepath.Join(folder, model.Filename()))
		if !ok {
			continue
		}

		m.Models[model.ID()] = Entry{
			Filename:    model.Filename(),
			SizeBytes:   size,
			SizeMB:      RoundMB(size),
			Description: model.Description(),
			Format:      catalog.Format,
		}
	}

	return m
}

// RoundMB converts bytes to megabytes rounded to one decimal place.
func RoundMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1<<20)*10) / 10
}

func (m Manifest) Count() int {
	return len(m.Models)
}

// TotalMB sums the rounded sizes of all entries.
func (m Manifest) TotalMB() float64 {
	var total float64
	for _, e := range m.Models {
		total += e.SizeMB
	}
	return total
}

// Save writes the manifest into folder, replacing any previous manifest.
// Returns the written file path.
func (m Manifest) Save(folder string) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "Encode manifest failed")
	}

	path := filepath.Join(folder, FileName)
	if err = os.WriteFile(path, data, 0666); err != nil {
		return "", errors.Wrap(err, "Write manifest ["+path+"] failed")
	}

	return path, nil
}
