package catalog

import "fmt"

// Quantization is the whisper.cpp quantization level of every
// distributed model file.
const Quantization = "q5_1"

// Format is the manifest format tag for the distributed files.
const Format = "ggml-" + Quantization

// Model describes one downloadable pre-quantized whisper model.
type Model struct {
	id          string
	originalURL string
	distURL     string
	sizeMB      float64
	description string
}

func (m Model) ID() string {
	return m.id
}

// OriginalURL returns the source of the unquantized OpenAI checkpoint
// the distributed file was built from. Kept for provenance, never fetched.
func (m Model) OriginalURL() string {
	return m.originalURL
}

// DistURL returns the download location of the pre-quantized GGML file.
func (m Model) DistURL() string {
	return m.distURL
}

func (m Model) SizeMB() float64 {
	return m.sizeMB
}

func (m Model) Description() string {
	return m.description
}

// Filename returns the fixed on-disk name for the model file.
func (m Model) Filename() string {
	return fmt.Sprintf("ggml-%s-%s.bin", m.id, Quantization)
}

// New creates a catalog entry. Exposed so tests can point entries at
// local servers; the shipped catalog lives in this package.
func New(id, originalURL, distURL string, sizeMB float64, description string) *Model {
	return &Model{
		id:          id,
		originalURL: originalURL,
		distURL:     distURL,
		sizeMB:      sizeMB,
		description: description,
	}
}

var models = []*Model{
	New("tiny.en",
		"https://openaipublic.azureedge.net/main/whisper/models/d3dd57d32accea0b295c96e26691aa14d8822fac7d9d27d5dc00b4ca2826dd03/tiny.en.pt",
		"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.en-q5_1.bin",
		39,
		"Fastest, lowest accuracy - good for testing"),
	New("base.en",
		"https://openaipublic.azureedge.net/main/whisper/models/25a8566e1d0c1e2231d1c762132cd20e0f96a85d16145c3a00adf5d1ac670ead/base.en.pt",
		"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en-q5_1.bin",
		148,
		"Balanced speed and accuracy - recommended default"),
	New("small.en",
		"https://openaipublic.azureedge.net/main/whisper/models/f953ad0fd29cacd07d5a9eda5624af0f6bcf2258be67c92b79389873d91e0872/small.en.pt",
		"https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.en-q5_1.bin",
		244,
		"Slower, higher accuracy - for powerful devices"),
}

var idToModel = func() map[string]*Model {
	m := make(map[string]*Model, len(models))
	for _, model := range models {
		m[model.id] = model
	}
	return m
}()

// All returns the catalog entries in their defined order.
func All() []*Model {
	r := make([]*Model, len(models))
	copy(r, models)
	return r
}

// Get returns the model with the requested id.
// Returns nil if not found
func Get(id string) *Model {
	return idToModel[id]
}
