package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceboard/modelfetch/api/catalog"
	"github.com/voiceboard/modelfetch/internal/manifest"
)

const mb = 1 << 20

// modelServer serves fixed-size payloads under /<id>.bin and counts requests.
type modelServer struct {
	*httptest.Server
	requests atomic.Int64
	sizes    map[string]int64
}

func newModelServer(t *testing.T, sizes map[string]int64) *modelServer {
	t.Helper()

	s := &modelServer{sizes: sizes}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)

		size, ok := s.sizes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		_, _ = w.Write(make([]byte, size))
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *modelServer) catalog() []*catalog.Model {
	return []*catalog.Model{
		catalog.New("tiny.en", "", s.URL+"/tiny.en.bin", 1, "tiny test model"),
		catalog.New("base.en", "", s.URL+"/base.en.bin", 2, "base test model"),
		catalog.New("small.en", "", s.URL+"/small.en.bin", 3, "small test model"),
	}
}

func allSizes() map[string]int64 {
	return map[string]int64{
		"/tiny.en.bin":  1 * mb,
		"/base.en.bin":  2 * mb,
		"/small.en.bin": 3 * mb,
	}
}

func readManifest(t *testing.T, path string) manifest.Manifest {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var m manifest.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestExecuteDownloadsAllAndWritesManifest(t *testing.T) {
	s := newModelServer(t, allSizes())
	folder := filepath.Join(t.TempDir(), "models")

	result, err := NewApp(Options{Folder: folder, Models: s.catalog()}).Execute()
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.Equal(t, 6.0, result.TotalMB)
	assert.FileExists(t, filepath.Join(folder, "ggml-tiny.en-q5_1.bin"))
	assert.FileExists(t, filepath.Join(folder, "ggml-base.en-q5_1.bin"))
	assert.FileExists(t, filepath.Join(folder, "ggml-small.en-q5_1.bin"))

	m := readManifest(t, result.ManifestPath)
	assert.Len(t, m.Models, 3)
	assert.Equal(t, int64(2*mb), m.Models["base.en"].SizeBytes)
}

func TestExecuteIsIdempotent(t *testing.T) {
	s := newModelServer(t, allSizes())
	folder := filepath.Join(t.TempDir(), "models")
	opt := Options{Folder: folder, Models: s.catalog()}

	_, err := NewApp(opt).Execute()
	require.NoError(t, err)
	firstRun := s.requests.Load()
	assert.Equal(t, int64(3), firstRun)

	result, err := NewApp(opt).Execute()
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.Equal(t, firstRun, s.requests.Load(), "second run must not issue requests")
}

func TestExecuteContinuesPastSingleFailure(t *testing.T) {
	sizes := allSizes()
	delete(sizes, "/base.en.bin") // served as 404
	s := newModelServer(t, sizes)
	folder := filepath.Join(t.TempDir(), "models")

	result, err := NewApp(Options{Folder: folder, Models: s.catalog()}).Execute()
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.NoFileExists(t, filepath.Join(folder, "ggml-base.en-q5_1.bin"))

	m := readManifest(t, result.ManifestPath)
	assert.Contains(t, m.Models, "tiny.en")
	assert.NotContains(t, m.Models, "base.en")
	assert.Contains(t, m.Models, "small.en")
}

func TestExecuteAllFailuresYieldsEmptyManifest(t *testing.T) {
	s := newModelServer(t, map[string]int64{})
	folder := filepath.Join(t.TempDir(), "models")

	result, err := NewApp(Options{Folder: folder, Models: s.catalog()}).Execute()
	require.NoError(t, err)

	assert.Equal(t, 0, result.Count)
	assert.Equal(t, 0.0, result.TotalMB)
	assert.Len(t, readManifest(t, result.ManifestPath).Models, 0)
}

func TestExecuteRedownloadsUndersizedFile(t *testing.T) {
	s := newModelServer(t, allSizes())
	folder := filepath.Join(t.TempDir(), "models")
	require.NoError(t, os.MkdirAll(folder, 0755))

	// A zero-byte leftover must not pass the skip check.
	stale := filepath.Join(folder, "ggml-tiny.en-q5_1.bin")
	require.NoError(t, os.WriteFile(stale, nil, 0666))

	result, err := NewApp(Options{Folder: folder, Models: s.catalog()}).Execute()
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	size, err := os.Stat(stale)
	require.NoError(t, err)
	assert.Equal(t, int64(1*mb), size.Size())
}

func TestExecuteKeepsOffSizeDownload(t *testing.T) {
	// Server sends half the cataloged size; the file is kept anyway
	// and still lands in the manifest.
	s := newModelServer(t, map[string]int64{"/tiny.en.bin": mb / 2})
	folder := filepath.Join(t.TempDir(), "models")
	models := []*catalog.Model{
		catalog.New("tiny.en", "", s.URL+"/tiny.en.bin", 1, "tiny test model"),
	}

	result, err := NewApp(Options{Folder: folder, Models: models}).Execute()
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	m := readManifest(t, result.ManifestPath)
	assert.Equal(t, int64(mb/2), m.Models["tiny.en"].SizeBytes)
	assert.Equal(t, 0.5, m.Models["tiny.en"].SizeMB)
}
