package core

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/voiceboard/modelfetch/internal/misc"
)

// chunkBytes is the copy buffer size; progress is reported once per chunk.
const chunkBytes = 32 * 1024

var log = misc.NewLogger("Fetch", 2)

type HTTPDownload struct {
	client *resty.Client
}

func NewDownloader() Downloader {
	return &HTTPDownload{
		client: resty.New().
			SetDoNotParseResponse(true).
			SetTimeout(30 * time.Minute),
	}
}

// Download issues a single streaming GET and writes the body to toFilePath.
// A failed or partial transfer leaves no file behind. No retry.
func (h HTTPDownload) Download(URL string, toFilePath string, progress ProgressFunc) (filesize int64, err error) {
	resp, err := h.client.R().Get(URL)
	if err != nil {
		log.Error("Download %s failed: %v.", URL, err)
		return 0, errors.Wrapf(ErrNetwork, "GET [%s] failed: %v", URL, err)
	}

	body := resp.RawBody()
	defer func() {
		_ = body.Close()
	}()

	if resp.StatusCode() != http.StatusOK {
		log.Warn("Download %s failed %d:%s.", URL, resp.StatusCode(), resp.Status())
		return 0, errors.Wrapf(ErrNetwork, "http error %d:%s", resp.StatusCode(), resp.Status())
	}

	return h.saveBodyToDisk(body, toFilePath, resp.RawResponse.ContentLength, progress)
}

func (h HTTPDownload) saveBodyToDisk(body io.Reader, path string, total int64, progress ProgressFunc) (filesize int64, err error) {
	// Create dir if not exists
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return 0, errors.Wrapf(ErrFilesystem, "Create folder [%s] failed: %v", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0666)
	if err != nil {
		return 0, errors.Wrapf(ErrFilesystem, "Create file [%s] failed: %v", path, err)
	}

	discard := func() {
		_ = f.Close()
		_ = os.Remove(path)
	}

	buf := make([]byte, chunkBytes)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				discard()
				return 0, errors.Wrapf(ErrFilesystem, "Saving model [%s] failed: %v", path, werr)
			}
			filesize += int64(n)
			if progress != nil {
				progress(filesize, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			discard()
			return 0, errors.Wrapf(ErrNetwork, "Reading body for [%s] failed: %v", path, rerr)
		}
	}

	if err = f.Close(); err != nil {
		_ = os.Remove(path)
		return 0, errors.Wrapf(ErrFilesystem, "Close file [%s] failed: %v", path, err)
	}

	return filesize, nil
}
