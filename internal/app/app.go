package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/voiceboard/modelfetch/api/catalog"
	"github.com/voiceboard/modelfetch/internal/core"
	"github.com/voiceboard/modelfetch/internal/manifest"
	"github.com/voiceboard/modelfetch/internal/misc"
	"github.com/voiceboard/modelfetch/internal/verify"
)

var log = misc.NewLogger("App", 2)

// progressStepBytes is how often transfer progress is logged.
const progressStepBytes int64 = 25 << 20

// Options configure a model fetch run.
type Options struct {
	// Folder is the models directory, created if absent.
	Folder string

	// Tolerance is the allowed fractional size deviation.
	// Zero means verify.DefaultTolerance.
	Tolerance float64

	// Models overrides the shipped catalog. Nil means catalog.All().
	Models []*catalog.Model
}

// App downloads the cataloged model files and writes the manifest.
type App struct {
	opt        Options
	downloader core.Downloader
}

// Result summarizes one run for the caller's exit policy and summary print.
type Result struct {
	ManifestPath string
	Count        int
	TotalMB      float64
}

// NewApp create an application instance by input options
func NewApp(opt Options) *App {
	if opt.Tolerance <= 0 {
		opt.Tolerance = verify.DefaultTolerance
	}
	if opt.Models == nil {
		opt.Models = catalog.All()
	}

	return &App{
		opt:        opt,
		downloader: core.NewDownloader(),
	}
}

// Execute processes every catalog entry in order, then persists the
// manifest built from whatever model files exist on disk.
// A per-model download failure is logged and skipped; only filesystem
// failures abort the run.
func (a *App) Execute() (*Result, error) {
	startTime := time.Now()

	if err := os.MkdirAll(a.opt.Folder, 0755); err != nil {
		log.Error("Create models folder (%s) failed: %v.", a.opt.Folder, err)
		return nil, errors.Wrap(err, "Create models folder ["+a.opt.Folder+"] failed")
	}

	for _, m := range a.opt.Models {
		if err := a.ensure(m); err != nil {
			return nil, err
		}
	}

	man := manifest.Build(a.opt.Folder, a.opt.Models)
	path, err := man.Save(a.opt.Folder)
	if err != nil {
		return nil, err
	}

	log.Info("Created model manifest: %s.", path)
	log.Info("Time cost: %v.", time.Since(startTime))

	return &Result{
		ManifestPath: path,
		Count:        man.Count(),
		TotalMB:      man.TotalMB(),
	}, nil
}

// ensure downloads one model unless a verified copy is already present.
// Returns an error only for fatal filesystem failures.
func (a *App) ensure(m *catalog.Model) error {
	path := filepath.Join(a.opt.Folder, m.Filename())

	if verify.SizeWithin(path, m.SizeMB(), a.opt.Tolerance) {
		log.Info("%s already exists and verified.", m.Filename())
		return nil
	}

	log.Info("Downloading %s (~%.0f MB): %s.", m.Filename(), m.SizeMB(), m.Description())
	_, err := a.downloader.Download(m.DistURL(), path, progressLogger(m.Filename()))
	if err != nil {
		if errors.Is(err, core.ErrFilesystem) {
			return errors.Wrap(err, "Failed to store model ["+m.ID()+"]")
		}
		log.Error("Failed to download [%s]: %v.", m.ID(), err)
		return nil
	}

	if verify.SizeWithin(path, m.SizeMB(), a.opt.Tolerance) {
		log.Info("%s downloaded and verified.", m.Filename())
	} else {
		// Off-size files are kept as-is, matching the skip check above.
		log.Warn("%s size verification failed.", m.Filename())
	}

	return nil
}

// progressLogger reports transfer progress every progressStepBytes.
func progressLogger(name string) core.ProgressFunc {
	next := progressStepBytes
	return func(transferred, total int64) {
		if transferred < next {
			return
		}
		next += progressStepBytes

		if total > 0 {
			log.Info("%s: %d/%d bytes (%.0f%%).", name, transferred, total,
				float64(transferred)*100/float64(total))
		} else {
			log.Info("%s: %d bytes.", name, transferred)
		}
	}
}
