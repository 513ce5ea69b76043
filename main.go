package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"unknwon.dev/clog/v2"

	"github.com/voiceboard/modelfetch/internal/app"
)

// modelsDirName is resolved relative to the executable, so the models
// land next to the binary wherever it is installed.
const modelsDirName = "models"

func main() {
	_ = clog.NewConsole(0, clog.ConsoleConfig{
		Level: clog.LevelInfo,
	})
	defer clog.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println()
		fmt.Println("Download cancelled by user")
		clog.Stop()
		os.Exit(1)
	}()

	folder, err := modelsDir()
	if err != nil {
		fail(err)
	}

	fmt.Println("VoiceBoard Model Builder")
	fmt.Println("==================================================")
	fmt.Printf("Models directory: %s\n", folder)
	fmt.Println()

	result, err := app.NewApp(app.Options{Folder: folder}).Execute()
	if err != nil {
		fail(err)
	}

	fmt.Println("Summary:")
	fmt.Printf("   Models downloaded: %d\n", result.Count)
	fmt.Printf("   Total size: ~%.1f MB\n", result.TotalMB)
	fmt.Printf("   Location: %s\n", folder)
	fmt.Println()

	if result.Count == 0 {
		fmt.Println("No models were successfully downloaded")
		clog.Stop()
		os.Exit(1)
	}

	fmt.Println("Model setup complete!")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("   - iOS: Models will be bundled with the app")
	fmt.Println("   - Android: Models will be downloaded on first run")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("   1. Run setup_whisper.sh to build native libraries")
	fmt.Println("   2. Build and test your apps")
}

func fail(err error) {
	fmt.Printf("Error: %s\n", err)
	clog.Stop()
	os.Exit(1)
}

func modelsDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), modelsDirName), nil
}
