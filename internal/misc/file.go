package misc

import "os"

// FileSize returns size of the regular file at path.
// The second return is false when the file is absent or is a directory.
func FileSize(path string) (int64, bool) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return 0, false
	}
	return fi.Size(), true
}
