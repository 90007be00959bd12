package library

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/filesystem"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/logging"
	"github.com/Ketengan-Diffusion/Haigaku-DatasetManager/internal/mediatypes"
)

// Scan lists the media files directly inside dir, sorted by file name, as
// absolute paths. Subdirectories, hidden files and files of unknown type
// are skipped.
func Scan(dir string) ([]string, error) {
	start := time.Now()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	entries, err := filesystem.ReadDirWithRetry(absDir, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, fmt.Errorf("read dataset directory: %w", err)
	}

	var paths []string
	skipped := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if !mediatypes.IsMedia(name) {
			skipped++
			continue
		}
		paths = append(paths, filepath.Join(absDir, name))
	}

	sort.Slice(paths, func(i, j int) bool {
		return strings.ToLower(filepath.Base(paths[i])) < strings.ToLower(filepath.Base(paths[j]))
	})

	logging.Debug("Scanned %s: %d media files, %d other files in %v", absDir, len(paths), skipped, time.Since(start))
	return paths, nil
}
