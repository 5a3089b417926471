// File: internal/items/items.go
// ItemTask discovery. One enumeration of the photo folder per run; tasks are
// not persisted across runs.
package items

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ItemTask is one photo to be listed.
type ItemTask struct {
	// ProductName is the working label for the item, refined per-item by the
	// flow's classifier.
	ProductName string
	// ImagePath is the absolute (or run-relative) path to the photo.
	ImagePath string
}

// imageExtensions are the only files that become tasks.
var imageExtensions = map[string]bool{
	".jpg": true,
	".png": true,
}

// Discover enumerates dir once and returns one task per image file, in
// stable filename order. Non-image files are ignored. The initial product
// name is the filename stem; a classifier may replace it later.
func Discover(dir string) ([]ItemTask, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image folder %q: %w", dir, err)
	}

	var tasks []ItemTask
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !imageExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		tasks = append(tasks, ItemTask{
			ProductName: strings.TrimSuffix(name, filepath.Ext(name)),
			ImagePath:   filepath.Join(dir, name),
		})
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ImagePath < tasks[j].ImagePath
	})
	return tasks, nil
}

// Classifier labels the product shown in a photo. The real implementation is
// an external collaborator (an image classification model); the built-in
// variant just reuses the filename stem.
type Classifier interface {
	Classify(ctx context.Context, imagePath string) (string, error)
}

// FilenameClassifier derives the product label from the image filename stem,
// with separators normalized to spaces.
type FilenameClassifier struct{}

func (FilenameClassifier) Classify(_ context.Context, imagePath string) (string, error) {
	base := filepath.Base(imagePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		return "", fmt.Errorf("no product name derivable from %q", imagePath)
	}
	return stem, nil
}
