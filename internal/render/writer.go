package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielolaszy/jiragraph/internal/logging"
)

// Kinds selects which files a Writer produces.
type Kinds int

const (
	// KindAll writes both the .gv document and the image.
	KindAll Kinds = iota
	// KindGraphviz writes only the .gv document.
	KindGraphviz
	// KindImage writes only the image.
	KindImage
)

// Writer saves documents under an output directory: gv/<name>.gv for the
// document and <ext>/<name>.<ext> for the image.
type Writer struct {
	dir    string
	engine Engine
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, engine Engine) *Writer {
	return &Writer{dir: dir, engine: engine}
}

// Write saves the requested files and returns the paths that were written.
// Failures are logged and the failed file is left out of the result.
func (w *Writer) Write(ctx context.Context, name, document string, kinds Kinds) []string {
	var paths []string

	if kinds == KindAll || kinds == KindGraphviz {
		path := filepath.Join(w.dir, "gv", name+".gv")
		if err := writeFile(path, []byte(document)); err != nil {
			logging.Error("failed to create graph file", "path", path, "error", err)
		} else {
			paths = append(paths, path)
		}
	}

	if kinds == KindAll || kinds == KindImage {
		ext := w.engine.Extension()
		path := filepath.Join(w.dir, ext, name+"."+ext)
		image, err := w.engine.Render(ctx, document)
		if err == nil {
			err = writeFile(path, image)
		}
		if err != nil {
			logging.Error("failed to create image", "path", path, "error", err)
		} else {
			paths = append(paths, path)
		}
	}

	return paths
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
