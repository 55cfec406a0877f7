package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// SavePNG writes img to dir/name, creating dir if needed.
func SavePNG(dir, name string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)

	outFile, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create file %s: %w", path, err)
	}
	defer outFile.Close()

	if err := png.Encode(outFile, img); err != nil {
		return "", fmt.Errorf("could not encode png %s: %w", path, err)
	}
	return path, nil
}
