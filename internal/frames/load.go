package frames

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// imageExts lists the file extensions DirSource picks up.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
}

// loadImage opens and decodes an image, choosing the decoder from the file
// extension.
func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpeg", ".jpg":
		img, err = jpeg.Decode(file)
	case ".png":
		img, err = png.Decode(file)
	case ".bmp":
		img, err = bmp.Decode(file)
	case ".gif":
		img, err = gif.Decode(file)
	default:
		img, _, err = image.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return img, nil
}
