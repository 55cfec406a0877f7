// Package frames supplies ordered grayscale frames to the motion engine.
package frames

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source yields frames in capture order. Next returns io.EOF once the
// source is exhausted.
type Source interface {
	Next() (*image.Gray, error)
	Close() error
}

// Open returns the source of the given kind ("dir" or "video") reading from
// path. Frames are converted with ToGray(frame, scale).
func Open(kind, path string, scale float64) (Source, error) {
	switch strings.ToLower(kind) {
	case "dir", "":
		return NewDirSource(path, scale)
	case "video":
		return NewVideoSource(path, scale)
	default:
		return nil, fmt.Errorf("unsupported source: %s", kind)
	}
}

// DirSource reads the image files of a directory in lexical file name order.
type DirSource struct {
	files []string
	next  int
	scale float64
}

// NewDirSource lists the images of dir. Files with other extensions and
// subdirectories are ignored.
func NewDirSource(dir string, scale float64) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return &DirSource{files: files, scale: scale}, nil
}

// Len is the number of frames the source holds.
func (s *DirSource) Len() int {
	return len(s.files)
}

func (s *DirSource) Next() (*image.Gray, error) {
	if s.next >= len(s.files) {
		return nil, io.EOF
	}
	path := s.files[s.next]
	s.next++

	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img, s.scale), nil
}

func (s *DirSource) Close() error {
	s.next = len(s.files)
	return nil
}
