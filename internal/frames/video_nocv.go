//go:build !gocv

package frames

import "fmt"

// NewVideoSource needs OpenCV; rebuild with -tags gocv to enable it.
func NewVideoSource(path string, scale float64) (Source, error) {
	return nil, fmt.Errorf("video support is not available in this build (rebuild with -tags gocv)")
}
