//go:build gocv

package frames

import (
	"fmt"
	"image"
	"io"

	"gocv.io/x/gocv"
)

// VideoSource decodes frames from a video file through OpenCV.
type VideoSource struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	gray    gocv.Mat
	scale   float64
}

// NewVideoSource opens the video at path.
func NewVideoSource(path string, scale float64) (Source, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open video: %w", err)
	}
	return &VideoSource{
		capture: capture,
		frame:   gocv.NewMat(),
		gray:    gocv.NewMat(),
		scale:   scale,
	}, nil
}

func (s *VideoSource) Next() (*image.Gray, error) {
	if !s.capture.Read(&s.frame) || s.frame.Empty() {
		return nil, io.EOF
	}
	gocv.CvtColor(s.frame, &s.gray, gocv.ColorBGRToGray)
	img, err := s.gray.ToImage()
	if err != nil {
		return nil, fmt.Errorf("could not convert video frame: %w", err)
	}
	return ToGray(img, s.scale), nil
}

func (s *VideoSource) Close() error {
	s.frame.Close()
	s.gray.Close()
	return s.capture.Close()
}
