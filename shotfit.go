package shotfit

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	VERSION = "1.0.0"
)

var (
	ErrInvalidImageData = errors.New("invalid image data")
	ErrInvalidTarget    = errors.New("invalid target size")
	ErrNoInputFound     = errors.New("no input files found")
)

type Engine interface {
	Version() string
	Initialize(tmpDir string) error
	Terminate()

	LoadFile(filename string, srcFormat ...string) (Image, error)
	LoadBlob(b []byte, srcFormat ...string) (Image, error)
	GetImageInfo(b []byte, srcFormat ...string) (*ImageInfo, error)
}

type Image interface {
	Data() []byte
	Width() int
	Height() int
	Format() string
	SetFormat(format string) error

	Release()
	Released() bool

	SizeIt(sizing *Sizing) error
	WriteToFile(string) error
}

type ImageInfo struct {
	Format        string  `json:"format"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	AspectRatio   float64 `json:"aspect_ratio"`
	ContentLength int     `json:"content_length"`
}

// DecodeError is returned when a source file can't be read as an image.
type DecodeError struct {
	Path string
	Err  error
}

func NewDecodeError(path string, err error) *DecodeError {
	if err == nil {
		err = ErrInvalidImageData
	}
	return &DecodeError{Path: path, Err: err}
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode %s: %s", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
