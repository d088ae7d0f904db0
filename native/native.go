// Package native is a pure Go shotfit engine. Pixels are decoded with the
// standard image registry (plus bmp, tiff and webp), resampled with a
// Lanczos3 kernel and always re-encoded on output.
package native

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/pressly/shotfit"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrEngineReleased    = errors.New("native: image has been released")
	ErrUnsupportedFormat = errors.New("native: unsupported output format")
)

const jpegQuality = 95

type Engine struct{}

func (ng Engine) Version() string {
	return "native " + shotfit.VERSION + " (lanczos3)"
}

// Initialize is a no-op, the native engine keeps everything in memory.
func (ng Engine) Initialize(tmpDir string) error {
	return nil
}

func (ng Engine) Terminate() {}

func (ng Engine) LoadFile(filename string, srcFormat ...string) (shotfit.Image, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ng.LoadBlob(b, srcFormat...)
}

// LoadBlob decodes b. Formats are sniffed, so srcFormat is ignored.
func (ng Engine) LoadBlob(b []byte, srcFormat ...string) (shotfit.Image, error) {
	if len(b) == 0 {
		return nil, shotfit.ErrInvalidImageData
	}

	m, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(shotfit.ErrInvalidImageData, err.Error())
	}

	im := &Image{img: m, data: b, format: normalizeFormat(format)}
	im.sync()
	return im, nil
}

func (ng Engine) GetImageInfo(b []byte, srcFormat ...string) (*shotfit.ImageInfo, error) {
	if len(b) == 0 {
		return nil, shotfit.ErrInvalidImageData
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(shotfit.ErrInvalidImageData, err.Error())
	}

	w, h := cfg.Width, cfg.Height
	ar := float64(int(shotfit.NewRect(w, h).AspectRatio()*10000)) / 10000

	imfo := &shotfit.ImageInfo{
		Format: normalizeFormat(format), Width: w, Height: h,
		AspectRatio: ar, ContentLength: len(b),
	}
	return imfo, nil
}

type Image struct {
	img image.Image

	data   []byte
	width  int
	height int
	format string
}

func (i *Image) Data() []byte {
	return i.data
}

func (i *Image) Width() int {
	return i.width
}

func (i *Image) Height() int {
	return i.height
}

func (i *Image) Format() string {
	return i.format
}

// SetFormat re-encodes the current pixels. Only png and jpg can be written.
func (i *Image) SetFormat(format string) error {
	if i.Released() {
		return ErrEngineReleased
	}

	format = normalizeFormat(format)
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, i.img); err != nil {
			return errors.Wrap(err, "native: png encode")
		}
	case "jpg":
		if err := jpeg.Encode(&buf, i.img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return errors.Wrap(err, "native: jpeg encode")
		}
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "%q", format)
	}

	i.data = buf.Bytes()
	i.format = format
	i.sync()
	return nil
}

func (i *Image) Released() bool {
	return i.img == nil
}

func (i *Image) Release() {
	i.img = nil
}

// SizeIt fits the image onto the sizing canvas: landscape sources are turned
// counter-clockwise, scaled to the canvas height, then center cropped or
// letterboxed in black. The result is opaque.
func (i *Image) SizeIt(sz *shotfit.Sizing) error {
	if i.Released() {
		return ErrEngineReleased
	}

	plan := sz.CalcPlan(shotfit.NewRect(i.width, i.height))

	m := i.img
	if plan.Rotate {
		m = imaging.Rotate90(m)
	}
	if plan.Resize != nil {
		m = resize.Resize(uint(plan.Resize.Width), uint(plan.Resize.Height), m, resize.Lanczos3)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, plan.Canvas.Width, plan.Canvas.Height))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)

	b := m.Bounds()
	dr, sp := canvas.Bounds(), b.Min
	if plan.Crop != nil {
		sp = b.Min.Add(*plan.CropOrigin)
	}
	if plan.PadOrigin != nil {
		dr = image.Rectangle{Min: *plan.PadOrigin, Max: plan.PadOrigin.Add(b.Size())}
	}
	draw.Draw(canvas, dr, m, sp, draw.Over)

	i.img = canvas

	format := sz.Format
	if format == "" {
		format = shotfit.DefaultFormat
	}
	return i.SetFormat(format)
}

func (i *Image) WriteToFile(fn string) error {
	return os.WriteFile(fn, i.Data(), 0664)
}

func (i *Image) sync() {
	if i.img == nil {
		return
	}
	b := i.img.Bounds()
	i.width, i.height = b.Dx(), b.Dy()
}

func normalizeFormat(format string) string {
	format = strings.ToLower(format)
	if format == "jpeg" {
		format = "jpg"
	}
	return format
}
