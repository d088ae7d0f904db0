//go:build imagick

package imagick

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pressly/shotfit"
	"gopkg.in/gographics/imagick.v3/imagick"
)

var (
	ErrEngineReleased = errors.New("imagick: engine has been released.")
	ErrEngineFailure  = errors.New("imagick: unable to request a MagickWand")
)

const letterbox = "black"

type Engine struct {
	tmpDir string
}

func (ng *Engine) Version() string {
	v, _ := imagick.GetVersion()
	return v
}

func (ng *Engine) Initialize(tmpDir string) error {
	if tmpDir != "" {
		if err := os.MkdirAll(tmpDir, 0755); err != nil {
			return err
		}
		ng.tmpDir = tmpDir
		os.Setenv("MAGICK_TMPDIR", tmpDir)
		ng.SweepTmpDir()
	}
	imagick.Initialize()
	return nil
}

func (ng *Engine) Terminate() {
	imagick.Terminate()
	ng.SweepTmpDir()
}

func (ng *Engine) SweepTmpDir() error {
	if ng.tmpDir == "" {
		return nil
	}
	err := filepath.Walk(
		ng.tmpDir,
		func(path string, info os.FileInfo, err error) error {
			if ng.tmpDir == path {
				return nil // skip the root
			}
			if strings.Contains(filepath.Base(path), "magick") {
				if err = os.Remove(path); err != nil {
					return errors.Wrapf(err, "failed to sweep engine tmpdir %s", path)
				}
			}
			return nil
		},
	)
	return err
}

func (ng *Engine) LoadFile(filename string, srcFormat ...string) (shotfit.Image, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ng.LoadBlob(b, srcFormat...)
}

func (ng *Engine) LoadBlob(b []byte, srcFormat ...string) (shotfit.Image, error) {
	if len(b) == 0 {
		return nil, shotfit.ErrInvalidImageData
	}

	mw := imagick.NewMagickWand()
	if !mw.IsVerified() {
		return nil, ErrEngineFailure
	}

	// Offer a hint to the decoder of the file format
	if len(srcFormat) > 0 {
		f := srcFormat[0]
		if f != "" {
			mw.SetFormat(f)
		}
	}

	err := mw.ReadImageBlob(b)
	if err != nil {
		mw.Destroy()
		return nil, errors.Wrap(shotfit.ErrInvalidImageData, err.Error())
	}

	im := &Image{mw: mw, data: b}
	if err := im.sync(); err != nil {
		mw.Destroy()
		return nil, err
	}

	return im, nil
}

func (ng *Engine) GetImageInfo(b []byte, srcFormat ...string) (*shotfit.ImageInfo, error) {
	if len(b) == 0 {
		return nil, shotfit.ErrInvalidImageData
	}

	mw := imagick.NewMagickWand()
	defer mw.Destroy()

	if !mw.IsVerified() {
		return nil, ErrEngineFailure
	}

	err := mw.PingImageBlob(b)
	if err != nil {
		return nil, errors.Wrap(shotfit.ErrInvalidImageData, err.Error())
	}

	w, h := int(mw.GetImageWidth()), int(mw.GetImageHeight())
	ar := float64(int(shotfit.NewRect(w, h).AspectRatio()*10000)) / 10000

	imfo := &shotfit.ImageInfo{
		Format: normalizeFormat(mw.GetImageFormat()), Width: w, Height: h,
		AspectRatio: ar, ContentLength: len(b),
	}

	return imfo, nil
}

type Image struct {
	mw *imagick.MagickWand

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

func (i *Image) SetFormat(format string) error {
	if i.Released() {
		return ErrEngineReleased
	}
	if err := i.mw.SetImageFormat(format); err != nil {
		return err
	}
	if err := i.sync(); err != nil {
		return err
	}
	return nil
}

func (i *Image) Released() bool {
	return i.mw == nil
}

func (i *Image) Release() {
	if i.mw != nil {
		i.mw.Destroy()
		i.mw = nil
	}
}

func (i *Image) SizeIt(sz *shotfit.Sizing) error {
	if i.Released() {
		return ErrEngineReleased
	}

	// Screenshots are single frame, anything after the first is dropped
	i.mw.SetFirstIterator()
	plan := sz.CalcPlan(shotfit.NewRect(int(i.mw.GetImageWidth()), int(i.mw.GetImageHeight())))

	bg := imagick.NewPixelWand()
	defer bg.Destroy()
	bg.SetColor(letterbox)

	if plan.Rotate {
		// negative degrees turn counter-clockwise
		if err := i.mw.RotateImage(bg, -90); err != nil {
			return err
		}
		i.mw.ResetImagePage("")
	}

	if plan.Resize != nil {
		err := i.mw.ResizeImage(uint(plan.Resize.Width), uint(plan.Resize.Height), imagick.FILTER_LANCZOS)
		if err != nil {
			return err
		}
		i.mw.ResetImagePage("")
	}

	if plan.Crop != nil {
		err := i.mw.CropImage(uint(plan.Crop.Width), uint(plan.Crop.Height), plan.CropOrigin.X, plan.CropOrigin.Y)
		if err != nil {
			return err
		}
		i.mw.ResetImagePage("")
	}

	if err := i.mw.SetImageBackgroundColor(bg); err != nil {
		return err
	}

	if plan.PadOrigin != nil {
		// extent geometry is relative to the image, so the offset is negated
		err := i.mw.ExtentImage(uint(plan.Canvas.Width), uint(plan.Canvas.Height), -plan.PadOrigin.X, -plan.PadOrigin.Y)
		if err != nil {
			return err
		}
	}

	if err := i.mw.SetImageAlphaChannel(imagick.ALPHA_CHANNEL_REMOVE); err != nil {
		return err
	}

	format := sz.Format
	if format == "" {
		format = shotfit.DefaultFormat
	}
	return i.SetFormat(format)
}

func (i *Image) WriteToFile(fn string) error {
	return os.WriteFile(fn, i.Data(), 0664)
}

func (i *Image) sync() error {
	if i.Released() {
		return ErrEngineReleased
	}

	i.data = i.mw.GetImageBlob()
	i.width = int(i.mw.GetImageWidth())
	i.height = int(i.mw.GetImageHeight())
	i.format = normalizeFormat(i.mw.GetImageFormat())

	return nil
}

func normalizeFormat(format string) string {
	format = strings.ToLower(format)
	if format == "jpeg" {
		format = "jpg"
	}
	return format
}
