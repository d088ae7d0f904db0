package shotfit

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultTargetWidth  = 1284
	DefaultTargetHeight = 2778

	DefaultFormat = "png"
)

// Presets maps App Store screenshot slots to their portrait pixel size.
var Presets = map[string]*Rect{
	"6.7": {1284, 2778}, // iPhone 12/13/14 Pro Max
	"6.5": {1242, 2688}, // iPhone XS Max, 11 Pro Max
}

type Sizing struct {
	Size   *Rect // The target canvas, always the output size
	Format string
}

func NewSizing(target *Rect) (*Sizing, error) {
	if target == nil {
		return nil, errors.WithStack(ErrInvalidTarget)
	}
	if target.Width <= 0 || target.Height <= 0 {
		return nil, errors.Wrap(ErrInvalidTarget, target.ToString())
	}
	return &Sizing{Size: NewRect(target.Width, target.Height), Format: DefaultFormat}, nil
}

func DefaultSizing() *Sizing {
	return &Sizing{
		Size:   NewRect(DefaultTargetWidth, DefaultTargetHeight),
		Format: DefaultFormat,
	}
}

// Plan is the geometry needed to fit one source image onto the target canvas.
// Resize is nil when the scale ratio is 1. At most one of Crop and PadOrigin
// is set.
type Plan struct {
	Rotate     bool
	Oriented   *Rect
	Resize     *Rect
	Crop       *Rect
	CropOrigin *image.Point
	PadOrigin  *image.Point
	Canvas     *Rect
}

func (sz *Sizing) CalcPlan(srcSize *Rect) *Plan {
	p := &Plan{Canvas: NewRect(sz.Size.Width, sz.Size.Height)}

	p.Oriented = NewRect(srcSize.Width, srcSize.Height)
	if srcSize.IsLandscape() {
		p.Rotate = true
		p.Oriented = NewRect(srcSize.Height, srcSize.Width)
	}

	rr := sz.scaleToHeight(p.Oriented)
	if !rr.Equal(p.Oriented) {
		p.Resize = rr
	}

	switch {
	case rr.Width > sz.Size.Width:
		p.Crop = NewRect(sz.Size.Width, rr.Height)
		p.CropOrigin = &image.Point{(rr.Width - sz.Size.Width) / 2, 0}
	case rr.Width < sz.Size.Width:
		p.PadOrigin = &image.Point{(sz.Size.Width - rr.Width) / 2, 0}
	}
	return p
}

// Returns the target height and a width scaled by the same ratio, truncated.
func (sz *Sizing) scaleToHeight(srcSize *Rect) *Rect {
	r := &Rect{Height: sz.Size.Height}
	if srcSize.Height <= 0 {
		r.Width = 1
		return r
	}
	r.Width = srcSize.Width * sz.Size.Height / srcSize.Height
	if r.Width < 1 {
		r.Width = 1
	}
	return r
}

func (p *Plan) String() string {
	s := []string{}
	if p.Rotate {
		s = append(s, "rotate")
	}
	if p.Resize != nil {
		s = append(s, "resize="+p.Resize.ToString())
	}
	if p.Crop != nil {
		s = append(s, fmt.Sprintf("crop=%s+%d", p.Crop.ToString(), p.CropOrigin.X))
	}
	if p.PadOrigin != nil {
		s = append(s, fmt.Sprintf("pad=+%d", p.PadOrigin.X))
	}
	s = append(s, "canvas="+p.Canvas.ToString())
	return strings.Join(s, " ")
}

// ParseTarget accepts a preset name ("6.7") or an explicit "WxH" size.
func ParseTarget(q string) (*Rect, error) {
	if r, ok := Presets[q]; ok {
		return NewRect(r.Width, r.Height), nil
	}
	r, err := NewRectFromQuery(q)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidTarget, err.Error())
	}
	if r.Width <= 0 || r.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidTarget, "%q", q)
	}
	return r, nil
}

type Rect struct {
	Width, Height int
}

func NewRect(w, h int) *Rect {
	return &Rect{Width: w, Height: h}
}

func NewRectFromQuery(q string) (*Rect, error) {
	if q == "" {
		return NewRect(0, 0), nil
	}

	wh := strings.Split(strings.ToLower(q), "x")
	if len(wh) != 2 {
		return nil, fmt.Errorf("invalid rect query: %s", q)
	}

	var w, h int
	var err error

	if wh[0] != "" {
		w, err = strconv.Atoi(strings.TrimSpace(wh[0]))
		if err != nil {
			return nil, err
		}
	}
	if wh[1] != "" {
		h, err = strconv.Atoi(strings.TrimSpace(wh[1]))
		if err != nil {
			return nil, err
		}
	}
	return &Rect{w, h}, nil
}

func (r *Rect) AspectRatio() float64 {
	return float64(r.Width) / float64(r.Height)
}

func (r *Rect) IsLandscape() bool {
	return r.Width > r.Height
}

func (r *Rect) Equal(other *Rect) bool {
	return (r.Width == other.Width) && (r.Height == other.Height)
}

func (r *Rect) ToString() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r *Rect) String() string {
	return r.ToString()
}
