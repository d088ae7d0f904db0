package shotfit

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	iphonePortrait  = NewRect(3024, 4032)
	iphoneLandscape = NewRect(4032, 3024)
	tallScreenshot  = NewRect(1170, 2532)
	squareShot      = NewRect(1000, 1000)
)

func testSizing(t *testing.T) *Sizing {
	sz, err := NewSizing(NewRect(1284, 2778))
	require.NoError(t, err)
	return sz
}

// Geometry tests

func TestScaleToHeightTruncates(t *testing.T) {
	sz := testSizing(t)
	result := sz.scaleToHeight(iphonePortrait)
	assert.Equal(t, NewRect(2083, 2778), result)
}

func TestScaleToHeightClampsWidth(t *testing.T) {
	sz := testSizing(t)
	result := sz.scaleToHeight(NewRect(1, 10000))
	assert.Equal(t, NewRect(1, 2778), result)
}

func TestPlanPortraitCrop(t *testing.T) {
	sz := testSizing(t)
	p := sz.CalcPlan(iphonePortrait)
	assert.False(t, p.Rotate)
	assert.Equal(t, NewRect(2083, 2778), p.Resize)
	assert.Equal(t, NewRect(1284, 2778), p.Crop)
	assert.Equal(t, &image.Point{399, 0}, p.CropOrigin)
	assert.Nil(t, p.PadOrigin)
	assert.Equal(t, NewRect(1284, 2778), p.Canvas)
}

func TestPlanLandscapeRotates(t *testing.T) {
	sz := testSizing(t)
	p := sz.CalcPlan(iphoneLandscape)
	assert.True(t, p.Rotate)
	assert.Equal(t, iphonePortrait, p.Oriented)

	// once rotated it's the same as the portrait case
	portrait := sz.CalcPlan(iphonePortrait)
	assert.Equal(t, portrait.Resize, p.Resize)
	assert.Equal(t, portrait.Crop, p.Crop)
	assert.Equal(t, portrait.CropOrigin, p.CropOrigin)
}

func TestPlanSquareIsNotRotated(t *testing.T) {
	sz := testSizing(t)
	p := sz.CalcPlan(squareShot)
	assert.False(t, p.Rotate)
	assert.Equal(t, NewRect(2778, 2778), p.Resize)
	assert.Equal(t, &image.Point{747, 0}, p.CropOrigin)
}

func TestPlanNarrowPads(t *testing.T) {
	sz := testSizing(t)
	p := sz.CalcPlan(tallScreenshot)
	// 1170 * 2778 / 2532 = 1283.66..
	assert.Equal(t, NewRect(1283, 2778), p.Resize)
	assert.Nil(t, p.Crop)
	assert.Equal(t, &image.Point{0, 0}, p.PadOrigin)

	p = sz.CalcPlan(NewRect(500, 2778))
	assert.Nil(t, p.Resize)
	assert.Equal(t, &image.Point{392, 0}, p.PadOrigin)
}

func TestPlanOddExcessFloorsLeft(t *testing.T) {
	sz, err := NewSizing(NewRect(100, 200))
	require.NoError(t, err)

	p := sz.CalcPlan(NewRect(103, 200))
	require.NotNil(t, p.CropOrigin)
	assert.Equal(t, 1, p.CropOrigin.X)
	assert.Equal(t, 2, 103-100-p.CropOrigin.X)

	p = sz.CalcPlan(NewRect(97, 200))
	require.NotNil(t, p.PadOrigin)
	assert.Equal(t, 1, p.PadOrigin.X)
	assert.Equal(t, 2, 100-97-p.PadOrigin.X)
}

func TestPlanFixedPoint(t *testing.T) {
	sz := testSizing(t)
	p := sz.CalcPlan(NewRect(1284, 2778))
	assert.False(t, p.Rotate)
	assert.Nil(t, p.Resize)
	assert.Nil(t, p.Crop)
	assert.Nil(t, p.PadOrigin)
	assert.Equal(t, "canvas=1284x2778", p.String())
}

func TestPlanString(t *testing.T) {
	sz := testSizing(t)
	p := sz.CalcPlan(iphoneLandscape)
	assert.Equal(t, "rotate resize=2083x2778 crop=1284x2778+399 canvas=1284x2778", p.String())
}

// Target tests

func TestNewSizingRejectsNonPositive(t *testing.T) {
	_, err := NewSizing(NewRect(0, 2778))
	assert.True(t, errors.Is(err, ErrInvalidTarget))

	_, err = NewSizing(nil)
	assert.True(t, errors.Is(err, ErrInvalidTarget))
}

func TestDefaultSizing(t *testing.T) {
	sz := DefaultSizing()
	assert.Equal(t, NewRect(DefaultTargetWidth, DefaultTargetHeight), sz.Size)
	assert.Equal(t, "png", sz.Format)
}

func TestParseTargetPresets(t *testing.T) {
	r, err := ParseTarget("6.7")
	assert.NoError(t, err)
	assert.Equal(t, NewRect(1284, 2778), r)

	r, err = ParseTarget("6.5")
	assert.NoError(t, err)
	assert.Equal(t, NewRect(1242, 2688), r)

	// presets are copied
	r.Width = 1
	assert.Equal(t, 1242, Presets["6.5"].Width)
}

func TestParseTargetExplicit(t *testing.T) {
	r, err := ParseTarget("1290x2796")
	assert.NoError(t, err)
	assert.Equal(t, NewRect(1290, 2796), r)

	r, err = ParseTarget("1290X2796")
	assert.NoError(t, err)
	assert.Equal(t, NewRect(1290, 2796), r)
}

func TestParseTargetInvalid(t *testing.T) {
	for _, q := range []string{"", "x", "1290x", "abcx100", "100x100x100", "-1x100"} {
		_, err := ParseTarget(q)
		assert.True(t, errors.Is(err, ErrInvalidTarget), q)
	}
}

func TestRectFromQuery(t *testing.T) {
	r, err := NewRectFromQuery("300x")
	assert.NoError(t, err)
	assert.Equal(t, NewRect(300, 0), r)

	_, err = NewRectFromQuery("300")
	assert.Error(t, err)
}

func TestDecodeError(t *testing.T) {
	err := error(NewDecodeError("IMG_0001.PNG", nil))
	assert.True(t, errors.Is(err, ErrInvalidImageData))
	assert.Contains(t, err.Error(), "IMG_0001.PNG")

	var de *DecodeError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "IMG_0001.PNG", de.Path)
}
