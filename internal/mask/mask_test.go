package mask

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whiteRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func TestBBoxOfBlackSquare(t *testing.T) {
	img := whiteRGBA(40, 30)
	for y := 10; y <= 20; y++ {
		for x := 5; x <= 15; x++ {
			img.Set(x, y, color.Black)
		}
	}
	m := FromImage(img, DefaultThreshold)
	bb, err := m.BBox()
	require.NoError(t, err)
	assert.Equal(t, BBox{XMin: 5, XMax: 15, YMin: 10, YMax: 20}, bb)
	assert.Equal(t, 121, m.Count())
	assert.True(t, m.Foreground(5, 10))
	assert.False(t, m.Foreground(4, 10))
	assert.False(t, m.Foreground(-1, 100))
}

func TestBBoxStaysInsideRaster(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 7, 5))
	for i := range g.Pix {
		g.Pix[i] = 0xff
	}
	g.SetGray(0, 0, color.Gray{Y: 10})
	g.SetGray(6, 4, color.Gray{Y: 127})
	bb, err := FromImage(g, DefaultThreshold).BBox()
	require.NoError(t, err)
	assert.Equal(t, BBox{XMin: 0, XMax: 6, YMin: 0, YMax: 4}, bb)
	assert.GreaterOrEqual(t, bb.XMin, 0)
	assert.Less(t, bb.XMax, 7)
	assert.Less(t, bb.YMax, 5)
}

func TestThresholdBoundary(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.SetGray(0, 0, color.Gray{Y: 128})
	g.SetGray(1, 0, color.Gray{Y: 127})
	m := FromImage(g, DefaultThreshold)
	assert.False(t, m.Foreground(0, 0))
	assert.True(t, m.Foreground(1, 0))
}

func TestEmptyMask(t *testing.T) {
	_, err := FromImage(whiteRGBA(10, 10), DefaultThreshold).BBox()
	assert.ErrorIs(t, err, ErrEmptyMask)
}

func TestLoadPNG(t *testing.T) {
	img := whiteRGBA(8, 8)
	img.Set(3, 4, color.Black)
	p := filepath.Join(t.TempDir(), "m.png")
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	m, err := Load(p)
	require.NoError(t, err)
	bb, err := m.BBox()
	require.NoError(t, err)
	assert.Equal(t, BBox{XMin: 3, XMax: 3, YMin: 4, YMax: 4}, bb)
	assert.Zero(t, bb.Width())
}
