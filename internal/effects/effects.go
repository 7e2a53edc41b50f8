package effects

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/shapes2video/internal/shape"
)

// FrameInfo locates a frame inside its sample.
type FrameInfo struct {
	ID    int
	Index int
	Total int
}

// Effect post-processes a rendered frame in place.
type Effect interface {
	Apply(dst *image.RGBA, info FrameInfo) error
}

// None leaves frames untouched. Dataset runs use it.
type None struct{}

func (None) Apply(*image.RGBA, FrameInfo) error { return nil }

// DebugOverlay stamps the sample id as a QR code in the top-left corner and
// prints "id frame/total" along the bottom edge, so a clip can be traced
// back to its plan record by eye or by scanner.
type DebugOverlay struct {
	QRSize int

	lastID int
	qr     image.Image
}

func NewDebugOverlay() *DebugOverlay {
	return &DebugOverlay{QRSize: 48}
}

func (d *DebugOverlay) Apply(dst *image.RGBA, info FrameInfo) error {
	if d.qr == nil || d.lastID != info.ID {
		q, err := qrcode.New(strconv.Itoa(info.ID), qrcode.Low)
		if err != nil {
			return fmt.Errorf("qr for sample %d: %w", info.ID, err)
		}
		q.DisableBorder = true
		d.qr = q.Image(d.QRSize)
		d.lastID = info.ID
	}

	b := d.qr.Bounds()
	draw.Draw(dst, image.Rect(2, 2, 2+b.Dx(), 2+b.Dy()), d.qr, b.Min, draw.Src)

	label := fmt.Sprintf("%d %d/%d", info.ID, info.Index+1, info.Total)
	face := basicfont.Face7x13
	h := dst.Bounds().Dy()
	draw.Draw(dst, image.Rect(0, h-face.Height-2, dst.Bounds().Dx(), h),
		image.NewUniform(color.RGBA{A: 160}), image.Point{}, draw.Over)

	fd := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(4, h-4),
	}
	fd.DrawString(label)
	return nil
}

// NewEffect selects an effect by name; "" and "none" mean None.
func NewEffect(name string) (Effect, error) {
	switch name {
	case "", "none":
		return None{}, nil
	case "debug":
		return NewDebugOverlay(), nil
	}
	return nil, fmt.Errorf("%w: unknown effect %q", shape.ErrConfig, name)
}
