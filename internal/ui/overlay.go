//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"cellpotts/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Overlay draws optional visuals on top of the base simulation: the
// scenario field (key 1) and cell markers with their headings (key 2).
type Overlay struct {
	sim         core.Sim
	scale       int
	showField   bool
	showMarkers bool
	maskImg     *ebiten.Image
	maskBuf     []byte

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showField: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update allows the overlay to update internal state.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showField = !o.showField
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showMarkers = !o.showMarkers
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}

	if provider, ok := o.sim.(core.FieldProvider); ok && o.showField {
		total := size.W * size.H
		if o.maskImg == nil || o.maskImg.Bounds().Dx() != size.W || o.maskImg.Bounds().Dy() != size.H {
			o.maskImg = ebiten.NewImage(size.W, size.H)
			o.maskBuf = make([]byte, 4*total)
		} else if len(o.maskBuf) != 4*total {
			o.maskBuf = make([]byte, 4*total)
		}
		o.drawMask(screen, provider.FieldMask(), color.RGBA{R: 64, G: 164, B: 223, A: 0})
	}

	if provider, ok := o.sim.(core.MarkerProvider); ok && o.showMarkers {
		o.drawMarkers(screen, provider.Markers(), scale)
	}
}

func (o *Overlay) drawMarkers(screen *ebiten.Image, markers []core.Marker, scale int) {
	const (
		arrowCells = 6.0
		headAngle  = math.Pi / 6
	)
	dot := math.Max(float64(scale)*1.5, 2)
	thickness := math.Max(float64(scale)*0.6, 1)
	length := arrowCells * float64(scale)
	headLength := length * 0.35
	col := color.RGBA{R: 250, G: 240, B: 170, A: 230}

	for _, m := range markers {
		sx := (m.X + 0.5) * float64(scale)
		sy := (m.Y + 0.5) * float64(scale)
		o.drawPoint(screen, sx, sy, dot, col)

		speed := math.Hypot(m.DX, m.DY)
		if speed == 0 {
			continue
		}
		nx, ny := m.DX/speed, m.DY/speed
		tipX, tipY := sx+nx*length, sy+ny*length
		o.drawLine(screen, sx, sy, tipX, tipY, thickness, col)

		angle := math.Atan2(ny, nx)
		leftX := tipX - math.Cos(angle+headAngle)*headLength
		leftY := tipY - math.Sin(angle+headAngle)*headLength
		rightX := tipX - math.Cos(angle-headAngle)*headLength
		rightY := tipY - math.Sin(angle-headAngle)*headLength
		o.drawLine(screen, tipX, tipY, leftX, leftY, thickness*0.85, col)
		o.drawLine(screen, tipX, tipY, rightX, rightY, thickness*0.85, col)
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawMask(screen *ebiten.Image, mask []float32, tint color.RGBA) {
	size := o.sim.Size()
	total := size.W * size.H
	if len(mask) != total {
		return
	}
	const (
		maxAlpha      = 140.0
		glowBase      = 0.35
		glowRange     = 0.65
		intensityBias = 0.75
	)

	for i := 0; i < total; i++ {
		base := i * 4
		intensity := clamp01(float64(mask[i]))
		if intensity == 0 {
			o.maskBuf[base+0] = 0
			o.maskBuf[base+1] = 0
			o.maskBuf[base+2] = 0
			o.maskBuf[base+3] = 0
			continue
		}

		alpha := math.Round(maxAlpha * math.Pow(intensity, intensityBias))
		glow := glowBase + glowRange*math.Sqrt(intensity)

		// WritePixels expects premultiplied alpha.
		premul := glow * alpha / 255
		o.maskBuf[base+0] = scaleColorComponent(tint.R, premul)
		o.maskBuf[base+1] = scaleColorComponent(tint.G, premul)
		o.maskBuf[base+2] = scaleColorComponent(tint.B, premul)
		o.maskBuf[base+3] = uint8(alpha)
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.maskImg, op)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
