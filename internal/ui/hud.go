//go:build ebiten

package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"cellpotts/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	panelBG    = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	titleFG    = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	labelFG    = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	valueFG    = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	buttonBG   = color.RGBA{R: 54, G: 56, B: 64, A: 255}
	buttonOff  = color.RGBA{R: 32, G: 34, B: 40, A: 255}
	traceBG    = color.RGBA{R: 28, G: 30, B: 36, A: 255}
	traceFG    = color.RGBA{R: 110, G: 200, B: 140, A: 255}
	disabledFG = color.RGBA{R: 120, G: 120, B: 130, A: 255}
)

// HUD is the side panel of the viewer. It shows the step counter, a
// stepper per float control (the temperature for CPM scenarios), a trace
// of the Metropolis acceptance ratio and the remaining snapshot groups.
// Shift-clicking a stepper moves it ten steps at once.
type HUD struct {
	sim    core.Sim
	setter core.FloatParameterSetter
	width  int
	panel  *ebiten.Image
	pixel  *ebiten.Image

	offsetX  int
	snapshot core.ParameterSnapshot
	rows     []stepperRow
	accept   *series
}

type stepperRow struct {
	stepper
	value       float64
	ok          bool
	minus, plus image.Rectangle
}

// NewHUD builds the panel for sim; a zero width disables it.
func NewHUD(sim core.Sim, width int) *HUD {
	h := &HUD{sim: sim, width: max(width, 0), accept: newSeries(traceSamples)}
	if h.width > 0 {
		h.pixel = ebiten.NewImage(1, 1)
		h.pixel.Fill(color.White)
	}
	h.setter, _ = sim.(core.FloatParameterSetter)
	if p, ok := sim.(core.ParameterControlsProvider); ok {
		for _, ctrl := range p.ParameterControls() {
			if ctrl.Type != core.ParamTypeFloat {
				continue
			}
			h.rows = append(h.rows, stepperRow{stepper: stepper{ctrl: ctrl}})
		}
	}
	for i := range h.rows {
		y := rowsTop + i*rowHeight + (rowHeight-buttonSize)/2
		r := &h.rows[i]
		r.plus = image.Rect(h.width-panelPadding-buttonSize, y, h.width-panelPadding, y+buttonSize)
		r.minus = r.plus.Sub(image.Pt(buttonSize+buttonGap, 0))
	}
	return h
}

// Update pulls a fresh snapshot and applies clicks that land on the panel,
// which starts at panelOffsetX in screen space.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.offsetX = panelOffsetX
	p, ok := h.sim.(core.ParameterProvider)
	if !ok {
		return
	}
	h.snapshot = p.Parameters()
	if v, ok := snapshotFloat(h.snapshot, "acceptance"); ok {
		h.accept.push(v)
	}
	for i := range h.rows {
		r := &h.rows[i]
		r.value, r.ok = snapshotFloat(h.snapshot, r.ctrl.Key)
	}
	h.handleClick()
}

func (h *HUD) handleClick() {
	if h.setter == nil || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	pt := image.Pt(mx-h.offsetX, my)
	coarse := ebiten.IsKeyPressed(ebiten.KeyShift)
	for i := range h.rows {
		r := &h.rows[i]
		dir := 0
		switch {
		case !r.ok:
			continue
		case pt.In(r.minus):
			dir = -1
		case pt.In(r.plus):
			dir = 1
		default:
			continue
		}
		if v, changed := r.next(r.value, dir, coarse); changed && h.setter.SetFloatParameter(r.ctrl.Key, v) {
			r.value = v
		}
		return
	}
}

// Draw paints the panel to the right of the grid.
func (h *HUD) Draw(screen *ebiten.Image, offsetX int, scale int) {
	if h == nil || h.width <= 0 {
		return
	}
	height := h.sim.Size().H * max(scale, 1)
	if height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(panelBG)

	face := basicfont.Face7x13
	text.Draw(h.panel, h.title(), face, panelPadding, panelPadding+titleBaseline, titleFG)
	if len(h.rows) == 0 {
		text.Draw(h.panel, "No adjustable parameters", face, panelPadding, rowsTop+labelBaseline, labelFG)
	}
	for i := range h.rows {
		h.drawRow(&h.rows[i], rowsTop+i*rowHeight)
	}
	y := rowsTop + max(len(h.rows), 1)*rowHeight
	y = h.drawTrace(y)
	h.drawSnapshot(y+sectionGap, height)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

// title reads "<Scenario> | MCS n" once a snapshot carries the step count.
func (h *HUD) title() string {
	name := "CPM"
	if h.sim != nil && h.sim.Name() != "" {
		name = strings.ToUpper(h.sim.Name()[:1]) + h.sim.Name()[1:]
	}
	if p, ok := h.snapshot.Lookup("mcs"); ok {
		return fmt.Sprintf("%s | MCS %s", name, p.Value)
	}
	return name
}

func (h *HUD) drawRow(r *stepperRow, top int) {
	face := basicfont.Face7x13
	text.Draw(h.panel, r.ctrl.Label, face, panelPadding, top+labelBaseline, valueFG)
	value, fg := "--", labelFG
	if r.ok {
		value, fg = r.format(r.value), valueFG
	}
	w := text.BoundString(face, value).Dx()
	text.Draw(h.panel, value, face, r.minus.Min.X-buttonGap-w, top+labelBaseline, fg)

	_, down := r.next(r.value, -1, false)
	_, up := r.next(r.value, 1, false)
	live := r.ok && h.setter != nil
	h.drawButton(r.minus, "-", live && down)
	h.drawButton(r.plus, "+", live && up)
}

// drawTrace plots the acceptance history as columns scaled to [0, 1] and
// returns the y below it.
func (h *HUD) drawTrace(top int) int {
	face := basicfont.Face7x13
	vals := h.accept.values()
	label := "Acceptance"
	if n := len(vals); n > 0 {
		label = fmt.Sprintf("Acceptance %.3f", vals[n-1])
	}
	text.Draw(h.panel, label, face, panelPadding, top+labelBaseline-8, labelFG)
	box := image.Rect(panelPadding, top+traceLabel, h.width-panelPadding, top+traceLabel+traceHeight)
	h.fillRect(box, traceBG)
	if len(vals) > 0 && box.Dx() > 0 {
		colW := max(box.Dx()/traceSamples, 1)
		x := box.Max.X - len(vals)*colW
		for _, v := range vals {
			bar := int(min(max(v, 0), 1) * float64(traceHeight))
			if x >= box.Min.X && bar > 0 {
				h.fillRect(image.Rect(x, box.Max.Y-bar, x+colW, box.Max.Y), traceFG)
			}
			x += colW
		}
	}
	return box.Max.Y
}

// drawSnapshot lists the snapshot groups, skipping values already shown
// above, until the panel runs out of room.
func (h *HUD) drawSnapshot(y, height int) {
	face := basicfont.Face7x13
	shown := map[string]bool{"mcs": true, "acceptance": true}
	for _, r := range h.rows {
		shown[r.ctrl.Key] = true
	}
	for _, g := range h.snapshot.Groups {
		if y+snapshotLine > height {
			return
		}
		text.Draw(h.panel, g.Name, face, panelPadding, y, titleFG)
		y += snapshotLine
		for _, p := range g.Params {
			if shown[p.Key] {
				continue
			}
			if y+snapshotLine > height {
				return
			}
			text.Draw(h.panel, p.Label, face, panelPadding+8, y, labelFG)
			w := text.BoundString(face, p.Value).Dx()
			text.Draw(h.panel, p.Value, face, h.width-panelPadding-w, y, valueFG)
			y += snapshotLine
		}
		y += snapshotLine / 2
	}
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg, fg := buttonBG, valueFG
	if !enabled {
		bg, fg = buttonOff, disabledFG
	}
	h.fillRect(rect, bg)
	face := basicfont.Face7x13
	b := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-b.Dx())/2
	y := rect.Min.Y + (rect.Dy()-b.Dy())/2 + b.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}

func (h *HUD) fillRect(rect image.Rectangle, c color.RGBA) {
	if h.pixel == nil || rect.Empty() {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(c)
	h.panel.DrawImage(h.pixel, op)
}

const (
	panelPadding  = 12
	titleBaseline = 18
	rowsTop       = panelPadding + titleBaseline + 14
	rowHeight     = 36
	labelBaseline = 24
	buttonSize    = 24
	buttonGap     = 6

	traceSamples = 120
	traceLabel   = 22
	traceHeight  = 40

	sectionGap   = 24
	snapshotLine = 16
)
