package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	titleHeight   = 30
	sectionHeight = 25
	labelOffset   = 15
)

// Widget is anything the panel can stack.
type Widget interface {
	Update(in Input)
	Draw(screen *ebiten.Image)
	Text() string
	Height() float64
	place(x, y float64)
}

func (r *Rect) place(x, y float64) { r.X, r.Y = x, y }

type section struct {
	title string
	start int // index of the first widget
}

// Panel lays widgets out top to bottom under section headers and scrolls
// them with the mouse wheel.
type Panel struct {
	Rect
	Title  string
	Scroll float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	widgets  []Widget
	sections []section
}

func NewPanel(x, y, width, height float64, title string) *Panel {
	return &Panel{
		Rect:        Rect{X: x, Y: y, W: width, H: height},
		Title:       title,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, section{title: title, start: len(p.widgets)})
}

func (p *Panel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(0, 0, p.W-20, label, min, max, value)
	p.add(s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(0, 0, label, value)
	p.add(c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(0, 0, p.W-20, label, onClick)
	p.add(b)
	return b
}

func (p *Panel) add(w Widget) {
	p.widgets = append(p.widgets, w)
	p.layout()
}

// ContentHeight is the height of everything in the panel, unscrolled.
func (p *Panel) ContentHeight() float64 {
	h := titleHeight + float64(len(p.sections))*sectionHeight
	for _, w := range p.widgets {
		h += w.Height()
	}
	return h
}

// layout positions every widget for the current scroll offset.
func (p *Panel) layout() {
	y := p.Y + titleHeight - p.Scroll
	next := 0
	for i, w := range p.widgets {
		for next < len(p.sections) && p.sections[next].start == i {
			y += sectionHeight
			next++
		}
		w.place(p.X+10, y+labelOffset)
		y += w.Height()
	}
}

func (p *Panel) Update(in Input) {
	if in.WheelY != 0 && p.Contains(in.X, in.Y) {
		maxScroll := max(0, p.ContentHeight()-p.H+40)
		p.Scroll = max(0, min(maxScroll, p.Scroll-in.WheelY*20))
		p.layout()
	}
	for _, w := range p.widgets {
		w.Update(in)
	}
}

func (p *Panel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), p.BGColor, true)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + titleHeight - p.Scroll
	next := 0
	for i, w := range p.widgets {
		for next < len(p.sections) && p.sections[next].start == i {
			if p.visible(y) {
				vector.FillRect(screen, float32(p.X+5), float32(y), float32(p.W-10), 20,
					color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
				ebitenutil.DebugPrintAt(screen, p.sections[next].title, int(p.X+10), int(y+5))
			}
			y += sectionHeight
			next++
		}
		if p.visible(y) {
			if t := w.Text(); t != "" {
				ebitenutil.DebugPrintAt(screen, t, int(p.X+10), int(y))
			}
			w.Draw(screen)
		}
		y += w.Height()
	}
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y+titleHeight-sectionHeight && y <= p.Y+p.H-sectionHeight
}
