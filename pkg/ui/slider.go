package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider edits a float in [Min, Max] by dragging across its bar.
type Slider struct {
	Rect
	Label    string
	Value    float64
	Min, Max float64
	Format   string // printf verb for the value, "%.2f" when empty

	changed bool
}

func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Rect:  Rect{X: x, Y: y, W: width, H: 12},
		Label: label,
		Min:   min,
		Max:   max,
	}
	s.Set(value)
	s.changed = false
	return s
}

// Set clamps v to the slider range.
func (s *Slider) Set(v float64) {
	v = max(s.Min, min(s.Max, v))
	if v != s.Value {
		s.Value = v
		s.changed = true
	}
}

// Changed reports whether the value moved since the last call.
func (s *Slider) Changed() bool {
	c := s.changed
	s.changed = false
	return c
}

func (s *Slider) Ratio() float64 {
	if s.Max == s.Min {
		return 0
	}
	return (s.Value - s.Min) / (s.Max - s.Min)
}

func (s *Slider) Update(in Input) {
	if in.Pressed && s.Contains(in.X, in.Y) && s.W > 0 {
		s.Set(s.Min + (in.X-s.X)/s.W*(s.Max-s.Min))
	}
}

func (s *Slider) Text() string {
	f := s.Format
	if f == "" {
		f = "%.2f"
	}
	return fmt.Sprintf("%s: "+f, s.Label, s.Value)
}

func (s *Slider) Height() float64 {
	return s.H + 25 // bar + label
}

func (s *Slider) Draw(screen *ebiten.Image) {
	// Background
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)
	// Value bar
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*s.Ratio()), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}
