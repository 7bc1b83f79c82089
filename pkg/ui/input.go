// Package ui holds the few immediate-mode widgets of the viewer: sliders,
// checkboxes and buttons stacked in a scrollable panel.
package ui

import "github.com/hajimehoshi/ebiten/v2"

// Input is the pointer state of one frame.
type Input struct {
	X, Y    float64
	Pressed bool    // left button held
	WheelY  float64 // vertical scroll delta
}

// PollInput reads the current ebiten pointer state.
func PollInput() Input {
	mx, my := ebiten.CursorPosition()
	_, dy := ebiten.Wheel()
	return Input{
		X:       float64(mx),
		Y:       float64(my),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		WheelY:  dy,
	}
}

// Rect is an axis-aligned screen rectangle.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// edge turns a held button into one press event per click.
type edge struct {
	held bool
}

func (e *edge) pressed(over, down bool) bool {
	if over && down {
		fire := !e.held
		e.held = true
		return fire
	}
	e.held = false
	return false
}
