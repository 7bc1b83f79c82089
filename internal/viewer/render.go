package viewer

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock/internal/driver"
	"github.com/lao-tseu-is-alive/go-flock/pkg/geometry"
)

// maxBatch keeps the vertex indices of one DrawTriangles call in uint16 range.
const maxBatch = 65535 / 3

var palette = []color.RGBA{
	{R: 100, G: 200, B: 255, A: 255},
	{R: 255, G: 120, B: 90, A: 255},
	{R: 140, G: 230, B: 120, A: 255},
	{R: 240, G: 210, B: 90, A: 255},
	{R: 200, G: 130, B: 240, A: 255},
	{R: 90, G: 230, B: 210, A: 255},
}

func flockColor(i int) color.RGBA {
	return palette[i%len(palette)]
}

// triangle returns the tip, right and left corners of the arrow drawn for a
// boid, pointing along its velocity.
func triangle(b driver.BoidView) [3]geometry.Vector2D {
	angle := b.Velocity.Angle()
	p := b.Position
	return [3]geometry.Vector2D{
		p.Add(geometry.NewVectorPolar(6, angle)),
		p.Add(geometry.NewVectorPolar(5, angle+2.5)),
		p.Add(geometry.NewVectorPolar(5, angle-2.5)),
	}
}

// batch accumulates boid triangles and flushes them in as few draw calls as
// the index type allows.
type batch struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

func (bt *batch) reset() {
	bt.vertices = bt.vertices[:0]
	bt.indices = bt.indices[:0]
}

func (bt *batch) full() bool {
	return len(bt.vertices)/3 >= maxBatch
}

func (bt *batch) add(b driver.BoidView) {
	c := flockColor(b.Flock)
	r, g, bl := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255
	base := uint16(len(bt.vertices))
	for _, v := range triangle(b) {
		bt.vertices = append(bt.vertices, ebiten.Vertex{
			DstX: float32(v.X), DstY: float32(v.Y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: g, ColorB: bl, ColorA: 1,
		})
	}
	bt.indices = append(bt.indices, base, base+1, base+2)
}

func (bt *batch) flush(screen, src *ebiten.Image) {
	if len(bt.indices) > 0 {
		screen.DrawTriangles(bt.vertices, bt.indices, src, &ebiten.DrawTrianglesOptions{})
	}
	bt.reset()
}

func drawBoids(screen, src *ebiten.Image, bt *batch, boids []driver.BoidView) {
	bt.reset()
	for _, b := range boids {
		if math.IsNaN(b.Position.X) || math.IsNaN(b.Position.Y) {
			continue
		}
		bt.add(b)
		if bt.full() {
			bt.flush(screen, src)
		}
	}
	bt.flush(screen, src)
}
