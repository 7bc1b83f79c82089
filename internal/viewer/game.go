// Package viewer renders the flocks with ebiten and drives the tick actor
// once per frame.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock/internal/config"
	"github.com/lao-tseu-is-alive/go-flock/internal/driver"
	"github.com/lao-tseu-is-alive/go-flock/pkg/ui"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const panelWidth = 260

type Game struct {
	ctx        context.Context
	pid        *actor.PID
	snapshotCh <-chan *driver.Snapshot
	lastState  *driver.Snapshot
	logger     log.Logger
	cfg        *config.Config

	// UI Controls
	panel           *ui.Panel
	widgetVisual    *ui.Slider
	widgetProtected *ui.Slider
	widgetTurn      *ui.Slider
	widgetMinSpeed  *ui.Slider
	widgetRanges    *ui.Checkbox
	widgetPanel     *ui.Checkbox
	widgetPause     *ui.Button
	paused          bool

	white *ebiten.Image
	boids batch

	// Rolling average of the tick time reported by the driver, in ms
	tickAvg float64
}

func NewGame(ctx context.Context, cfg *config.Config, pid *actor.PID, snapshotCh <-chan *driver.Snapshot, logger log.Logger) *Game {
	g := &Game{
		ctx:        ctx,
		pid:        pid,
		snapshotCh: snapshotCh,
		lastState:  &driver.Snapshot{}, // Avoid nil pointer
		logger:     logger,
		cfg:        cfg,
	}

	g.panel = ui.NewPanel(10, 10, panelWidth, cfg.WorldHeight-20, "Flocks")
	g.panel.AddSection("Perception")
	g.widgetVisual = g.panel.AddSlider("Visual Range", 10, 150, cfg.VisualRange)
	g.widgetProtected = g.panel.AddSlider("Protected Range", 0, 60, cfg.ProtectedRange)
	g.panel.AddSection("Steering")
	g.widgetTurn = g.panel.AddSlider("Turn Factor", 0.05, 1.0, cfg.TurnFactor)
	g.widgetMinSpeed = g.panel.AddSlider("Min Speed", 0, cfg.MaxSpeed, cfg.MinSpeed)
	g.panel.AddSection("View")
	g.widgetRanges = g.panel.AddCheckbox("Show protected range", false)
	g.widgetPanel = g.panel.AddCheckbox("Show panel", true)
	g.widgetPause = g.panel.AddButton("Pause / Resume (P)", g.togglePause)
	g.widgetVisual.Format = "%.0f"
	g.widgetProtected.Format = "%.0f"
	return g
}

func (g *Game) Update() error {
	// 1. UI
	if g.widgetPanel.Value {
		g.panel.Update(ui.PollInput())
	} else if ebiten.IsKeyPressed(ebiten.KeyTab) {
		g.widgetPanel.Value = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.togglePause()
	}
	g.sendParams()

	// 2. Latest state, non-blocking
	select {
	case snap := <-g.snapshotCh:
		g.lastState = snap
		g.tickAvg = g.tickAvg*0.95 + float64(snap.Duration.Microseconds())/1000.0*0.05
	default:
	}

	// 3. Trigger the next step
	if !g.paused {
		budget := time.Second / time.Duration(max(1, ebiten.TPS()))
		if err := actor.Tell(g.ctx, g.pid, durationpb.New(budget)); err != nil {
			return fmt.Errorf("tick: %w", err)
		}
	}
	return nil
}

func (g *Game) togglePause() {
	g.paused = !g.paused
}

// sendParams forwards the slider values when one of them moved.
func (g *Game) sendParams() {
	changed := false
	for _, s := range []*ui.Slider{g.widgetVisual, g.widgetProtected, g.widgetTurn, g.widgetMinSpeed} {
		if s.Changed() {
			changed = true
		}
	}
	if !changed {
		return
	}
	params, err := paramsFor(g.widgetVisual.Value, g.widgetProtected.Value, g.widgetTurn.Value, g.widgetMinSpeed.Value)
	if err != nil {
		g.logger.Warnf("cannot encode parameters: %v", err)
		return
	}
	if err := actor.Tell(g.ctx, g.pid, params); err != nil {
		g.logger.Warnf("cannot send parameters: %v", err)
	}
}

func paramsFor(visual, protected, turn, minSpeed float64) (*structpb.Struct, error) {
	// the protected range never exceeds the visual range
	return structpb.NewStruct(map[string]any{
		driver.ParamVisualRange:    visual,
		driver.ParamProtectedRange: min(protected, visual),
		driver.ParamTurnFactor:     turn,
		driver.ParamMinSpeed:       minSpeed,
	})
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 10, G: 10, B: 30, A: 255})
	if g.white == nil {
		g.white = ebiten.NewImage(3, 3)
		g.white.Fill(color.White)
	}

	if g.widgetRanges.Value {
		r := float32(g.widgetProtected.Value)
		for _, b := range g.lastState.Boids {
			c := flockColor(b.Flock)
			c.A = 60
			vector.StrokeCircle(screen, float32(b.Position.X), float32(b.Position.Y), r, 1, c, true)
		}
	}
	drawBoids(screen, g.white, &g.boids, g.lastState.Boids)

	if g.widgetPanel.Value {
		g.panel.Draw(screen)
	}
	ebitenutil.DebugPrintAt(screen, g.overlay(), int(g.cfg.WorldWidth)-230, 10)
}

func (g *Game) overlay() string {
	s := g.lastState
	state := "running"
	if g.paused {
		state = "paused"
	}
	return fmt.Sprintf("TPS: %0.1f  FPS: %0.1f\nTick: %d (%s)\nStep: %.2fms avg\nBoids: %d  Members: %v\nStale: %d  Failed: %d",
		ebiten.ActualTPS(), ebiten.ActualFPS(),
		s.Tick, state, g.tickAvg,
		len(s.Boids), s.Members,
		s.Stats.Stale, s.Stats.Failed)
}

func (g *Game) Layout(int, int) (int, int) {
	return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight)
}
