package krajcbiten

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/oliverbestmann/krajc"
)

type WindowConfig struct {
	Title         string
	Width         int
	Height        int
	DisableResize bool
}

// Runner returns a main loop that opens a window and executes one frame per
// ebiten tick. The window shows the timings of all schedules and systems
// if a TimingStats resource exists.
func Runner(win WindowConfig) krajc.RunRuntime {
	return func(ctx context.Context, rt *krajc.Runtime) error {
		if err := rt.Startup(); err != nil {
			return err
		}

		ebiten.SetWindowTitle(win.Title)
		ebiten.SetWindowSize(win.Width, win.Height)

		if !win.DisableResize {
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		}

		if fps := krajc.GetOrInit[krajc.TargetFps](rt); fps.Value > 0 {
			ebiten.SetTPS(int(fps.Value))
		}

		// returning ebiten.Termination from Update makes RunGame return nil
		return ebiten.RunGame(&game{ctx: ctx, runtime: rt})
	}
}

type game struct {
	ctx     context.Context
	runtime *krajc.Runtime

	lastUpdate time.Time
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	now := time.Now()

	var delta time.Duration
	if !g.lastUpdate.IsZero() {
		delta = now.Sub(g.lastUpdate)
	} else {
		delta = time.Second / time.Duration(ebiten.TPS())
	}

	g.lastUpdate = now

	return g.runtime.Frame(delta)
}

func (g *game) Draw(screen *ebiten.Image) {
	stats, ok := krajc.ResourceOf[krajc.TimingStats](g.runtime)
	if !ok {
		return
	}

	for row, line := range FormatTimings(stats, 250*time.Microsecond) {
		ebitenutil.DebugPrintAt(screen, line, 16, 16+16*row)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return outsideWidth, outsideHeight
}
