package scrollreel

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hud is a small overlay showing FPS, TPS and the scroll offset. It is drawn
// in screen space after the page, so it never scrolls.
type hud struct {
	img     *ebiten.Image
	elapsed float64
}

// update redraws the overlay roughly every half second.
func (h *hud) update(dt float64, s *Scroller) {
	if h.img == nil {
		// 120x48 is enough for three short lines of debug text.
		h.img = ebiten.NewImage(120, 48)
		h.elapsed = 0.5
	}
	h.elapsed += dt
	if h.elapsed < 0.5 {
		return
	}
	h.elapsed = 0

	h.img.Clear()
	// Semi-transparent background for readability
	h.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(h.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nY: %.0f",
		ebiten.ActualFPS(), ebiten.ActualTPS(), s.ScrollOffset()))
}

func (h *hud) draw(screen *ebiten.Image) {
	if h.img != nil {
		screen.DrawImage(h.img, nil)
	}
}
