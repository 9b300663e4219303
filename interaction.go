package vr

import (
	"errors"
	"fmt"
	"github.com/Yeicor/sdfx-vr/internal"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
	"image/color"
	"strings"
)

var defaultFont = basicfont.Face7x13

// onUpdateInputs handles inputs
func (h *EbitenHost) onUpdateInputs() {
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		if err := h.session.ToggleFullscreen(); err != nil && !errors.Is(err, ErrFullscreenRejectedWithoutHMD) {
			h.session.logger.Println("Fullscreen toggle failed:", err)
		}
	}
	// Color
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		if sc, ok := h.session.Scene().(*Scene); ok {
			sc.ColorMode = (sc.ColorMode + 1) % 3
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		h.showStatus = !h.showStatus
	}
}

// drawUI draws the status messages, the tracked pose and the controls
func (h *EbitenHost) drawUI(screen *ebiten.Image) {
	if !h.showStatus {
		return
	}
	s := h.session
	var pose *Pose
	if s.Mode().Mode() == ModeStereo && s.Tracker().HasSensor() {
		lastPose := s.LastPose()
		pose = &lastPose
	}
	msg := statusText(s.LastStatus(), s.Mode().Mode(), screen.Bounds().Dx(), screen.Bounds().Dy(), ebiten.ActualTPS(), pose)
	drawDefaultTextWithShadow(screen, msg, 5, 5+12, color.RGBA{R: 255, A: 255})

	controls := "Fullscreen [F]\nColor [C]\nHide status [H]"
	boundString := text.BoundString(defaultFont, controls)
	drawDefaultTextWithShadow(screen, controls, 5, screen.Bounds().Dy()-boundString.Size().Y+10, color.RGBA{G: 255, A: 255})
}

// statusText is the overlay's top-left text. The tracked pose (if any) is listed whole, one line per field.
func statusText(status string, mode ViewMode, width, height int, tps float64, pose *Pose) string {
	msg := fmt.Sprintf("%s\n%s %dx%d (TPS: %0.2f)", status, mode, width, height, tps)
	if pose == nil {
		return msg
	}
	lastField := ""
	for i, part := range strings.Split(internal.FormatNumbers(*pose), "  ") {
		field, value, _ := strings.Cut(part, ".")
		if i == 0 || field != lastField {
			msg += "\n" + field + ": " + value
			lastField = field
		} else {
			msg += "  " + value
		}
	}
	return msg
}

func drawDefaultTextWithShadow(screen *ebiten.Image, msg string, x, y int, c color.Color) {
	text.Draw(screen, msg, defaultFont, x+1, y+1, color.RGBA{A: 255})
	text.Draw(screen, msg, defaultFont, x, y, c)
}
