package main

import (
	"image"
	"image/color"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/nesgo/core"
	"github.com/nesgo/core/internal/controller"
	"github.com/nesgo/core/internal/palette"
)

const sampleRate = 44100

// keymap binds keyboard keys to controller 1 buttons.
var keymap = map[ebiten.Key]controller.Button{
	ebiten.KeyZ:         controller.ButtonA,
	ebiten.KeyX:         controller.ButtonB,
	ebiten.KeyBackspace: controller.ButtonSelect,
	ebiten.KeyEnter:     controller.ButtonStart,
	ebiten.KeyUp:        controller.ButtonUp,
	ebiten.KeyDown:      controller.ButtonDown,
	ebiten.KeyLeft:      controller.ButtonLeft,
	ebiten.KeyRight:     controller.ButtonRight,
}

// game implements ebiten.Game, driving a nes.System one frame per Update
// call and blitting its palette-index framebuffer through the NTSC LUT.
type game struct {
	sys    *nes.System
	scale  int
	mute   bool
	frame  *ebiten.Image
	pixels *image.RGBA
	player *audio.Player
	stream *sampleStream
}

func newGame(sys *nes.System, scale int, mute bool) (*game, error) {
	g := &game{
		sys:    sys,
		scale:  scale,
		mute:   mute,
		frame:  ebiten.NewImage(256, 240),
		pixels: image.NewRGBA(image.Rect(0, 0, 256, 240)),
	}

	if !mute {
		ctx := audio.NewContext(sampleRate)
		g.stream = newSampleStream(sys)
		player, err := ctx.NewPlayer(g.stream)
		if err != nil {
			return nil, err
		}
		player.Play()
		g.player = player
	}

	return g, nil
}

func (g *game) Update() error {
	for key, button := range keymap {
		if inpututil.IsKeyJustPressed(key) {
			g.sys.SetButton(1, button, true)
		} else if inpututil.IsKeyJustReleased(key) {
			g.sys.SetButton(1, button, false)
		}
	}

	if err := g.sys.RunFrame(); err != nil {
		glog.Errorf("frame step failed: %v", err)
		return err
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	fb := g.sys.Framebuffer()
	for i, idx := range fb {
		rgb := palette.Lookup(idx)
		g.pixels.Pix[i*4+0] = rgb.R
		g.pixels.Pix[i*4+1] = rgb.G
		g.pixels.Pix[i*4+2] = rgb.B
		g.pixels.Pix[i*4+3] = 0xFF
	}
	g.frame.WritePixels(g.pixels.Pix)

	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.frame, op)
}

func (g *game) Layout(int, int) (int, int) {
	return 256 * g.scale, 240 * g.scale
}
