package pyoro

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vovakirdan/tui-pyoro/internal/core"
)

// One world unit is two columns wide and one row tall. Row 0 is the HUD.
const (
	cellsPerUnit = 2
	hudRows      = 1
)

// Visual characters for rendering
const (
	TileChar     = '▀'
	TongueChar   = '·'
	SkyStarChar  = '.'
	SkyCloudChar = '░'
)

// styleColors holds the bird and floor colors of each style tier.
var styleColors = [3]struct{ bird, floor core.Color }{
	{core.ColorBrightRed, core.ColorBrown},
	{core.ColorBrightBlue, core.ColorGray},
	{core.ColorBrightMagenta, core.ColorDarkGray},
}

// Render implements registry.Game.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	switch g.phase {
	case PhaseSplash:
		g.renderSplash(dst)
	case PhaseMenu:
		g.renderMenu(dst)
	default:
		snap := g.level.Snapshot()
		renderLevel(dst, snap)
		g.renderHUD(dst, snap)
		switch g.phase {
		case PhasePaused:
			drawMessage(dst, "PAUSED", "P resume  B menu  Q quit")
		case PhaseGameOver:
			drawMessage(dst, "GAME OVER", fmt.Sprintf("Score: %d  |  R restart  B menu", snap.Score))
		}
	}
}

func (g *Game) renderHUD(dst *core.Screen, s Snapshot) {
	dst.DrawHLine(0, 0, dst.Width(), ' ', core.ColorDefault)
	dst.DrawTextColor(1, 0, g.variant.Title(), styleColors[s.Style].bird)
	score := fmt.Sprintf("Score: %06d", s.Score)
	dst.DrawTextCentered(0, score, core.ColorBrightWhite)
	speed := fmt.Sprintf("x%.2f", s.Speed)
	dst.DrawTextColor(dst.Width()-len(speed)-1, 0, speed, core.ColorGray)
}

func (g *Game) renderSplash(dst *core.Screen) {
	h := dst.Height()
	dst.DrawTextCentered(h/2-2, "P Y O R O", core.ColorBrightRed)
	dst.DrawTextCentered(h/2, "eat the beans, save the floor", core.ColorGray)
	dst.DrawTextCentered(h/2+2, "press SPACE", core.ColorBrightWhite)
}

func (g *Game) renderMenu(dst *core.Screen) {
	h := dst.Height()
	dst.DrawTextCentered(h/2-4, "P Y O R O", core.ColorBrightRed)

	label := menuLabels[g.menuIndex]
	color := core.ColorBrightYellow
	if g.menuIndex == menuShoot && !g.ShootUnlocked() {
		label += fmt.Sprintf(" (locked: score %d in Pyoro)", ShootUnlockScore)
		color = core.ColorDarkGray
	}
	dst.DrawTextCentered(h/2, "◀  "+label+"  ▶", color)

	dots := make([]rune, 0, menuCount*2)
	for i := 0; i < menuCount; i++ {
		if i == g.menuIndex {
			dots = append(dots, '●', ' ')
		} else {
			dots = append(dots, '○', ' ')
		}
	}
	dst.DrawTextCentered(h/2+2, string(dots), core.ColorGray)
	dst.DrawTextCentered(h-2, "←/→ choose  SPACE/ENTER select  Q quit", core.ColorGray)
}

// renderLevel draws the world part of a snapshot below the HUD row.
func renderLevel(dst *core.Screen, s Snapshot) {
	drawBackground(dst, s)

	floor := styleColors[s.Style].floor
	for i, ok := range s.Tiles {
		if ok {
			dst.DrawHLine(i*cellsPerUnit, s.H-1+hudRows, cellsPerUnit, TileChar, floor)
		}
	}

	for _, e := range s.Entities {
		drawSprite(dst, e)
	}
	if len(s.Tongue) == 2 {
		drawTongue(dst, s.Tongue[0], s.Tongue[1])
	}
	drawBird(dst, s.Bird, s.Style)
}

// backgroundStyle returns the sky texture of a background id.
func backgroundStyle(id int) (rune, core.Color) {
	switch {
	case id < 4:
		return ' ', core.ColorDefault
	case id < 8:
		return SkyCloudChar, core.ColorDarkGray
	case id < firstAnimatedBackground:
		return SkyStarChar, core.ColorGray
	default:
		return SkyStarChar, core.Palette[(id-firstAnimatedBackground)%len(core.Palette)]
	}
}

// drawBackground lays a sparse texture over the sky. During a transition
// the new background grows from the top.
func drawBackground(dst *core.Screen, s Snapshot) {
	split := int(math.Round(s.Transition * float64(s.H-1)))
	for y := 0; y < s.H-1; y++ {
		id := s.Background
		if y >= split {
			id = s.PrevBackground
		}
		r, c := backgroundStyle(id)
		if r == ' ' {
			continue
		}
		for x := 0; x < s.W*cellsPerUnit; x++ {
			if (x*7+y*13+id)%11 == 0 {
				dst.SetCell(x, y+hudRows, r, c)
			}
		}
	}
}

func toScreen(v core.Vec) (int, int) {
	return core.Floor(v.X * cellsPerUnit), core.Floor(v.Y) + hudRows
}

func drawBird(dst *core.Screen, b Sprite, style int) {
	x, y := toScreen(core.Vec{X: b.Pos.X - b.Size.X/2, Y: b.Pos.Y - b.Size.Y/2})
	color := styleColors[style].bird

	top, bottom := "(•> ", " ^^ "
	if b.Dir < 0 {
		top = " <•)"
	}
	switch b.Name {
	case "pyoro_notch", "pyoro2_notch":
		bottom = " ^ ^"
		if b.Dir < 0 {
			bottom = "^ ^ "
		}
	case "pyoro_tongue", "pyoro_eating":
		top = "(•= "
		if b.Dir < 0 {
			top = " =•)"
		}
	case "pyoro2_shoot":
		top = "(•≫ "
		if b.Dir < 0 {
			top = " ≪•)"
		}
	case "pyoro_dead", "pyoro2_dead":
		top, bottom = "(x_x", " vv "
		color = core.ColorGray
		if b.Frame%2 == 1 {
			color = core.ColorDarkGray
		}
	}
	dst.DrawTextColor(x, y, top, color)
	dst.DrawTextColor(x, y+1, bottom, core.ColorOrange)
}

func drawTongue(dst *core.Screen, from, to core.Vec) {
	steps := int(math.Ceil(math.Abs(to.Y-from.Y) * cellsPerUnit))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x, y := toScreen(core.Vec{X: from.X + (to.X-from.X)*t, Y: from.Y + (to.Y-from.Y)*t})
		dst.SetCell(x, y, TongueChar, core.ColorPink)
	}
}

func drawSprite(dst *core.Screen, e Sprite) {
	x, y := toScreen(core.Vec{X: e.Pos.X - e.Size.X/2, Y: e.Pos.Y})
	switch e.Kind {
	case KindBean:
		dst.DrawTextColor(x, y, "()", e.Color)
	case KindAngel:
		glyph := "\\/"
		if e.Frame == 1 {
			glyph = "/\\"
		}
		dst.DrawTextColor(x, y, glyph, e.Color)
	case KindSeed:
		if e.Alpha > 0.5 {
			dst.SetCell(x, y, '•', e.Color)
		} else {
			dst.SetCell(x, y, '∙', e.Color)
		}
	case KindSmoke:
		glyphs := [smokeFrames]string{"▓▓", "▒▒", "░░"}
		dst.DrawTextColor(x, y, glyphs[core.Clamp(e.Frame, 0, smokeFrames-1)], e.Color)
	case KindLeaf:
		if e.Dir < 0 {
			dst.DrawTextColor(x, y, "~/", e.Color)
		} else {
			dst.DrawTextColor(x, y, "\\~", e.Color)
		}
	case KindLeafPiece:
		dst.SetCell(x, y, '~', e.Color)
	case KindScoreText:
		text := e.Name[len("score_"):]
		if _, err := strconv.Atoi(text); err == nil {
			cx, _ := toScreen(e.Pos)
			dst.DrawTextColor(cx-len(text)/2, y, text, e.Color)
		}
	}
}

// drawMessage draws a message box in the center of the screen.
func drawMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := core.Max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	box := core.NewRect((w-boxW)/2, (h-boxH)/2, boxW, boxH)

	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, core.ColorBrightWhite)
	dst.DrawTextCentered(box.Y+1, title, core.ColorBrightYellow)
	dst.DrawTextCentered(box.Y+3, subtitle, core.ColorGray)
}
