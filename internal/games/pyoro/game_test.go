package pyoro

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/registry"
)

type speedRecorder struct {
	calls []float64
}

func (r *speedRecorder) SetSpeed(s float64) { r.calls = append(r.calls, s) }

func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 40, ScreenH: 13, TickRate: 60, Seed: 12345}
}

func press(a core.Action) core.InputFrame {
	in := core.NewInputFrame(frame)
	in.Press(a)
	return in
}

func release(a core.Action) core.InputFrame {
	in := core.NewInputFrame(frame)
	in.Release(a)
	return in
}

func idle() core.InputFrame {
	return core.NewInputFrame(frame)
}

func newPlayingGame(env registry.Env, v Variant) *Game {
	env.SkipMenu = true
	g := New(env, v)
	g.Reset(testConfig())
	g.level.sched.Remove(spawnKey)
	return g
}

func TestRegistryHasBothVariants(t *testing.T) {
	tests := []struct {
		id    string
		title string
	}{
		{"pyoro", "Pyoro"},
		{"pyoro2", "Pyoro 2"},
	}
	for _, tc := range tests {
		g, err := registry.Create(tc.id, registry.Env{})
		if err != nil {
			t.Fatalf("Create(%q) failed: %v", tc.id, err)
		}
		if g.ID() != tc.id || g.Title() != tc.title {
			t.Errorf("Create(%q) = %s/%s", tc.id, g.ID(), g.Title())
		}
	}
}

func TestResetDimensions(t *testing.T) {
	g := newPlayingGame(registry.Env{}, VariantTongue)
	if g.Phase() != PhasePlaying {
		t.Fatalf("Phase() = %v, expected playing", g.Phase())
	}
	if g.level.W != 20 || g.level.H != 12 {
		t.Errorf("world = %dx%d, expected 20x12", g.level.W, g.level.H)
	}
}

func TestSplashAndMenu(t *testing.T) {
	g := New(registry.Env{}, VariantTongue)
	g.Reset(testConfig())
	if g.Phase() != PhaseSplash || !g.State().InMenu {
		t.Fatalf("Phase() = %v, expected splash", g.Phase())
	}

	g.Step(press(core.ActionCapacity))
	if g.Phase() != PhaseMenu {
		t.Fatalf("Phase() = %v, expected menu", g.Phase())
	}

	g.Step(press(core.ActionRight))
	g.Step(press(core.ActionConfirm))
	if g.Phase() != PhaseMenu {
		t.Error("locked variant should not start")
	}

	g.Step(press(core.ActionRight))
	res := g.Step(press(core.ActionConfirm))
	if !res.State.Scoreboard {
		t.Error("Scores entry should ask for the scoreboard")
	}
	if g.Step(idle()).State.Scoreboard {
		t.Error("scoreboard request lasts one step")
	}

	g.Step(press(core.ActionRight))
	if res := g.Step(press(core.ActionConfirm)); !res.State.Quit {
		t.Error("Quit entry should quit")
	}
}

func TestSplashTimesOut(t *testing.T) {
	g := New(registry.Env{}, VariantTongue)
	g.Reset(testConfig())
	for i := 0; i < int(splashDuration/frame)+1; i++ {
		g.Step(idle())
	}
	if g.Phase() != PhaseMenu {
		t.Errorf("Phase() = %v, expected menu", g.Phase())
	}
}

func TestShootVariantUnlock(t *testing.T) {
	env := registry.Env{HighScores: func() [2]int { return [2]int{ShootUnlockScore, 0} }}
	g := New(env, VariantTongue)
	g.Reset(testConfig())
	g.Step(press(core.ActionConfirm))
	g.Step(press(core.ActionRight))
	g.Step(press(core.ActionConfirm))

	if g.Phase() != PhasePlaying {
		t.Fatalf("Phase() = %v, expected playing", g.Phase())
	}
	if g.ID() != "pyoro2" || g.Level().Variant() != VariantShoot {
		t.Errorf("ID() = %q, expected pyoro2", g.ID())
	}
}

func TestPauseToggle(t *testing.T) {
	src := &fakeSource{}
	g := newPlayingGame(registry.Env{Sounds: src}, VariantTongue)
	g.Step(idle())

	res := g.Step(press(core.ActionPause))
	if g.Phase() != PhasePaused || !res.State.Paused || g.level.Active() {
		t.Fatal("Pause should stop the level")
	}
	music := src.music[len(src.music)-1]
	if music.Playing() {
		t.Error("music should pause with the game")
	}

	speed := g.level.Speed()
	for i := 0; i < 60; i++ {
		g.Step(idle())
	}
	if g.level.Speed() != speed {
		t.Error("paused level must not advance")
	}

	g.Step(press(core.ActionPause))
	if g.Phase() != PhasePlaying || !g.level.Active() || !music.Playing() {
		t.Error("second Pause should resume")
	}
}

// sendTestAngel breaks tile 3 and catches a pink bean so an angel is
// descending with its looping sound.
func sendTestAngel(t *testing.T, g *Game, src *fakeSource) *fakePlayer {
	t.Helper()
	g.level.tiles.Destroy(3)
	g.level.SpawnBean(BeanPink, 2, 2, 0).Catch()
	g.Step(idle())

	fall := src.played(SoundAngel)
	if len(fall) != 1 || !fall[0].Playing() {
		t.Fatal("angel should be descending with its sound")
	}
	return fall[0]
}

func TestPauseHoldsEntitySounds(t *testing.T) {
	src := &fakeSource{}
	g := newPlayingGame(registry.Env{Sounds: src}, VariantTongue)
	fall := sendTestAngel(t, g, src)

	g.Step(press(core.ActionPause))
	if fall.Playing() {
		t.Error("angel sound should pause with the game")
	}
	if fall.stops != 0 {
		t.Errorf("pause must not stop the sound, stops = %d", fall.stops)
	}

	g.Step(press(core.ActionPause))
	if !fall.Playing() || fall.plays != 2 {
		t.Errorf("resume should restart the angel sound, playing=%v plays=%d", fall.Playing(), fall.plays)
	}
}

func TestLeavingRoundStopsEntitySounds(t *testing.T) {
	tests := []struct {
		name  string
		leave func(g *Game)
	}{
		{"back from pause", func(g *Game) {
			g.Step(press(core.ActionPause))
			g.Step(press(core.ActionBack))
		}},
		{"back while playing", func(g *Game) {
			g.Step(press(core.ActionBack))
		}},
		{"restart", func(g *Game) {
			g.phase = PhaseGameOver
			g.Step(press(core.ActionRestart))
		}},
		{"close", func(g *Game) {
			g.Close()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			g := newPlayingGame(registry.Env{Sounds: src}, VariantTongue)
			fall := sendTestAngel(t, g, src)
			old := g.Level()

			tt.leave(g)

			if fall.Playing() || fall.stops != 1 {
				t.Errorf("angel sound should be stopped once, playing=%v stops=%d", fall.Playing(), fall.stops)
			}
			if n := len(old.Entities()); n != 0 {
				t.Errorf("discarded level still holds %d entities", n)
			}
			if n := old.Scheduler().Len(); n != 0 {
				t.Errorf("discarded level still holds %d delays", n)
			}
		})
	}
}

func TestHeldDirectionResumesAfterTongue(t *testing.T) {
	g := newPlayingGame(registry.Env{}, VariantTongue)
	bird := g.level.Bird()

	g.Step(press(core.ActionLeft))
	if bird.State() != BirdMovingLeft {
		t.Fatalf("State() = %v, expected moving_left", bird.State())
	}

	g.Step(press(core.ActionCapacity))
	if bird.Moving() || bird.Tongue() == nil {
		t.Fatal("tongue should stop the bird")
	}

	for i := 0; i < 60 && bird.Tongue() != nil; i++ {
		g.Step(idle())
	}
	g.Step(idle())
	if bird.State() != BirdMovingLeft {
		t.Errorf("held left should resume walking, State() = %v", bird.State())
	}

	g.Step(release(core.ActionLeft))
	if bird.Moving() {
		t.Error("release should stop the bird")
	}
}

func TestOppositeDirectionTakesOver(t *testing.T) {
	g := newPlayingGame(registry.Env{}, VariantTongue)
	bird := g.level.Bird()

	g.Step(press(core.ActionLeft))
	g.Step(press(core.ActionRight))
	if bird.State() != BirdMovingRight {
		t.Fatalf("State() = %v, expected moving_right", bird.State())
	}
	g.Step(release(core.ActionRight))
	if bird.State() != BirdMovingLeft {
		t.Errorf("still holding left, State() = %v", bird.State())
	}
}

func TestGameOverAndRestart(t *testing.T) {
	g := newPlayingGame(registry.Env{}, VariantTongue)
	g.level.score = 1234
	g.level.Bird().Kill()

	var res core.StepResult
	for i := 0; i < 120 && !res.State.GameOver; i++ {
		res = g.Step(idle())
	}
	if !res.State.GameOver || g.Phase() != PhaseGameOver {
		t.Fatal("game should end after the death animation")
	}
	if res.State.Score != 1234 {
		t.Errorf("Score = %d, expected 1234", res.State.Score)
	}

	first := g.Level()
	res = g.Step(press(core.ActionRestart))
	if g.Phase() != PhasePlaying || g.Level() == first {
		t.Fatal("Restart should start a new round")
	}
	if res.State.GameOver || res.State.Score != 0 {
		t.Errorf("new round state = %+v", res.State)
	}
}

func TestMusicFollowsStyleTier(t *testing.T) {
	src := &fakeSource{}
	g := newPlayingGame(registry.Env{Sounds: src}, VariantTongue)
	g.Step(idle())
	if g.musicName != "pyoro_0" {
		t.Fatalf("music = %q, expected pyoro_0", g.musicName)
	}
	old := src.music[len(src.music)-1]

	g.level.score = 20000
	g.Step(idle())
	if g.musicName != "pyoro_1" {
		t.Errorf("music = %q, expected pyoro_1", g.musicName)
	}
	if old.Playing() || old.stops == 0 {
		t.Error("previous tier music should stop")
	}
}

func TestSpeedFollowIsOptIn(t *testing.T) {
	rec := &speedRecorder{}
	g := newPlayingGame(registry.Env{Speed: rec}, VariantTongue)
	for i := 0; i < 10; i++ {
		g.Step(idle())
	}
	if len(rec.calls) != 0 {
		t.Errorf("mixer speed changed %d times without FollowSpeed", len(rec.calls))
	}

	rec = &speedRecorder{}
	g = newPlayingGame(registry.Env{Speed: rec, FollowSpeed: true}, VariantTongue)
	for i := 0; i < 10; i++ {
		g.Step(idle())
	}
	if len(rec.calls) != 10 || rec.calls[9] != g.level.Speed() {
		t.Errorf("SetSpeed calls = %v, expected the level speed each step", rec.calls)
	}
}

func TestShootCutsBeansInCone(t *testing.T) {
	l := newTestLevel(20, 12, VariantShoot)
	l.bird.box.Center.X = 5
	l.bird.direction = 1
	y := l.bird.box.Center.Y

	hit1 := l.SpawnBean(BeanGreen, 7, y-2, 0)
	hit2 := l.SpawnBean(BeanGreen, 9, y-4, 0)
	miss := l.SpawnBean(BeanGreen, 5, y-5, 0)
	behind := l.SpawnBean(BeanGreen, 3, y-2, 0)

	l.bird.EnableCapacity()

	if !hit1.Removed() || !hit2.Removed() {
		t.Error("beans on the diagonal should be cut")
	}
	if miss.Removed() || behind.Removed() {
		t.Error("beans off the diagonal must survive")
	}
	if l.Score() != 100 {
		t.Errorf("score = %d, expected 100 for two beans", l.Score())
	}
	if n := count(l, KindSeed); n != 2 {
		t.Errorf("seeds = %d, expected 2", n)
	}
	if n := count(l, KindLeaf); n != 2 {
		t.Errorf("leaves = %d, expected 2", n)
	}
	if l.bird.State() != BirdShooting || l.bird.EnableMove(1) {
		t.Error("bird cannot walk while shooting")
	}

	run(l, 0.5)
	if l.bird.State() != BirdIdle {
		t.Errorf("shot should end, State() = %v", l.bird.State())
	}
	if !l.bird.EnableMove(1) {
		t.Error("bird should walk again after the shot")
	}
}

func TestBulkScore(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 0},
		{1, 50},
		{2, 100},
		{3, 300},
		{4, 1000},
		{9, 1000},
	}
	for _, tc := range tests {
		if got := bulkScore(tc.n); got != tc.want {
			t.Errorf("bulkScore(%d) = %d, expected %d", tc.n, got, tc.want)
		}
	}
}

func TestShootSuperBeanSpawnsSuperLeaves(t *testing.T) {
	l := newTestLevel(20, 12, VariantShoot)
	l.bird.box.Center.X = 5
	l.bird.direction = -1
	y := l.bird.box.Center.Y

	l.SpawnBean(BeanSuper, 3, y-2, 0)
	other := l.SpawnBean(BeanGreen, 15, 1, 0)
	l.bird.EnableCapacity()

	leaves := 0
	for _, e := range l.Entities() {
		if leaf, ok := e.(*Leaf); ok && leaf.super {
			leaves++
		}
	}
	if leaves == 0 {
		t.Error("cut super bean should leave super leaves")
	}
	run(l, 0.2)
	if !other.Removed() {
		t.Error("cut super bean should implode the other beans")
	}
}

func TestLeafCutSplits(t *testing.T) {
	l := newTestLevel(20, 12, VariantShoot)
	leaf := newLeaf(l, core.Vec{X: 10, Y: 3}, 1, false)
	l.Add(leaf)
	leaf.Cut()

	if !leaf.Removed() {
		t.Error("cut leaf should be removed")
	}
	if n := count(l, KindLeafPiece); n != 2 {
		t.Errorf("leaf pieces = %d, expected 2", n)
	}
}

func TestRenderPlaying(t *testing.T) {
	g := newPlayingGame(registry.Env{}, VariantTongue)
	g.level.tiles.Destroy(3)
	g.Step(idle())

	screen := core.NewScreen(40, 13)
	g.Render(screen)

	if !strings.Contains(screen.Row(0), "Score: 000000") {
		t.Errorf("HUD row = %q", screen.Row(0))
	}
	floor := []rune(screen.Row(12))
	if floor[0] != TileChar || floor[6] != ' ' || floor[7] != ' ' {
		t.Errorf("floor row = %q, expected a hole at tile 3", string(floor))
	}
	if !strings.Contains(screen.String(), "•") {
		t.Error("bird should be drawn")
	}
}

func TestRenderOverlays(t *testing.T) {
	g := newPlayingGame(registry.Env{}, VariantTongue)
	g.Step(press(core.ActionPause))

	screen := core.NewScreen(40, 13)
	g.Render(screen)
	if !strings.Contains(screen.String(), "PAUSED") {
		t.Error("paused overlay missing")
	}

	g = New(registry.Env{}, VariantTongue)
	g.Reset(testConfig())
	g.Step(press(core.ActionConfirm))
	g.Step(press(core.ActionRight))
	g.Render(screen)
	if !strings.Contains(screen.String(), "locked") {
		t.Error("locked variant should say so")
	}
}
