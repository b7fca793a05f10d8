package pyoro

import (
	"math"
	"reflect"
	"testing"

	"github.com/vovakirdan/tui-pyoro/internal/audio"
	"github.com/vovakirdan/tui-pyoro/internal/core"
	"github.com/vovakirdan/tui-pyoro/internal/timing"
)

const frame = 1.0 / 60

// fakePlayer records what the simulation asks of a voice.
type fakePlayer struct {
	name    string
	playing bool
	plays   int
	stops   int
}

func (p *fakePlayer) Play(int)      { p.playing = true; p.plays++ }
func (p *fakePlayer) Pause()        { p.playing = false }
func (p *fakePlayer) Stop()         { p.playing = false; p.stops++ }
func (p *fakePlayer) Playing() bool { return p.playing }

type fakeSource struct {
	sounds []*fakePlayer
	music  []*fakePlayer
}

func (s *fakeSource) Sound(name string) audio.Player {
	p := &fakePlayer{name: name}
	s.sounds = append(s.sounds, p)
	return p
}

func (s *fakeSource) Music(name string) audio.Player {
	p := &fakePlayer{name: name}
	s.music = append(s.music, p)
	return p
}

func (s *fakeSource) played(name string) []*fakePlayer {
	var out []*fakePlayer
	for _, p := range s.sounds {
		if p.name == name {
			out = append(out, p)
		}
	}
	return out
}

// newTestLevel creates a level without the bean spawner.
func newTestLevel(w, h int, v Variant) *Level {
	l := NewLevel(LevelConfig{Width: w, Height: h, Variant: v, Seed: 42})
	l.sched.Remove(spawnKey)
	return l
}

func run(l *Level, seconds float64) {
	for i := 0; i < int(math.Round(seconds/frame)); i++ {
		l.Tick(frame)
	}
}

func count(l *Level, k Kind) int {
	n := 0
	for _, e := range l.Entities() {
		if e.Kind() == k {
			n++
		}
	}
	return n
}

func TestFloorDestruction(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.bird.box.Center.X = 2

	bean := l.SpawnBean(BeanGreen, 5, 0, 1)
	for i := 0; i < 1000 && !bean.Removed(); i++ {
		l.Tick(frame)
	}

	if !bean.Removed() {
		t.Fatal("bean never reached the floor")
	}
	if l.tiles.Exists(5) {
		t.Error("tile 5 should be destroyed")
	}
	for i := 0; i < l.W; i++ {
		if i != 5 && !l.tiles.Exists(i) {
			t.Errorf("tile %d should be intact", i)
		}
	}
	if n := count(l, KindSmoke); n != 1 {
		t.Errorf("smoke entities = %d, expected 1", n)
	}
	if l.Score() != 0 {
		t.Errorf("score = %d, expected 0", l.Score())
	}
	if l.bird.Dead() {
		t.Error("bird should be alive")
	}
}

func TestTongueScoreByHeight(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.bird.box.Center.X = 2
	l.bird.direction = 1

	l.bird.EnableCapacity()
	tongue := l.bird.Tongue()
	if tongue == nil {
		t.Fatal("EnableCapacity should extend the tongue")
	}
	// The tip climbs from (2.5, 7.5) along the diagonal and meets the bean
	// with its center between 0.4H and 0.6H.
	bean := l.SpawnBean(BeanGreen, 6, 4, 1)

	run(l, 0.5)

	if l.Score() != 100 {
		t.Errorf("score = %d, expected 100", l.Score())
	}
	if !bean.Removed() {
		t.Error("caught bean should be eaten at the end of the retract")
	}
	if l.bird.Tongue() != nil || count(l, KindTongue) != 0 {
		t.Error("tongue should be gone after the retract")
	}
	if !tongue.Removed() {
		t.Error("tongue entity should be removed")
	}
}

func TestTongueScoreUsesRetractHeight(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.bird.box.Center.X = 9
	l.bird.direction = -1

	// A still bean at (3.8, 3.2). The tip leaves the beak at (8.5, 7.5) and
	// first touches it between 0.2H and 0.4H.
	bean := l.SpawnBean(BeanGreen, 3.8, 3.2, 0)
	l.bird.EnableCapacity()
	tongue := l.bird.Tongue()

	for i := 0; i < 30 && tongue.Caught() == nil; i++ {
		l.Tick(frame)
	}
	if tongue.Caught() != bean {
		t.Fatal("tongue should catch the bean while extending")
	}
	y := tongue.Tip().Y
	if y < 2 || y >= 4 {
		t.Fatalf("retract starts at y = %v, expected within [2, 4)", y)
	}
	if l.Score() != 300 {
		t.Errorf("score = %d, expected 300 from the height table", l.Score())
	}

	run(l, 0.5)
	if !bean.Removed() || !tongue.Removed() {
		t.Error("bean and tongue should be gone after the retract")
	}
}

func TestTongueScoreTable(t *testing.T) {
	tests := []struct {
		y    float64
		want int
	}{
		{0, 1000},
		{1.99, 1000},
		{2, 300},
		{3.99, 300},
		{4, 100},
		{5.99, 100},
		{6, 50},
		{7.99, 50},
		{8, 10},
		{9.5, 10},
	}

	for _, tc := range tests {
		if got := tongueScore(tc.y, 10); got != tc.want {
			t.Errorf("tongueScore(%v, 10) = %d, expected %d", tc.y, got, tc.want)
		}
	}
}

func TestTongueMissRetracts(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.bird.box.Center.X = 5
	l.bird.EnableCapacity()

	run(l, 1)

	if l.bird.Tongue() != nil {
		t.Error("tongue should come back after leaving the field")
	}
	if l.Score() != 0 {
		t.Errorf("score = %d, expected 0", l.Score())
	}
	if l.bird.State() != BirdIdle {
		t.Errorf("State() = %v, expected idle", l.bird.State())
	}
}

func TestSuperBeanCascade(t *testing.T) {
	l := newTestLevel(12, 10, VariantTongue)
	for i := 0; i < 4; i++ {
		l.tiles.Destroy(i)
	}
	l.bird.box.Center.X = 8

	for _, x := range []float64{4.5, 6.5, 10.5} {
		l.SpawnBean(BeanGreen, x, 2, 0)
	}
	super := l.SpawnBean(BeanSuper, 6.5, 0.5, 0)
	super.Catch()

	var destroy []float64
	for _, k := range l.sched.Keys() {
		if k.Owner == super.ID() && k.Name == "destroy_bean" {
			d, _ := l.sched.Deadline(k)
			destroy = append(destroy, d)
			if d != 0.1*float64(k.Index) {
				t.Errorf("destroy_bean %d deadline = %v, expected %v", k.Index, d, 0.1*float64(k.Index))
			}
		}
	}
	if len(destroy) != 3 {
		t.Fatalf("destroy_bean delays = %d, expected 3", len(destroy))
	}

	run(l, 0.3)
	if l.Score() != 150 {
		t.Errorf("score after implosions = %d, expected 150", l.Score())
	}
	if n := count(l, KindBean); n != 1 {
		t.Errorf("beans left = %d, expected only the super bean", n)
	}

	run(l, 5)
	for i := 0; i < 4; i++ {
		if !l.tiles.Exists(i) || l.tiles.Repairing(i) {
			t.Errorf("tile %d should be repaired, got %+v", i, l.tiles.At(i))
		}
	}
}

func TestSuperBeanRepairsAtMostTen(t *testing.T) {
	l := newTestLevel(20, 10, VariantTongue)
	for i := 0; i < 15; i++ {
		l.tiles.Destroy(i)
	}
	l.bird.box.Center.X = 18

	super := l.SpawnBean(BeanSuper, 18, 1, 0)
	super.Catch()

	repairing := 0
	for i := 0; i < l.W; i++ {
		if l.tiles.Repairing(i) {
			repairing++
		}
	}
	if repairing != 10 {
		t.Errorf("tiles reserved = %d, expected 10", repairing)
	}
	if got := len(l.tiles.VoidTiles()); got != 5 {
		t.Errorf("unreserved void tiles = %d, expected 5", got)
	}
}

func TestPinkBeanRepair(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.tiles.Destroy(4)
	l.bird.box.Center.X = 8

	pink := l.SpawnBean(BeanPink, 2, 2, 0)
	pink.Catch()

	var angels []*Angel
	for _, e := range l.Entities() {
		if a, ok := e.(*Angel); ok {
			angels = append(angels, a)
		}
	}
	if len(angels) != 1 {
		t.Fatalf("angels = %d, expected 1", len(angels))
	}
	angel := angels[0]
	if angel.Tile() != 4 {
		t.Errorf("angel targets tile %d, expected 4", angel.Tile())
	}
	if !l.tiles.Repairing(4) || l.tiles.Exists(4) {
		t.Errorf("tile 4 should be reserved and still broken, got %+v", l.tiles.At(4))
	}

	run(l, float64(l.H)/AngelSpeed)

	if !l.tiles.Exists(4) || l.tiles.Repairing(4) {
		t.Errorf("tile 4 should be repaired, got %+v", l.tiles.At(4))
	}
	if !angel.Rising() {
		t.Error("angel should be ascending after the repair")
	}

	run(l, 1)
	if !angel.Removed() {
		t.Error("angel should leave once out of the field")
	}
}

func TestPinkBeanWithoutHoles(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	pink := l.SpawnBean(BeanPink, 2, 2, 0)
	pink.Catch()
	if n := count(l, KindAngel); n != 0 {
		t.Errorf("angels = %d, expected none on an intact floor", n)
	}
}

func TestSpeedRamp(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	for i := 0; i < 1000; i++ {
		l.Tick(0.1)
	}
	if math.Abs(l.Speed()-2) > 0.02 {
		t.Errorf("Speed() = %v, expected about 2", l.Speed())
	}

	m := audio.NewMixer(nil, nil)
	if fr := m.EffectiveFramerate(); fr != audio.DefaultFramerate {
		t.Errorf("EffectiveFramerate() = %d, expected %d", fr, audio.DefaultFramerate)
	}
	m.SetSpeed(2)
	if fr := m.EffectiveFramerate(); fr != audio.DefaultFramerate/2 {
		t.Errorf("EffectiveFramerate() at speed 2 = %d, expected %d", fr, audio.DefaultFramerate/2)
	}
}

func TestPauseFreezesLevel(t *testing.T) {
	l := NewLevel(LevelConfig{Width: 10, Height: 10, Seed: 7})
	l.bird.box.Center.X = 1
	l.SpawnBean(BeanGreen, 7, 1, 1)
	run(l, 0.5)

	l.SetActive(false)
	before := l.Snapshot()
	elapsed, ok := l.sched.Elapsed(spawnKey)
	if !ok {
		t.Fatal("spawner should be scheduled")
	}

	run(l, 5)

	if after := l.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("paused level changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if got, _ := l.sched.Elapsed(spawnKey); got != elapsed {
		t.Errorf("spawn delay elapsed moved from %v to %v", elapsed, got)
	}
}

func TestStyleTier(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, 0},
		{19999, 0},
		{20000, 1},
		{29999, 1},
		{30000, 2},
		{1000000, 2},
	}
	for _, tc := range tests {
		if got := StyleTier(tc.score); got != tc.want {
			t.Errorf("StyleTier(%d) = %d, expected %d", tc.score, got, tc.want)
		}
	}
}

func TestBackgroundID(t *testing.T) {
	tests := []struct {
		score, frame int
		want         int
	}{
		{0, 0, 0},
		{999, 0, 0},
		{5500, 0, 5},
		{10999, 0, 10},
		{11000, 0, 10},
		{19999, 0, 10},
		{20000, 0, 11},
		{30000, 0, 12},
		{40000, 0, 13},
		{40000, 7, 20},
		{90000, 9, 14},
	}
	for _, tc := range tests {
		if got := BackgroundID(tc.score, tc.frame); got != tc.want {
			t.Errorf("BackgroundID(%d, %d) = %d, expected %d", tc.score, tc.frame, got, tc.want)
		}
	}
}

func TestBackgroundTransition(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.score = 3000
	l.Tick(frame)

	if l.Background() != 3 {
		t.Fatalf("Background() = %d, expected 3", l.Background())
	}
	prev, progress := l.Transition()
	if prev != 0 || progress >= 1 {
		t.Errorf("Transition() = %d, %v; expected a fade from 0", prev, progress)
	}

	run(l, BackgroundTransitionDuration)
	if _, progress := l.Transition(); progress != 1 {
		t.Errorf("fade should be over, progress = %v", progress)
	}

	l.score = animatedBackgroundScore
	l.Tick(frame)
	first := l.Background()
	run(l, 1.1*BackgroundAnimatedDuration)
	if l.Background() == first || l.Background() < firstAnimatedBackground {
		t.Errorf("animated background should cycle, got %d then %d", first, l.Background())
	}
}

func TestSpawnScoreRejectsInvalidValues(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.SpawnScore(42, core.Vec{X: 5, Y: 5})
	if l.Score() != 0 || count(l, KindScoreText) != 0 {
		t.Errorf("invalid value should be ignored, score = %d", l.Score())
	}

	for _, v := range scoreValues {
		l.SpawnScore(v, core.Vec{X: 5, Y: 5})
	}
	if l.Score() != 1460 {
		t.Errorf("score = %d, expected 1460", l.Score())
	}
	if n := count(l, KindScoreText); n != len(scoreValues) {
		t.Errorf("score texts = %d, expected %d", n, len(scoreValues))
	}

	run(l, 2*ScoreTextLifeDuration)
	if n := count(l, KindScoreText); n != 0 {
		t.Errorf("score texts should expire, %d left", n)
	}
}

func TestScoreTextBlinks(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.SpawnScore(300, core.Vec{X: 5, Y: 5})
	text := l.Entities()[0].(*ScoreText)

	first := text.Sprite().Color
	run(l, 3*ScoreTextBlinkDuration)
	if text.Sprite().Color == first {
		t.Error("300 should cycle the palette")
	}

	l.SpawnScore(100, core.Vec{X: 5, Y: 5})
	plain := l.Entities()[len(l.Entities())-1].(*ScoreText)
	if plain.Sprite().Color != core.ColorBrightYellow {
		t.Errorf("100 color = %v", plain.Sprite().Color)
	}
}

func TestBirdClamping(t *testing.T) {
	tests := []struct {
		name string
		dir  int
		want float64
	}{
		{"left wall", -1, BirdWidth / 2},
		{"right wall", 1, 10 - BirdWidth/2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLevel(10, 10, VariantTongue)
			l.bird.EnableMove(tc.dir)
			for i := 0; i < 120; i++ {
				l.Tick(frame)
				x := l.bird.box.Center.X
				if x < BirdWidth/2 || x > float64(l.W)-BirdWidth/2 {
					t.Fatalf("bird left the field: x = %v", x)
				}
			}
			if got := l.bird.box.Center.X; got != tc.want {
				t.Errorf("x = %v, expected %v", got, tc.want)
			}
		})
	}
}

func TestBirdBlockedByHole(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		hole  int
		dir   int
		want  float64
	}{
		{"hole on the right", 3, 6, 1, 5},
		{"hole on the left", 6, 1, -1, 3},
		{"hole right next to the bird", 3, 4, 1, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLevel(10, 10, VariantTongue)
			l.bird.box.Center.X = tc.start
			l.tiles.Destroy(tc.hole)
			l.bird.EnableMove(tc.dir)
			run(l, 1)
			if got := l.bird.box.Center.X; got != tc.want {
				t.Errorf("x = %v, expected %v", got, tc.want)
			}
		})
	}
}

func TestBirdNotchesWhileWalking(t *testing.T) {
	l := newTestLevel(40, 10, VariantTongue)
	l.bird.EnableMove(1)
	seen := map[bool]bool{}
	for i := 0; i < 10; i++ {
		l.Tick(frame)
		seen[l.bird.notched] = true
	}
	if !seen[true] || !seen[false] {
		t.Error("walking bird should hop")
	}

	l.bird.DisableMove(1)
	if l.bird.notched || l.sched.Has(timing.K(l.bird.ID(), "notch")) {
		t.Error("stopping should cancel the hop")
	}
}

func TestTongueInvariant(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.bird.EnableCapacity()
	first := l.bird.Tongue()
	l.bird.EnableCapacity()

	if l.bird.Tongue() != first || count(l, KindTongue) != 1 {
		t.Error("bird must have at most one tongue")
	}
	if l.bird.EnableMove(-1) {
		t.Error("bird must not start moving while the tongue is out")
	}
	if l.bird.State() != BirdEating {
		t.Errorf("State() = %v, expected eating", l.bird.State())
	}
}

func TestBeanKillsBird(t *testing.T) {
	src := &fakeSource{}
	l := NewLevel(LevelConfig{Width: 10, Height: 10, Seed: 3, Sounds: src})
	l.sched.Remove(spawnKey)
	l.bird.EnableCapacity()

	bean := l.SpawnBean(BeanGreen, l.bird.box.Center.X, 5, 1)
	run(l, 2)

	if !l.bird.Dead() || l.bird.State() != BirdDying {
		t.Fatal("bean should kill the bird")
	}
	if !bean.Removed() {
		t.Error("bean should be removed after hitting the bird")
	}
	if l.bird.Tongue() != nil {
		t.Error("dying bird loses its tongue")
	}
	if len(src.played(SoundDeath)) != 1 {
		t.Error("death sound should play once")
	}
	if !l.tiles.Exists(core.Floor(bean.Box().Center.X)) {
		t.Error("bean hitting the bird must not break the floor")
	}
	if l.bird.EnableMove(1) {
		t.Error("dead bird cannot move")
	}

	// Death happened inside the first 2 s; game over follows 1.28 s later.
	run(l, PyoroDeathDuration)
	if !l.Over() {
		t.Error("level should be over after the death animation")
	}
}

func TestBeanFallsThroughHole(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	l.bird.box.Center.X = 1
	l.tiles.Destroy(6)
	bean := l.SpawnBean(BeanGreen, 6.5, 0.5, 1)

	for i := 0; i < 1000 && !bean.Removed(); i++ {
		l.Tick(frame)
	}
	if !bean.Removed() {
		t.Fatal("bean should leave through the hole")
	}
	if count(l, KindSmoke) != 0 {
		t.Error("no smoke over a hole")
	}
	for i := 0; i < l.W; i++ {
		if i != 6 && !l.tiles.Exists(i) {
			t.Errorf("tile %d should be intact", i)
		}
	}
}

func TestRemovedEntityDropsKeysAndSounds(t *testing.T) {
	src := &fakeSource{}
	l := NewLevel(LevelConfig{Width: 10, Height: 10, Seed: 3, Sounds: src})
	l.tiles.Destroy(2)
	l.sendAngel()

	angel := l.Entities()[0].(*Angel)
	fall := src.played(SoundAngel)
	if len(fall) != 1 || !fall[0].Playing() {
		t.Fatal("descending angel should play its sound")
	}

	smoke := newSmoke(l, 3, 3)
	l.Add(smoke)
	if !l.sched.Has(timing.K(smoke.ID(), "frame")) {
		t.Fatal("smoke should schedule its frames")
	}

	l.Remove(smoke)
	l.Remove(angel)
	l.Remove(angel)

	if l.sched.Has(timing.K(smoke.ID(), "frame")) {
		t.Error("removed entity must drop its delays")
	}
	if fall[0].Playing() || fall[0].stops != 1 {
		t.Errorf("removed entity must stop its sounds once, stops = %d", fall[0].stops)
	}
	if l.Entity(angel.ID()) != nil || l.Entity(smoke.ID()) != nil {
		t.Error("stale ids should resolve to nil")
	}
}

func TestLevelInvariants(t *testing.T) {
	l := NewLevel(LevelConfig{Width: 16, Height: 12, Seed: 99})
	l.bird.EnableMove(1)

	prevScore, prevSpeed := l.Score(), l.Speed()
	for i := 0; i < 60*60; i++ {
		if i%90 == 0 {
			l.bird.EnableCapacity()
		}
		if i%200 == 0 {
			l.bird.EnableMove(-l.bird.Direction())
		}
		l.Tick(frame)

		if l.tiles.Len() != l.W {
			t.Fatalf("tile count changed to %d", l.tiles.Len())
		}
		for j := 0; j < l.W; j++ {
			if tile := l.tiles.At(j); tile.Repairing && tile.Exists {
				t.Fatalf("tile %d is repairing but exists", j)
			}
		}
		if l.Score() < prevScore {
			t.Fatalf("score went down from %d to %d", prevScore, l.Score())
		}
		if l.Speed() < prevSpeed {
			t.Fatalf("speed went down from %v to %v", prevSpeed, l.Speed())
		}
		x := l.bird.box.Center.X
		if x < BirdWidth/2 || x > float64(l.W)-BirdWidth/2 {
			t.Fatalf("bird out of the field at x = %v", x)
		}
		if count(l, KindTongue) > 1 {
			t.Fatal("more than one tongue")
		}
		prevScore, prevSpeed = l.Score(), l.Speed()
	}
}

func TestLevelDeterminism(t *testing.T) {
	play := func() Snapshot {
		l := NewLevel(LevelConfig{Width: 16, Height: 12, Seed: 12345})
		for i := 0; i < 600; i++ {
			if i%45 == 0 {
				l.bird.EnableCapacity()
			}
			l.Tick(frame)
		}
		return l.Snapshot()
	}

	if a, b := play(), play(); !reflect.DeepEqual(a, b) {
		t.Error("same seed and inputs should give the same level")
	}
}

func TestTileRow(t *testing.T) {
	r := NewTileRow(5)
	r.Destroy(1)
	r.Destroy(3)
	r.Destroy(9)

	if got := r.VoidTiles(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("VoidTiles() = %v, expected [1 3]", got)
	}
	if !r.MarkRepairing(3) {
		t.Error("MarkRepairing(3) should reserve a broken tile")
	}
	if r.MarkRepairing(3) {
		t.Error("a tile may only be reserved once")
	}
	if r.MarkRepairing(0) {
		t.Error("an intact tile cannot be reserved")
	}
	if got := r.VoidTiles(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("VoidTiles() = %v, expected [1]", got)
	}

	r.Repair(3)
	if tile := r.At(3); !tile.Exists || tile.Repairing {
		t.Errorf("Repair(3) = %+v", tile)
	}
	if r.Len() != 5 {
		t.Errorf("Len() = %d, expected 5", r.Len())
	}
	if r.Exists(-1) || r.Exists(5) {
		t.Error("out-of-range tiles do not exist")
	}
}

func TestTileIndexClamps(t *testing.T) {
	l := newTestLevel(10, 10, VariantTongue)
	tests := []struct {
		x    float64
		want int
	}{
		{-3, 0},
		{0.2, 0},
		{9.9, 9},
		{10, 9},
		{42, 9},
	}
	for _, tc := range tests {
		if got := l.tileIndex(tc.x); got != tc.want {
			t.Errorf("tileIndex(%v) = %d, expected %d", tc.x, got, tc.want)
		}
	}
}
