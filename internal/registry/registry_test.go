package registry

import (
	"errors"
	"testing"

	"github.com/vovakirdan/tui-pyoro/internal/core"
)

type stubGame struct {
	id  string
	env Env
}

func (g *stubGame) ID() string { return g.id }
func (g *stubGame) Title() string { return "Stub " + g.id }
func (g *stubGame) Reset(core.RuntimeConfig) {}
func (g *stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen) {}
func (g *stubGame) State() core.GameState { return core.GameState{} }

func TestRegisterAndCreate(t *testing.T) {
	Register("stub_a", func(env Env) Game { return &stubGame{id: "stub_a", env: env} })

	if !Exists("stub_a") {
		t.Fatal("stub_a should be registered")
	}

	g, err := Create("stub_a", Env{SkipMenu: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !g.(*stubGame).env.SkipMenu {
		t.Error("Env should reach the factory")
	}

	found := false
	for _, info := range List() {
		if info.ID == "stub_a" {
			found = true
			if info.Title != "Stub stub_a" {
				t.Errorf("Title = %q", info.Title)
			}
		}
	}
	if !found {
		t.Error("List should include stub_a")
	}
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("no_such_game", Env{})
	if !errors.Is(err, ErrUnknownGame) {
		t.Errorf("err = %v, want ErrUnknownGame", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("stub_dup", func(Env) Game { return &stubGame{id: "stub_dup"} })
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("stub_dup", func(Env) Game { return &stubGame{id: "stub_dup"} })
}
