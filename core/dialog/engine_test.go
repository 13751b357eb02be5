package dialog_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pxc1984/musicclubbot/core/dialog"
)

const testUser int64 = 100

// wizardDef is a three-step flow: collect a name, confirm it, done. The
// confirm state has no text handler, the first state rejects blank input
// after dirtying scratch so the no-save guarantee is observable.
func wizardDef() *dialog.Definition {
	return dialog.MustDefinition("wizard",
		dialog.State{
			Name: "name",
			OnText: func(rt *dialog.Runtime, text string) error {
				rt.Set("touched", true)
				if strings.TrimSpace(text) == "" {
					return dialog.Reject("name cannot be empty")
				}
				rt.Set("name", text)
				rt.Next()
				return nil
			},
			Buttons: []dialog.Button{
				{Action: "cancel", OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Done()
					return nil
				}},
			},
			Getter: func(rt *dialog.Runtime) (dialog.View, error) {
				v := dialog.View{Text: "What is your name?"}
				v.AddRow(dialog.ViewButton{Label: "Cancel", Action: "cancel"})
				return v, nil
			},
		},
		dialog.State{
			Name: "confirm",
			Buttons: []dialog.Button{
				{Action: "yes", OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Notify("saved")
					rt.Done()
					return nil
				}},
				{Action: "edit", OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.SwitchTo("name")
					return nil
				}},
				{Action: "child", OnPress: func(rt *dialog.Runtime, payload string) error {
					rt.Start("child", "", dialog.Data{"from": payload})
					return nil
				}},
				{Action: "forward", OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Next()
					return nil
				}},
			},
			Getter: func(rt *dialog.Runtime) (dialog.View, error) {
				name, _ := rt.Data().String("name")
				return dialog.View{Text: "Hello, " + name}, nil
			},
		},
	)
}

func childDef() *dialog.Definition {
	return dialog.MustDefinition("child",
		dialog.State{
			Name: "only",
			Buttons: []dialog.Button{
				{Action: "close", OnPress: func(rt *dialog.Runtime, _ string) error {
					rt.Done()
					return nil
				}},
			},
			Getter: func(rt *dialog.Runtime) (dialog.View, error) {
				from, _ := rt.StartData().String("from")
				return dialog.View{Text: "child of " + from}, nil
			},
		},
	)
}

func newTestEngine(t *testing.T) (*dialog.Engine, dialog.Store) {
	t.Helper()
	store := dialog.NewMemoryStore()
	engine, err := dialog.NewEngine(store, wizardDef(), childDef())
	require.NoError(t, err)
	return engine, store
}

func TestEngineStartRendersFirstState(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	render, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	require.False(t, render.Closed)
	require.Equal(t, "What is your name?", render.View.Text)
	require.Len(t, render.View.Rows, 1)

	active, err := engine.Active(ctx, testUser)
	require.NoError(t, err)
	require.True(t, active)
}

func TestEngineTextAdvancesAndPersists(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)

	render, err := engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)
	require.Equal(t, "Hello, Stevie", render.View.Text)

	sess, err := store.Load(ctx, testUser)
	require.NoError(t, err)
	require.Equal(t, "confirm", sess.Top().State)
	name, _ := sess.Top().Data.String("name")
	require.Equal(t, "Stevie", name)
}

func TestEngineRejectionSavesNothing(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)

	render, err := engine.HandleEvent(ctx, testUser, dialog.TextEvent("   "))
	require.NoError(t, err)
	require.Equal(t, "name cannot be empty", render.Notice)
	require.Equal(t, "What is your name?", render.View.Text)

	// The handler set "touched" before rejecting; the rejection must have
	// discarded it along with the transition.
	sess, err := store.Load(ctx, testUser)
	require.NoError(t, err)
	require.Equal(t, "name", sess.Top().State)
	require.False(t, sess.Top().Data.Bool("touched"))
}

func TestEngineTextWithoutHandlerRerenders(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)

	render, err := engine.HandleEvent(ctx, testUser, dialog.TextEvent("unsolicited"))
	require.NoError(t, err)
	require.Equal(t, "Hello, Stevie", render.View.Text)
}

func TestEngineUnknownAction(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)

	_, err = engine.HandleEvent(ctx, testUser, dialog.ButtonEvent("stale", ""))
	require.ErrorIs(t, err, dialog.ErrUnknownAction)
}

func TestEngineNestedStartAndDone(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)

	render, err := engine.HandleEvent(ctx, testUser, dialog.ButtonEvent("child", "wizard"))
	require.NoError(t, err)
	require.Equal(t, "child of wizard", render.View.Text)

	sess, err := store.Load(ctx, testUser)
	require.NoError(t, err)
	require.Equal(t, 2, sess.Depth())

	// Popping the child lands back on the parent's confirm view with its
	// scratch intact.
	render, err = engine.HandleEvent(ctx, testUser, dialog.ButtonEvent("close", ""))
	require.NoError(t, err)
	require.Equal(t, "Hello, Stevie", render.View.Text)
}

func TestEngineDoneOnLastFrameCloses(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)

	render, err := engine.HandleEvent(ctx, testUser, dialog.ButtonEvent("yes", ""))
	require.NoError(t, err)
	require.True(t, render.Closed)
	require.Equal(t, "saved", render.Notice)

	sess, err := store.Load(ctx, testUser)
	require.NoError(t, err)
	require.Equal(t, 0, sess.Depth())

	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("anyone there?"))
	require.ErrorIs(t, err, dialog.ErrNoActiveSession)
}

func TestEngineSwitchToKeepsScratch(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)

	render, err := engine.HandleEvent(ctx, testUser, dialog.ButtonEvent("edit", ""))
	require.NoError(t, err)
	require.Equal(t, "What is your name?", render.View.Text)

	sess, err := store.Load(ctx, testUser)
	require.NoError(t, err)
	name, _ := sess.Top().Data.String("name")
	require.Equal(t, "Stevie", name)
}

func TestEngineNextPastLastState(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)

	_, err = engine.HandleEvent(ctx, testUser, dialog.ButtonEvent("forward", ""))
	require.ErrorIs(t, err, dialog.ErrNoNextState)

	// The failed transition saved nothing; confirm is still active.
	render, err := engine.Render(ctx, testUser)
	require.NoError(t, err)
	require.Equal(t, "Hello, Stevie", render.View.Text)
}

func TestEngineLinearFlowExhaustsStates(t *testing.T) {
	steps := dialog.MustDefinition("steps",
		linearState("one"), linearState("two"), linearState("three"), linearState("four"),
	)
	store := dialog.NewMemoryStore()
	engine, err := dialog.NewEngine(store, steps)
	require.NoError(t, err)
	ctx := context.Background()

	render, err := engine.Start(ctx, testUser, "steps", "", nil)
	require.NoError(t, err)
	require.Equal(t, "at one", render.View.Text)

	for _, want := range []string{"at two", "at three", "at four"} {
		render, err = engine.Next(ctx, testUser)
		require.NoError(t, err)
		require.Equal(t, want, render.View.Text)
	}

	_, err = engine.Next(ctx, testUser)
	require.ErrorIs(t, err, dialog.ErrNoNextState)
}

func linearState(name string) dialog.State {
	return dialog.State{
		Name: name,
		Getter: func(rt *dialog.Runtime) (dialog.View, error) {
			return dialog.View{Text: "at " + name}, nil
		},
	}
}

func TestEngineSwitchToIsIdempotent(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)

	first, err := engine.SwitchTo(ctx, testUser, "name")
	require.NoError(t, err)
	afterFirst, err := store.Load(ctx, testUser)
	require.NoError(t, err)

	second, err := engine.SwitchTo(ctx, testUser, "name")
	require.NoError(t, err)
	afterSecond, err := store.Load(ctx, testUser)
	require.NoError(t, err)

	require.Equal(t, first.View, second.View)
	require.Equal(t, afterFirst, afterSecond)
}

func TestEngineResetStack(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.Start(ctx, testUser, "child", "", nil)
	require.NoError(t, err)

	require.NoError(t, engine.ResetStack(ctx, testUser))

	active, err := engine.Active(ctx, testUser)
	require.NoError(t, err)
	require.False(t, active)
}

func TestEngineUsersAreIsolated(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)

	other := testUser + 1
	active, err := engine.Active(ctx, other)
	require.NoError(t, err)
	require.False(t, active)

	_, err = engine.HandleEvent(ctx, other, dialog.TextEvent("hi"))
	require.ErrorIs(t, err, dialog.ErrNoActiveSession)
}

func TestEngineStartUnknownDialog(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Start(context.Background(), testUser, "nope", "", nil)
	require.ErrorIs(t, err, dialog.ErrUnknownDialog)
}

func TestNewEngineRejectsDuplicates(t *testing.T) {
	_, err := dialog.NewEngine(dialog.NewMemoryStore(), wizardDef(), wizardDef())
	require.Error(t, err)
}

func TestMustDefinitionPanicsOnDuplicateState(t *testing.T) {
	require.Panics(t, func() {
		dialog.MustDefinition("bad",
			dialog.State{Name: "a"},
			dialog.State{Name: "a"},
		)
	})
}
