package pointer_test

import (
	"testing"

	"deedles.dev/wlcomp/pointer"
	"github.com/stretchr/testify/assert"
)

func TestButtonTable(t *testing.T) {
	tests := []struct {
		code pointer.Button
		want pointer.MouseButton
		ok   bool
	}{
		{0x110, pointer.LeftButton, true},
		{0x111, pointer.RightButton, true},
		{0x112, pointer.MiddleButton, true},
		{0x113, pointer.ExtraButton1, true},
		{0x114, pointer.ForwardButton, true},
		{0x11f, pointer.ExtraButton13, true},
		{0x10f, pointer.NoButton, false},
		{0x120, pointer.NoButton, false},
		{0, pointer.NoButton, false},
	}
	for _, test := range tests {
		got, ok := test.code.MouseButton()
		assert.Equal(t, test.ok, ok, "%v", test.code)
		assert.Equal(t, test.want, got, "%v", test.code)

		if ok {
			code, ok := got.Code()
			assert.True(t, ok)
			assert.Equal(t, test.code, code)
		}
	}

	_, ok := (pointer.LeftButton | pointer.RightButton).Code()
	assert.False(t, ok)
}

// Releasing a button must clear only that button's bit. Combining the
// mask with the logical negation of the button instead would drop
// every other held button as well.
func TestReleaseClearsOnlyThatButton(t *testing.T) {
	var mask pointer.MouseButton
	mask = mask.Press(pointer.LeftButton)
	mask = mask.Press(pointer.RightButton)
	assert.True(t, mask.Has(pointer.LeftButton|pointer.RightButton))

	mask = mask.Release(pointer.LeftButton)
	assert.Equal(t, pointer.RightButton, mask)
	assert.False(t, mask.Has(pointer.LeftButton))

	mask = mask.Release(pointer.LeftButton)
	assert.Equal(t, pointer.RightButton, mask)

	mask = mask.Release(pointer.RightButton)
	assert.Equal(t, pointer.NoButton, mask)
}

func ids(points []pointer.TouchPoint) map[int32]pointer.TouchPointState {
	m := make(map[int32]pointer.TouchPointState, len(points))
	for _, p := range points {
		m[p.ID] = p.State
	}
	return m
}

func TestReconcilerCarriesStationaryPoints(t *testing.T) {
	var r pointer.Reconciler
	var events [][]pointer.TouchPoint
	deliver := func(points []pointer.TouchPoint) { events = append(events, points) }

	r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointMoved})
	r.Add(pointer.TouchPoint{ID: 2, State: pointer.TouchPointMoved})
	r.Frame(deliver)

	r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointMoved})
	r.Frame(deliver)

	assert.Len(t, events, 2)
	assert.Equal(t, map[int32]pointer.TouchPointState{
		1: pointer.TouchPointMoved,
		2: pointer.TouchPointStationary,
	}, ids(events[1]))
}

func TestReconcilerDropsReleasedPoints(t *testing.T) {
	var r pointer.Reconciler
	var events [][]pointer.TouchPoint
	deliver := func(points []pointer.TouchPoint) { events = append(events, points) }

	r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointPressed})
	r.Add(pointer.TouchPoint{ID: 2, State: pointer.TouchPointPressed})
	r.Frame(deliver)

	r.Add(pointer.TouchPoint{ID: 2, State: pointer.TouchPointReleased})
	r.Frame(deliver)

	r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointMoved})
	r.Frame(deliver)

	assert.Len(t, events, 3)
	assert.Equal(t, map[int32]pointer.TouchPointState{
		1: pointer.TouchPointMoved,
	}, ids(events[2]))
}

func TestReconcilerEmptyFrame(t *testing.T) {
	var r pointer.Reconciler
	var calls int
	r.Frame(func([]pointer.TouchPoint) { calls++ })
	assert.Zero(t, calls)
}

func TestReconcilerTerminal(t *testing.T) {
	for _, terminal := range []bool{false, true} {
		r := pointer.Reconciler{Terminal: terminal}
		var events [][]pointer.TouchPoint
		deliver := func(points []pointer.TouchPoint) { events = append(events, points) }

		r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointPressed})
		r.Frame(deliver)
		r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointReleased})
		r.Frame(deliver)

		if terminal {
			assert.Len(t, events, 3)
			assert.Empty(t, events[2])
		} else {
			assert.Len(t, events, 2)
		}

		_, ok := r.Previous(1)
		assert.False(t, ok, "history should be cleared after release")
	}
}

func TestReconcilerCancel(t *testing.T) {
	var r pointer.Reconciler
	r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointPressed})
	r.Frame(func([]pointer.TouchPoint) {})
	r.Add(pointer.TouchPoint{ID: 1, State: pointer.TouchPointMoved})

	r.Cancel()
	assert.Zero(t, r.Pending())
	_, ok := r.Previous(1)
	assert.False(t, ok)
}
