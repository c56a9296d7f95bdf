package compositor

import (
	"image"
	"testing"
	"time"

	"deedles.dev/wlcomp/pointer"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"deedles.dev/wlcomp/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHardware struct {
	accept bool
	shown  []*Surface
}

func (hw *fakeHardware) InitializeHardware(*wl.Server) error { return nil }

func (hw *fakeHardware) SetDirectRenderSurface(s *Surface) bool {
	if !hw.accept {
		return false
	}
	hw.shown = append(hw.shown, s)
	return true
}

func setup(t *testing.T) (*Compositor, *recordingEmbedder, *testClient, *proxy, *proxy) {
	var e recordingEmbedder
	c := newTestCompositor(t, &e)
	tc := connect(t, c)
	comp := tc.bind(protocol.CompositorInterface, protocol.CompositorVersion)
	shmp := tc.bind(protocol.ShmInterface, protocol.ShmVersion)
	return c, &e, tc, comp, shmp
}

func TestSurfaceCreatedNotifiesEmbedder(t *testing.T) {
	c, e, tc, comp, _ := setup(t)

	_, s1 := tc.createSurface(comp)
	_, s2 := tc.createSurface(comp)

	assert.Equal(t, []*Surface{s1, s2}, e.created)
	assert.Equal(t, []*Surface{s1, s2}, c.Surfaces())
	assert.Equal(t, []*Surface{s1, s2}, c.SurfacesForClient(tc.client))
}

func TestLastAttachWins(t *testing.T) {
	_, _, tc, comp, shmp := setup(t)
	surface, s := tc.createSurface(comp)

	b1 := tc.createBuffer(shmp, 4, 4)
	b2 := tc.createBuffer(shmp, 8, 2)
	tc.attach(surface, b1)
	tc.attach(surface, b2)
	tc.commit(surface)
	tc.roundtrip()

	require.NotNil(t, s.Buffer())
	assert.Equal(t, b2.id, s.Buffer().ID())
	assert.Equal(t, image.Pt(8, 2), s.Size())
}

func TestNothingAppliesBeforeCommit(t *testing.T) {
	c, _, tc, comp, shmp := setup(t)
	surface, s := tc.createSurface(comp)

	b := tc.createBuffer(shmp, 4, 4)
	tc.attach(surface, b)
	tc.roundtrip()

	assert.Nil(t, s.Buffer())
	assert.False(t, s.Dirty())
	assert.Empty(t, c.Dirty())
}

func TestDamageIsClippedToBuffer(t *testing.T) {
	_, _, tc, comp, shmp := setup(t)
	surface, s := tc.createSurface(comp)

	tc.attach(surface, tc.createBuffer(shmp, 4, 4))
	tc.send(surface, protocol.SurfaceRequestDamage, func(mb *wire.MessageBuilder) {
		mb.WriteInt(2)
		mb.WriteInt(2)
		mb.WriteInt(100)
		mb.WriteInt(100)
	})
	tc.commit(surface)
	tc.roundtrip()

	assert.Equal(t, image.Rect(2, 2, 4, 4), s.Damaged())
}

func TestFrameCallbackFiresOnceAfterCommit(t *testing.T) {
	c, _, tc, comp, shmp := setup(t)
	surface, s := tc.createSurface(comp)

	tc.attach(surface, tc.createBuffer(shmp, 4, 4))
	cb := tc.frame(surface)
	tc.roundtrip()

	c.FinishAllFrames()
	assert.Empty(t, filter(tc.roundtrip(), cb, protocol.CallbackEventDone), "callback fired before commit")

	tc.commit(surface)
	tc.roundtrip()
	assert.True(t, s.Dirty())
	assert.Equal(t, []*Surface{s}, c.Dirty())

	c.FinishAllFrames()
	assert.Len(t, filter(tc.roundtrip(), cb, protocol.CallbackEventDone), 1)
	assert.False(t, s.Dirty())

	c.MarkDirty(s)
	c.FinishAllFrames()
	assert.Empty(t, filter(tc.roundtrip(), cb, protocol.CallbackEventDone), "callback fired twice")
}

func TestFinishFrameIgnoresCleanSurface(t *testing.T) {
	c, _, tc, comp, _ := setup(t)
	_, s := tc.createSurface(comp)

	var finished int
	c.FrameFinished = func(*Surface) { finished++ }

	c.FinishFrame(s)
	assert.Zero(t, finished)

	c.MarkDirty(s)
	c.MarkDirty(s)
	assert.Len(t, c.Dirty(), 1)

	c.FinishFrame(s)
	assert.Equal(t, 1, finished)
	assert.Empty(t, c.Dirty())
}

func TestFinishAllFramesUsesSnapshot(t *testing.T) {
	c, _, tc, comp, _ := setup(t)
	_, s1 := tc.createSurface(comp)
	_, s2 := tc.createSurface(comp)

	finished := make(map[*Surface]int)
	c.FrameFinished = func(s *Surface) {
		finished[s]++
		if s == s1 {
			c.MarkDirty(s1)
		}
	}

	c.MarkDirty(s1)
	c.MarkDirty(s2)
	c.FinishAllFrames()

	assert.Equal(t, 1, finished[s1])
	assert.Equal(t, 1, finished[s2])
	assert.Equal(t, []*Surface{s1}, c.Dirty())
	assert.True(t, s1.Dirty())
	assert.False(t, s2.Dirty())
}

func TestReplacedBufferIsReleasedAfterFrame(t *testing.T) {
	c, _, tc, comp, shmp := setup(t)
	surface, s := tc.createSurface(comp)

	b1 := tc.createBuffer(shmp, 4, 4)
	b2 := tc.createBuffer(shmp, 4, 4)

	tc.attach(surface, b1)
	tc.commit(surface)
	tc.roundtrip()
	c.FinishAllFrames()
	tc.roundtrip()

	tc.attach(surface, b2)
	tc.commit(surface)
	events := tc.roundtrip()
	assert.Empty(t, filter(events, b1, protocol.BufferEventRelease), "released before the frame finished")

	c.FinishAllFrames()
	events = tc.roundtrip()
	assert.Len(t, filter(events, b1, protocol.BufferEventRelease), 1)
	assert.Empty(t, filter(events, b2, protocol.BufferEventRelease))
	assert.Equal(t, b2.id, s.Buffer().ID())
	assert.Same(t, s, s.Buffer().Holder())

	old := c.buffers[tc.client.Get(b1.id).(*wl.Buffer)]
	require.NotNil(t, old)
	assert.True(t, old.Released())
	assert.Nil(t, old.Holder())
}

func TestBufferHeldByAnotherSurface(t *testing.T) {
	c, _, tc, comp, shmp := setup(t)
	other := connect(t, c)
	otherComp := other.bind(protocol.CompositorInterface, protocol.CompositorVersion)
	_, otherSurface := other.createSurface(otherComp)

	s1, _ := tc.createSurface(comp)
	s2, _ := tc.createSurface(comp)
	b := tc.createBuffer(shmp, 4, 4)
	tc.attach(s1, b)
	tc.attach(s2, b)

	events := tc.waitClosed()
	errs := filter(events, tc.display, protocol.DisplayEventError)
	require.Len(t, errs, 1)
	errs[0].ReadUint()
	assert.Equal(t, wire.ErrorInvalidObject, errs[0].ReadUint())

	assert.Empty(t, c.SurfacesForClient(tc.client))
	assert.Equal(t, []*Surface{otherSurface}, c.Surfaces())

	other.roundtrip()
	assert.False(t, otherSurface.Destroyed())
}

func TestClientDisconnectDestroysSurfaces(t *testing.T) {
	c, e, tc, comp, _ := setup(t)
	_, s1 := tc.createSurface(comp)
	_, s2 := tc.createSurface(comp)

	tc.conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for (len(e.destroyed) < 2) && time.Now().Before(deadline) {
		dispatch(t, c)
	}

	assert.ElementsMatch(t, []*Surface{s1, s2}, e.destroyed)
	assert.Empty(t, c.Surfaces())
	assert.True(t, s1.Destroyed())
	assert.Empty(t, c.Clients())
}

func TestDestroyedSurfaceLosesFocus(t *testing.T) {
	c, e, tc, comp, _ := setup(t)
	input := c.InitializeDefaultInputDevice(protocol.SeatCapabilityPointer | protocol.SeatCapabilityKeyboard)
	surface, s := tc.createSurface(comp)

	input.SetMouseFocus(s, pointer.PointF{X: 1, Y: 2})
	input.SetKeyboardFocus(s)
	input.SendMousePress(pointer.LeftButton)
	require.Equal(t, pointer.LeftButton, input.Buttons())

	tc.send(surface, protocol.SurfaceRequestDestroy, nil)
	tc.roundtrip()

	assert.Nil(t, input.MouseFocus())
	assert.Nil(t, input.KeyboardFocus())
	assert.Equal(t, pointer.NoButton, input.Buttons())
	assert.Equal(t, []*Surface{s}, e.destroyed)
	assert.Nil(t, c.SurfaceByID(tc.client, surface.id))

	input.SetMouseFocus(s, pointer.PointF{X: 1, Y: 2})
	input.SendMouseMove(s, pointer.PointF{X: 2, Y: 3})
	input.SetKeyboardFocus(s)
	assert.Nil(t, input.MouseFocus())
	assert.Nil(t, input.KeyboardFocus())

	hw := fakeHardware{accept: true}
	require.NoError(t, c.InitializeHardwareIntegration(&hw))
	assert.ErrorIs(t, c.SetDirectRenderSurface(s), ErrSurfaceDestroyed)
	assert.Nil(t, c.DirectRenderSurface())
	assert.Empty(t, hw.shown)
}

func TestDirectRenderSurface(t *testing.T) {
	c, _, tc, comp, _ := setup(t)
	_, s1 := tc.createSurface(comp)
	surface2, s2 := tc.createSurface(comp)

	assert.ErrorIs(t, c.SetDirectRenderSurface(s1), ErrHardwareIntegrationUnavailable)
	assert.Nil(t, c.DirectRenderSurface())

	hw := fakeHardware{accept: true}
	require.NoError(t, c.InitializeHardwareIntegration(&hw))

	require.NoError(t, c.SetDirectRenderSurface(s1))
	require.NoError(t, c.SetDirectRenderSurface(s2))
	assert.Same(t, s2, c.DirectRenderSurface())

	hw.accept = false
	assert.ErrorIs(t, c.SetDirectRenderSurface(s1), ErrHardwareIntegrationUnavailable)
	assert.Same(t, s2, c.DirectRenderSurface())

	hw.accept = true
	tc.send(surface2, protocol.SurfaceRequestDestroy, nil)
	tc.roundtrip()
	assert.Nil(t, c.DirectRenderSurface())
	assert.Equal(t, []*Surface{s1, s2, nil}, hw.shown)
}

func TestUnknownMouseButtonIsDropped(t *testing.T) {
	c, _, tc, comp, _ := setup(t)
	input := c.InitializeDefaultInputDevice(protocol.SeatCapabilityPointer)
	_, s := tc.createSurface(comp)

	seat := tc.bind(protocol.SeatInterface, protocol.SeatVersion)
	ptr := tc.newProxy(protocol.PointerInterface)
	tc.send(seat, protocol.SeatRequestGetPointer, func(mb *wire.MessageBuilder) {
		mb.WriteUint(ptr.id)
	})
	tc.roundtrip()

	input.SetMouseFocus(s, pointer.PointF{X: 3, Y: 4})
	events := tc.roundtrip()
	enter := filter(events, ptr, protocol.PointerEventEnter)
	require.Len(t, enter, 1)
	enter[0].ReadUint()
	assert.Equal(t, s.ID(), enter[0].ReadObject())
	assert.Equal(t, wire.FixedInt(3), enter[0].ReadFixed())

	input.SendMousePress(pointer.LeftButton)
	input.SendMousePress(pointer.MouseButton(1 << 30))
	events = tc.roundtrip()

	assert.Equal(t, pointer.LeftButton, input.Buttons())
	buttons := filter(events, ptr, protocol.PointerEventButton)
	require.Len(t, buttons, 1)
	buttons[0].ReadUint()
	buttons[0].ReadUint()
	assert.Equal(t, uint32(pointer.ButtonLeft), buttons[0].ReadUint())
	assert.Equal(t, protocol.PointerButtonStatePressed, buttons[0].ReadUint())
}

func TestInvalidKeyCodeIsDropped(t *testing.T) {
	c, _, tc, comp, _ := setup(t)
	input := c.InitializeDefaultInputDevice(protocol.SeatCapabilityKeyboard)
	_, s := tc.createSurface(comp)

	seat := tc.bind(protocol.SeatInterface, protocol.SeatVersion)
	kbd := tc.newProxy(protocol.KeyboardInterface)
	tc.send(seat, protocol.SeatRequestGetKeyboard, func(mb *wire.MessageBuilder) {
		mb.WriteUint(kbd.id)
	})
	tc.roundtrip()

	input.SetKeyboardFocus(s)
	input.SendKeyPress(3)
	input.SendKeyRelease(7)
	input.SendKeyPress(30 + 8)
	events := tc.roundtrip()

	keys := filter(events, kbd, protocol.KeyboardEventKey)
	require.Len(t, keys, 1)
	keys[0].ReadUint()
	keys[0].ReadUint()
	assert.Equal(t, uint32(30), keys[0].ReadUint())
	assert.Equal(t, protocol.KeyboardKeyStatePressed, keys[0].ReadUint())
}

func TestTouchExtensionSkipsStationaryPoints(t *testing.T) {
	c, _, tc, comp, _ := setup(t)
	input := c.InitializeDefaultInputDevice(protocol.SeatCapabilityTouch)
	c.EnableTouchExtension()
	c.ConfigureTouchExtension(protocol.TouchExtensionFlagsMouseFromTouch)
	tc.roundtrip()

	ext := tc.bind(protocol.TouchExtensionInterface, protocol.TouchExtensionVersion)
	events := tc.roundtrip()
	configure := filter(events, ext, protocol.TouchExtensionEventConfigure)
	require.Len(t, configure, 1)
	assert.Equal(t, protocol.TouchExtensionFlagsMouseFromTouch, configure[0].ReadUint())

	_, s := tc.createSurface(comp)
	s.SetPos(image.Pt(10, 20))
	input.SetMouseFocus(s, pointer.PointF{})

	raw := make([]pointer.PointF, 30)
	for i := range raw {
		raw[i] = pointer.PointF{X: float64(i), Y: 1}
	}
	input.SendFullTouchEvent([]pointer.TouchPoint{
		{ID: 1, State: pointer.TouchPointPressed, Pos: pointer.PointF{X: 15.5, Y: 25}, Pressure: 1, RawPositions: raw},
		{ID: 2, State: pointer.TouchPointStationary, Pos: pointer.PointF{X: 50, Y: 50}},
		{ID: 3, State: pointer.TouchPointMoved, Pos: pointer.PointF{X: 12, Y: 22}},
	})
	events = tc.roundtrip()

	touches := filter(events, ext, protocol.TouchExtensionEventTouch)
	require.Len(t, touches, 2)

	first := touches[0]
	first.ReadUint()
	assert.Equal(t, uint32(1), first.ReadUint())
	assert.Equal(t, uint32(pointer.TouchPointPressed)|2<<16, first.ReadUint())
	assert.Equal(t, int32(55000), first.ReadInt())
	assert.Equal(t, int32(50000), first.ReadInt())
	for i := 0; i < 4; i++ {
		first.ReadInt()
	}
	assert.Equal(t, uint32(255), first.ReadUint())
	first.ReadInt()
	first.ReadInt()
	first.ReadUint()
	assert.Len(t, first.ReadArray(), MaxRawPositions*2*4)
	require.NoError(t, first.Err())

	second := touches[1]
	second.ReadUint()
	assert.Equal(t, uint32(3), second.ReadUint())
	assert.Equal(t, uint32(pointer.TouchPointMoved)|2<<16, second.ReadUint())
}

func TestTouchFallsBackToSeat(t *testing.T) {
	c, _, tc, comp, _ := setup(t)
	input := c.InitializeDefaultInputDevice(protocol.SeatCapabilityTouch)
	c.EnableTouchExtension()
	tc.roundtrip()

	seat := tc.bind(protocol.SeatInterface, protocol.SeatVersion)
	touch := tc.newProxy(protocol.TouchInterface)
	tc.send(seat, protocol.SeatRequestGetTouch, func(mb *wire.MessageBuilder) {
		mb.WriteUint(touch.id)
	})
	_, s := tc.createSurface(comp)
	s.SetPos(image.Pt(10, 10))
	input.SetMouseFocus(s, pointer.PointF{})

	input.SendFullTouchEvent([]pointer.TouchPoint{
		{ID: 7, State: pointer.TouchPointPressed, Pos: pointer.PointF{X: 12, Y: 13}},
	})
	events := tc.roundtrip()

	down := filter(events, touch, protocol.TouchEventDown)
	require.Len(t, down, 1)
	down[0].ReadUint()
	down[0].ReadUint()
	assert.Equal(t, s.ID(), down[0].ReadObject())
	assert.Equal(t, int32(7), down[0].ReadInt())
	assert.Equal(t, wire.FixedInt(2), down[0].ReadFixed())
	assert.Equal(t, wire.FixedInt(3), down[0].ReadFixed())
	assert.Len(t, filter(events, touch, protocol.TouchEventFrame), 1)
	assert.Same(t, s, input.TouchFocus())

	input.SendFullTouchEvent([]pointer.TouchPoint{
		{ID: 7, State: pointer.TouchPointReleased, Pos: pointer.PointF{X: 12, Y: 13}},
	})
	tc.roundtrip()
	assert.Nil(t, input.TouchFocus())
}

func TestScreenOrientation(t *testing.T) {
	c, _, tc, _, _ := setup(t)

	output := tc.bind(protocol.OutputInterface, protocol.OutputVersion)
	ext := tc.bind(protocol.OutputExtensionInterface, protocol.OutputExtensionVersion)
	eo := tc.newProxy(protocol.ExtendedOutputInterface)
	tc.send(ext, protocol.OutputExtensionRequestGetExtendedOutput, func(mb *wire.MessageBuilder) {
		mb.WriteUint(eo.id)
		mb.WriteUint(output.id)
	})
	events := tc.roundtrip()
	assert.Len(t, filter(events, output, protocol.OutputEventGeometry), 1)
	assert.Empty(t, filter(events, eo, protocol.ExtendedOutputEventSetScreenRotation))

	c.SetScreenOrientation(LandscapeOrientation)
	events = tc.roundtrip()
	rotation := filter(events, eo, protocol.ExtendedOutputEventSetScreenRotation)
	require.Len(t, rotation, 1)
	assert.Equal(t, int32(LandscapeOrientation), rotation[0].ReadInt())
	assert.Equal(t, LandscapeOrientation, c.ScreenOrientation())
}

func TestParseOrientation(t *testing.T) {
	for o := range orientationNames {
		parsed, err := ParseOrientation(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, parsed)
	}

	o, err := ParseOrientation(" Inverted-Landscape ")
	require.NoError(t, err)
	assert.Equal(t, InvertedLandscapeOrientation, o)

	_, err = ParseOrientation("sideways")
	assert.Error(t, err)
}

func TestOverrideSelection(t *testing.T) {
	c, _, _, _, _ := setup(t)

	c.OverrideSelection(map[string][]byte{
		"text/plain": []byte("hello"),
		"text/html":  []byte("<b>hello</b>"),
	})

	sel := c.Selection()
	assert.Nil(t, sel.Source())
	assert.Equal(t, []string{"text/html", "text/plain"}, sel.MimeTypes())
	assert.Equal(t, []byte("hello"), sel.Data()["text/plain"])
}
