package compositor

import (
	"deedles.dev/wlcomp/pointer"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
)

// MaxRawPositions is the largest number of raw positions that are sent
// with a single touch point. Extra positions are dropped.
const MaxRawPositions = 24

// TouchExtension sends complete touch points, including their size,
// pressure and velocity, to clients that bind wl_touch_extension.
type TouchExtension struct {
	c         *Compositor
	global    *wl.Global
	flags     uint32
	resources []*wl.TouchExtension
}

func newTouchExtension(c *Compositor) *TouchExtension {
	ext := TouchExtension{c: c}
	ext.global = c.server.AddGlobal(protocol.TouchExtensionInterface, protocol.TouchExtensionVersion, ext.bind)
	return &ext
}

func (ext *TouchExtension) bind(client *wl.Client, version, id uint32) error {
	r, err := wl.BindTouchExtension(client, version, id)
	if err != nil {
		return err
	}
	ext.resources = append(ext.resources, r)
	r.OnDelete(func() { ext.resources = deleteItem(ext.resources, r) })

	r.Configure(ext.flags)
	return nil
}

// Flags returns the flags that are sent to clients when they bind.
func (ext *TouchExtension) Flags() uint32 {
	return ext.flags
}

// SetFlags changes the flags that are sent to clients that bind the
// extension from now on.
func (ext *TouchExtension) SetFlags(flags uint32) {
	ext.flags = flags
}

func toFixed(v float64) int32 {
	return int32(v * 10000)
}

// PostTouchEvent sends the points of a touch event to the client that
// owns s. Positions are converted to be relative to s. Stationary
// points are not sent, and the client is expected to remember them.
// Instead of a frame event, the upper 16 bits of each point's state
// hold the number of points in the event. It returns false if the
// client has not bound the extension.
func (ext *TouchExtension) PostTouchEvent(points []pointer.TouchPoint, s *Surface) bool {
	if len(points) == 0 {
		return false
	}

	var sent uint32
	for _, tp := range points {
		if tp.State != pointer.TouchPointStationary {
			sent++
		}
	}

	time := ext.c.CurrentTimeMsecs()
	origin := pointer.PointF{X: float64(s.pos.X), Y: float64(s.pos.Y)}

	var posted bool
	for _, r := range ext.resources {
		if r.Client() != s.Client() {
			continue
		}
		posted = true

		for _, tp := range points {
			if tp.State == pointer.TouchPointStationary {
				continue
			}

			raw := tp.RawPositions
			if len(raw) > MaxRawPositions {
				raw = raw[:MaxRawPositions]
			}
			rawPositions := make([]float32, 0, 2*len(raw))
			for _, p := range raw {
				rawPositions = append(rawPositions, float32(p.X), float32(p.Y))
			}

			p := tp.Pos.Sub(origin)
			r.Touch(wl.TouchPoint{
				Time:         time,
				ID:           uint32(tp.ID),
				State:        (uint32(tp.State) & 0xFFFF) | (sent << 16),
				X:            toFixed(p.X),
				Y:            toFixed(p.Y),
				NormalizedX:  toFixed(tp.NormalizedPos.X),
				NormalizedY:  toFixed(tp.NormalizedPos.Y),
				Width:        toFixed(tp.Size.X),
				Height:       toFixed(tp.Size.Y),
				Pressure:     uint32(tp.Pressure * 255),
				VelocityX:    toFixed(tp.Velocity.X),
				VelocityY:    toFixed(tp.Velocity.Y),
				Flags:        tp.Flags,
				RawPositions: rawPositions,
			})
		}
	}
	return posted
}
