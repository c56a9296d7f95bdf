package pointer

import "math"

// TouchPointState is the state of a single touch point within a touch
// event. The values are bits so that the states of all of the points
// in an event can be combined.
type TouchPointState uint32

const (
	TouchPointPressed    TouchPointState = 0x01
	TouchPointMoved      TouchPointState = 0x02
	TouchPointStationary TouchPointState = 0x04
	TouchPointReleased   TouchPointState = 0x08
)

func (s TouchPointState) String() string {
	switch s {
	case TouchPointPressed:
		return "pressed"
	case TouchPointMoved:
		return "moved"
	case TouchPointStationary:
		return "stationary"
	case TouchPointReleased:
		return "released"
	default:
		return "mixed"
	}
}

// PointF is a point with fractional coordinates.
type PointF struct {
	X, Y float64
}

func (p PointF) Add(q PointF) PointF {
	return PointF{p.X + q.X, p.Y + q.Y}
}

func (p PointF) Sub(q PointF) PointF {
	return PointF{p.X - q.X, p.Y - q.Y}
}

// Round returns p rounded to the nearest whole coordinates and the
// difference between p and the rounded point.
func (p PointF) Round() (whole, frac PointF) {
	whole = PointF{math.Round(p.X), math.Round(p.Y)}
	return whole, p.Sub(whole)
}

// TouchPoint is a single finger or stylus contact.
type TouchPoint struct {
	ID    int32
	State TouchPointState
	Flags uint32

	// Pos is the center of the contact in global coordinates and Size
	// is the size of the contact area.
	Pos  PointF
	Size PointF

	NormalizedPos PointF
	Pressure      float64
	Velocity      PointF
	RawPositions  []PointF
}

// States returns the union of the states of points.
func States(points []TouchPoint) (states TouchPointState) {
	for _, p := range points {
		states |= p.State
	}
	return states
}

// Reconciler keeps the history that is needed to turn touch points
// that arrive one at a time into complete touch events. Transports
// omit points that have not changed since the previous event, so each
// event is completed with the missing points, marked as stationary.
type Reconciler struct {
	// Terminal causes an empty event to be delivered after an event in
	// which every point was released.
	Terminal bool

	current  []TouchPoint
	previous []TouchPoint
}

// Add adds a point to the event that is being built.
func (r *Reconciler) Add(p TouchPoint) {
	r.current = append(r.current, p)
}

// Previous returns the point with the given ID from the last
// delivered event.
func (r *Reconciler) Previous(id int32) (TouchPoint, bool) {
	for _, p := range r.previous {
		if p.ID == id {
			return p, true
		}
	}
	return TouchPoint{}, false
}

// Frame completes the event being built. Points that were in the
// previous event and have not been released are carried forward as
// stationary if they are missing from the current one. deliver is
// called with the complete event unless it is empty. Once every point
// has been released the history is cleared.
func (r *Reconciler) Frame(deliver func(points []TouchPoint)) {
	for _, prev := range r.previous {
		if prev.State == TouchPointReleased {
			continue
		}
		if !r.has(prev.ID) {
			prev.State = TouchPointStationary
			r.current = append(r.current, prev)
		}
	}

	if len(r.current) == 0 {
		r.previous = nil
		return
	}

	points := r.current
	deliver(points)

	r.previous = points
	r.current = nil

	if States(points) == TouchPointReleased {
		if r.Terminal {
			deliver(nil)
		}
		r.previous = nil
	}
}

// Cancel discards all touch history.
func (r *Reconciler) Cancel() {
	r.current = nil
	r.previous = nil
}

// Pending returns the number of points added since the last frame.
func (r *Reconciler) Pending() int {
	return len(r.current)
}

func (r *Reconciler) has(id int32) bool {
	for _, p := range r.current {
		if p.ID == id {
			return true
		}
	}
	return false
}
