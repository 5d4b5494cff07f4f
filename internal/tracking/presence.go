package tracking

import "time"

// Presence turns polled pointer samples into Move and Leave events, for
// hosts that poll input once per tick instead of receiving callbacks.
type Presence struct {
	x, y   float64
	inside bool
}

// Sample reports the event implied by the pointer being at (x, y), or false
// when nothing changed since the previous sample.
func (p *Presence) Sample(x, y float64, inside bool, at time.Duration) (Event, bool) {
	was := p.inside
	moved := x != p.x || y != p.y
	p.inside = inside
	if !inside {
		if was {
			return Event{At: at, Kind: EventLeave}, true
		}
		return Event{}, false
	}
	p.x, p.y = x, y
	if was && !moved {
		return Event{}, false
	}
	return Event{X: x, Y: y, At: at}, true
}
