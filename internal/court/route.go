package court

// Position - abstract spot on a half court
type Position string

const (
	BelowBasket   Position = "below_basket"
	LeftBlock     Position = "left_block"
	LeftElbow     Position = "left_elbow"
	LeftKey       Position = "left_key"
	RightBlock    Position = "right_block"
	RightElbow    Position = "right_elbow"
	RightKey      Position = "right_key"
	FreeThrowLine Position = "free_throw_line"
	LeftCorner3   Position = "left_corner_three"
	LeftWing3     Position = "left_wing_three"
	TopOfKey3     Position = "top_of_key_three"
	RightWing3    Position = "right_wing_three"
	RightCorner3  Position = "right_corner_three"
)

// Route is an ordered, read-only waypoint table.
type Route struct {
	name      string
	waypoints []Position
}

var (
	// LongRoute: key area out, around the arc and back.
	LongRoute = Route{
		name: "long",
		waypoints: []Position{
			BelowBasket,
			LeftBlock,
			LeftKey,
			LeftElbow,
			FreeThrowLine,
			RightElbow,
			RightKey,
			RightBlock,
			RightCorner3,
			RightWing3,
			TopOfKey3,
			LeftWing3,
			LeftCorner3,
			BelowBasket,
		},
	}

	ShortRoute = Route{
		name: "short",
		waypoints: []Position{
			BelowBasket,
			FreeThrowLine,
			RightCorner3,
			RightWing3,
			TopOfKey3,
			LeftWing3,
			LeftCorner3,
			BelowBasket,
		},
	}
)

// RouteFor selects the table for the long-route setting.
func RouteFor(long bool) Route {
	if long {
		return LongRoute
	}
	return ShortRoute
}

func (r Route) Name() string { return r.name }

func (r Route) Len() int { return len(r.waypoints) }

// At returns the waypoint for a progress index. ok is false once the
// progress is past the last waypoint.
func (r Route) At(progress int) (Position, bool) {
	if progress < 0 || progress >= len(r.waypoints) {
		return "", false
	}
	return r.waypoints[progress], true
}

// Finished reports whether a player with this progress has completed the route.
func (r Route) Finished(progress int) bool {
	return progress >= len(r.waypoints)
}
