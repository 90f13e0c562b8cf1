package direction

// Direction selects which end of a centroid distance ranking is returned.
type Direction string

// Direction constants.
const (
	Closest  Direction = "closest"
	Furthest Direction = "furthest"
)

// IsValid checks if the direction is one of the supported values.
func (d Direction) IsValid() bool {
	return d == Closest || d == Furthest
}
