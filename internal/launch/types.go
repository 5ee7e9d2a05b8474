// Package launch defines the normalized launch records persisted for the
// visualization front end and the validation rules applied before saving.
package launch

// Kind identifies which record schema a target produces.
type Kind string

// Supported record schemas.
const (
	KindFalcon Kind = "falcon"
	KindWorld  Kind = "world"
)

// Valid reports whether k names a known schema.
func (k Kind) Valid() bool {
	return k == KindFalcon || k == KindWorld
}

// Entry is implemented by every record schema so merging, renumbering and
// validation can be written once.
type Entry[R any] interface {
	FlightNumber() int
	Timestamp() string
	Renumbered(flight int) R
	MissingFields() []string
}

// Launch is one rocket-flight row (the SpaceXLaunch schema).
type Launch struct {
	Flight  int    `json:"flight"`
	Time    string `json:"time"`
	Rocket  string `json:"rocket"`
	Site    string `json:"site"`
	Mission string `json:"mission"`
	Mass    string `json:"mass"`
	Orbit   string `json:"orbit"`
}

// FlightNumber returns the sequence number.
func (l Launch) FlightNumber() int { return l.Flight }

// Timestamp returns the normalized date/time string.
func (l Launch) Timestamp() string { return l.Time }

// Renumbered returns a copy carrying the given flight number.
func (l Launch) Renumbered(flight int) Launch {
	l.Flight = flight
	return l
}

// MissingFields lists required fields that are blank.
func (l Launch) MissingFields() []string {
	return blanks(
		field{"time", l.Time},
		field{"rocket", l.Rocket},
		field{"site", l.Site},
		field{"mission", l.Mission},
		field{"mass", l.Mass},
		field{"orbit", l.Orbit},
	)
}

// Org identifies the operating organization of a world launch.
type Org struct {
	Country string `json:"country"`
	Info    string `json:"info"`
}

// WorldLaunch is one row of the world-wide launch lists.
type WorldLaunch struct {
	Flight  int    `json:"flight"`
	Time    string `json:"time"`
	Rocket  string `json:"rocket"`
	Mission string `json:"mission"`
	Site    string `json:"site"`
	Org     Org    `json:"org"`
}

// FlightNumber returns the sequence number.
func (w WorldLaunch) FlightNumber() int { return w.Flight }

// Timestamp returns the normalized date/time string. The year is implied by
// the window the record came from.
func (w WorldLaunch) Timestamp() string { return w.Time }

// Renumbered returns a copy carrying the given flight number.
func (w WorldLaunch) Renumbered(flight int) WorldLaunch {
	w.Flight = flight
	return w
}

// MissingFields lists required fields that are blank.
func (w WorldLaunch) MissingFields() []string {
	return blanks(
		field{"time", w.Time},
		field{"rocket", w.Rocket},
		field{"site", w.Site},
		field{"org.country", w.Org.Country},
		field{"org.info", w.Org.Info},
	)
}

type field struct {
	name  string
	value string
}

func blanks(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if isBlank(f.value) {
			out = append(out, f.name)
		}
	}
	return out
}
