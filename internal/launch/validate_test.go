package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLaunches(t *testing.T) {
	t.Parallel()

	records := []Launch{
		{Flight: 1, Time: "4 January 2025 01:27", Rocket: "B1080.10", Site: "CCSFS SLC-40", Mission: "Starlink", Mass: "16300", Orbit: "LEO"},
		{Flight: 2, Time: "6 January 2025", Rocket: "", Site: "VSFB SLC-4E", Mission: "NROL", Mass: "0", Orbit: "LEO"},
		{Flight: 3, Time: "8 January 2025", Rocket: "B1077", Site: "KSC LC-39A", Mission: "", Mass: "Classified", Orbit: ""},
	}

	warnings := Validate(records)

	assert.Equal(t, []string{
		"flight 2: missing rocket",
		`flight 2: suspicious mass "0"`,
		"flight 3: missing mission",
		"flight 3: missing orbit",
		`flight 3: non-numeric mass "Classified"`,
	}, warnings)
}

func TestValidateWorldLaunches(t *testing.T) {
	t.Parallel()

	records := []WorldLaunch{
		{Flight: 1, Time: "4 January 01:27", Rocket: "Falcon 9", Mission: "F9-418", Site: "Cape Canaveral", Org: Org{Country: "United States", Info: "SpaceX"}},
		{Flight: 2, Time: "5 January", Rocket: "Long March 2D", Site: " ", Org: Org{Info: "CASC"}},
	}

	warnings := Validate(records)

	require.Len(t, warnings, 2)
	assert.Equal(t, "flight 2: missing site", warnings[0])
	assert.Equal(t, "flight 2: missing org.country", warnings[1])
}

func TestValidateEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Validate([]Launch(nil)))
}

func TestRenumberedReturnsCopy(t *testing.T) {
	t.Parallel()

	orig := WorldLaunch{Flight: 7, Time: "1 March"}
	next := orig.Renumbered(1)

	assert.Equal(t, 7, orig.Flight)
	assert.Equal(t, 1, next.FlightNumber())
	assert.Equal(t, "1 March", next.Timestamp())
}

func TestKindValid(t *testing.T) {
	t.Parallel()

	assert.True(t, KindFalcon.Valid())
	assert.True(t, KindWorld.Valid())
	assert.False(t, Kind("lunar").Valid())
}
