package scrape

import "strings"

// MassEstimates are the payload masses, in kilograms, substituted when the
// source lists the mass as unknown. They are approximations per orbit class,
// not measurements.
type MassEstimates struct {
	LEO     string
	GTO     string
	Default string
}

// DefaultMassEstimates returns the canonical estimates.
func DefaultMassEstimates() MassEstimates {
	return MassEstimates{LEO: "16300", GTO: "6000", Default: "3000"}
}

// EstimateMass substitutes an orbit-based estimate when mass starts with
// "Unknown"; any other value is returned as is.
func EstimateMass(mass, orbit string, est MassEstimates) string {
	if !strings.HasPrefix(mass, "Unknown") {
		return mass
	}
	switch {
	case strings.HasPrefix(orbit, "LEO"):
		return est.LEO
	case strings.HasPrefix(orbit, "GTO"):
		return est.GTO
	default:
		return est.Default
	}
}

func (e MassEstimates) withDefaults() MassEstimates {
	def := DefaultMassEstimates()
	if e.LEO == "" {
		e.LEO = def.LEO
	}
	if e.GTO == "" {
		e.GTO = def.GTO
	}
	if e.Default == "" {
		e.Default = def.Default
	}
	return e
}
