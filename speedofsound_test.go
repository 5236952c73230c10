package aris

import "testing"

func TestSpeedOfSoundReferencePoint(t *testing.T) {
	// At T=0, Z=0, S=0 the polynomial collapses to its constant term.
	got := SpeedOfSound(0, 0, 0)
	if !almostEqual(got, 1402.5, 1e-9) {
		t.Fatalf("SpeedOfSound(0,0,0) = %v, want 1402.5", got)
	}
}

func TestSpeedOfSoundIncreasesWithTemperatureNearFreezing(t *testing.T) {
	cold := SpeedOfSound(0, 0, 35)
	warm := SpeedOfSound(15, 0, 35)
	if warm <= cold {
		t.Fatalf("SpeedOfSound should increase with temperature near freezing: cold=%v warm=%v", cold, warm)
	}
}

func TestSpeedOfSoundWithinPhysicalRange(t *testing.T) {
	got := SpeedOfSound(15, 10, 35)
	if got < 1400 || got > 1550 {
		t.Fatalf("SpeedOfSound(15,10,35) = %v, outside plausible range", got)
	}
}
