package aris

// FrameRateParams bundles the inputs to MaxFrameRate so the call site
// doesn't have to thread eight positional arguments through.
type FrameRateParams struct {
	SystemType             SystemType
	PingMode               PingMode
	SamplesPerBeam         uint32
	SampleStartDelayUs     uint32
	SamplePeriodUs         uint32
	AntiAliasingUs         float64
	EnableInterpacketDelay bool
	InterpacketDelayUs     float64
}

// cyclePeriodFudge is the fixed additive constant (microseconds) in the
// minimum-cycle-period calculation; see the Glossary.
const cyclePeriodFudge = 420

func cpaFactor(systemType SystemType, samplePeriodUs uint32) float64 {
	switch systemType {
	case SystemTypeAris3000:
		if samplePeriodUs <= 4 {
			return 0.076
		}
		return 0.026
	case SystemTypeAris1800:
		if samplePeriodUs <= 4 {
			return 0.053
		}
		return 0.026
	case SystemTypeAris1200:
		return 0.011
	default:
		return 0.011
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MaxFrameRate computes the maximum achievable frame rate (frames per
// second, clamped to [1.0, 15.0]) for the given acquisition parameters.
func MaxFrameRate(p FrameRateParams) float64 {
	ppf := float64(p.PingMode.PingsPerFrame())
	nob := float64(p.PingMode.Beams())
	spb := float64(p.SamplesPerBeam)

	mcp := float64(p.SampleStartDelayUs) + float64(p.SamplePeriodUs)*spb + cyclePeriodFudge
	cpa1 := mcp*cpaFactor(p.SystemType, p.SamplePeriodUs) + p.AntiAliasingUs

	var mfp float64
	if p.EnableInterpacketDelay {
		packets := float64(int64((nob*spb + 1024) / 1392))
		mfp = ppf*(mcp+cpa1) + packets*(16.6+p.InterpacketDelayUs)
	} else {
		mfp = ppf * (mcp + cpa1)
	}

	return clamp(1_000_000/mfp, 1.0, 15.0)
}
