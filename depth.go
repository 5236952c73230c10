package aris

// Conversion factors by temperature band (0/5/10/15/20/25/30 C), one table
// per salinity bucket. Values are water density relative to fresh water at
// standard pressure; see the Glossary.
var (
	freshDepthCF    = [7]float64{1.000, 1.000, 1.000, 0.999, 0.998, 0.997, 0.996}
	brackishDepthCF = [7]float64{1.012, 1.012, 1.011, 1.011, 1.010, 1.008, 1.007}
	seaDepthCF      = [7]float64{1.028, 1.028, 1.027, 1.026, 1.025, 1.023, 1.022}
)

// temperatureIndex maps a temperature in Celsius onto one of the seven
// 5-degree-wide buckets, clamping below 0C and above 30C.
func temperatureIndex(temperatureC float64) int {
	if temperatureC < 0 {
		temperatureC = 0
	}
	idx := int(temperatureC/5 + 0.5)
	if idx > 6 {
		idx = 6
	}
	return idx
}

func conversionFactorTable(salinityPPT uint32) [7]float64 {
	switch {
	case salinityPPT >= 35:
		return seaDepthCF
	case salinityPPT >= 15:
		return brackishDepthCF
	default:
		return freshDepthCF
	}
}

// ConversionFactor returns the density conversion factor used by DepthM for
// the given salinity (parts per thousand) and temperature (Celsius).
func ConversionFactor(salinityPPT uint32, temperatureC float64) float64 {
	table := conversionFactorTable(salinityPPT)
	return table[temperatureIndex(temperatureC)]
}

// DepthM computes depth in meters from a pressure transducer reading in
// PSI, given the ambient salinity (ppt) and temperature (Celsius).
func DepthM(pressurePSI float64, salinityPPT uint32, temperatureC float64) float64 {
	cf := ConversionFactor(salinityPPT, temperatureC)
	return (pressurePSI - 14.6959) * 0.702398 / cf
}
