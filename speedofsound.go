package aris

// SpeedOfSound computes the speed of sound in water (m/s) from temperature
// T (Celsius), depth Z (meters) and salinity S (ppt), using the polynomial
// approximation the sonar's control path uses to convert user-supplied
// focus ranges into sample delays.
func SpeedOfSound(temperatureC, depthM, salinityPPT float64) float64 {
	t := temperatureC
	z := depthM
	s := salinityPPT

	return 1402.5 +
		5*t -
		5.44e-2*t*t +
		2.1e-4*t*t*t +
		1.33*s -
		1.23e-2*s*t +
		8.7e-5*s*t*t +
		1.56e-2*z +
		2.55e-7*z*z -
		7.3e-12*z*z*z
}
