package apcemm

import "math"

// SolarClock anchors the solar-zenith-angle calculation used to gate
// photolysis: LatDeg and DayOfYear select the declination, and StartUTC is
// the UTC hour of day at simulated t=0.
type SolarClock struct {
	LatDeg    float64
	DayOfYear int
	StartUTC  float64 // UTC hour, 0-24
}

// CosSZA returns the cosine of the solar zenith angle for the given
// latitude [degrees], day of year [1-366], and UTC hour of day [0-24).
// A negative or zero result means the sun is below the horizon.
func CosSZA(latDeg float64, dayOfYear int, utcHour float64) float64 {
	const deg = math.Pi / 180

	// Solar declination (Cooper's approximation).
	decl := 23.45 * deg * math.Sin(2*math.Pi*(284+float64(dayOfYear))/365)

	lat := latDeg * deg

	// Hour angle: 0 at local solar noon, 15 deg/hour. We treat utcHour as
	// local solar time, which is sufficient for a single-point plume
	// simulation where longitude is not separately tracked.
	hourAngle := (utcHour - 12) * 15 * deg

	csza := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(hourAngle)
	return csza
}

// SunriseSunsetHours returns the UTC hours of sunrise and sunset for the
// given latitude and day of year, assuming CosSZA crosses zero exactly
// twice per day (true outside the polar regions for the troposphere/
// stratosphere latitudes this model targets).
func SunriseSunsetHours(latDeg float64, dayOfYear int) (sunrise, sunset float64, hasBoth bool) {
	const deg = math.Pi / 180
	decl := 23.45 * deg * math.Sin(2*math.Pi*(284+float64(dayOfYear))/365)
	lat := latDeg * deg

	cosH := -math.Tan(lat) * math.Tan(decl)
	if cosH < -1 || cosH > 1 {
		return 0, 0, false
	}
	H := math.Acos(cosH) / deg / 15 // hours from solar noon
	return 12 - H, 12 + H, true
}

// updateSolar recomputes the cosine solar zenith angle and the NO2
// photolysis rate it implies for simulated time tNow, caching both on sim
// so every chemistry call within the current step sees an actual light
// field instead of a stale or zero one. Photol, when loaded, is consulted
// in preference to leaving the clear-sky fallback formula to the
// mechanism.
func (sim *Simulation) updateSolar(tNow float64) {
	utcHour := math.Mod(sim.Solar.StartUTC+tNow/3600, 24)
	if utcHour < 0 {
		utcHour += 24
	}
	sim.cosSZA = CosSZA(sim.Solar.LatDeg, sim.Solar.DayOfYear, utcHour)

	sim.jNO2 = 0
	if sim.Photol != nil {
		if j, err := sim.Photol.Rate("JNO2", sim.cosSZA); err == nil {
			sim.jNO2 = j
		}
	}
}
