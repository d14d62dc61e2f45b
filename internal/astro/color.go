package astro

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Temperature band edges in kelvin.
const (
	coolStarK  = 3500
	warmStarK  = 5000
	whiteStarK = 6000
)

var (
	starRedOrange = colorful.Color{R: 1.0, G: 0.42, B: 0.2}
	starAmber     = colorful.Color{R: 1.0, G: 0.75, B: 0.25}
	starWhite     = colorful.Color{R: 1.0, G: 1.0, B: 1.0}
	starPaleBlue  = colorful.Color{R: 0.68, G: 0.8, B: 1.0}

	planetHabitable = colorful.Color{R: 1.0, G: 1.0, B: 0.0}
	planetBarren    = colorful.Color{R: 0.0, G: 1.0, B: 0.0}

	markerRed = colorful.Color{R: 1.0, G: 0.0, B: 0.0}
)

// TemperatureColor maps a stellar effective temperature to a display color
// using fixed bands:
//
//	< 3500 K      warm red-orange
//	3500–5000 K   amber
//	5000–6000 K   white
//	>= 6000 K     pale blue
func TemperatureColor(kelvin float64) colorful.Color {
	switch {
	case kelvin < coolStarK:
		return starRedOrange
	case kelvin < warmStarK:
		return starAmber
	case kelvin < whiteStarK:
		return starWhite
	default:
		return starPaleBlue
	}
}

// PlanetColor returns yellow for planets in the habitable zone, green otherwise.
func PlanetColor(habitable bool) colorful.Color {
	if habitable {
		return planetHabitable
	}
	return planetBarren
}

// MarkerColor is the selection ring color.
func MarkerColor() colorful.Color {
	return markerRed
}
