package normalization

import (
	"math"
	"strings"
)

// Dimension handling is canonicalized to centimeters at the write boundary;
// everything downstream (CBM, volume class) works in the canonical unit.

const maxDimensionCm = 100000

// NormalizeToCm converts a dimension to centimeters. Unknown units and
// negative values yield ok=false.
func NormalizeToCm(value float64, unit string) (float64, bool) {
	if value < 0 {
		return 0, false
	}
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "mm":
		return value / 10, true
	case "cm":
		return value, true
	case "m":
		return value * 100, true
	case "in":
		return value * 2.54, true
	}
	return 0, false
}

// CalculateCBM derives cubic meters from centimeter dimensions, rounded to
// six decimals. Zero, negative, or absurd (> 100000 cm) dimensions yield
// ok=false.
func CalculateCBM(widthCm, heightCm, depthCm float64) (float64, bool) {
	for _, d := range []float64{widthCm, heightCm, depthCm} {
		if d <= 0 || d > maxDimensionCm {
			return 0, false
		}
	}
	cbm := (widthCm * heightCm * depthCm) / 1e6
	return math.Round(cbm*1e6) / 1e6, true
}

// VolumeClass buckets a CBM figure for freight planning.
func VolumeClass(cbm float64) string {
	switch {
	case cbm <= 0:
		return "unknown"
	case cbm < 0.1:
		return "parcel"
	case cbm < 1:
		return "pallet"
	default:
		return "freight"
	}
}

// TimelineClass names the phase a timeline step belongs to. Steps 4-6 are
// the evidence-bearing production, QC, and shipping steps.
func TimelineClass(stepNumber int) string {
	switch {
	case stepNumber <= 0:
		return "unknown"
	case stepNumber < 4:
		return "design"
	case stepNumber == 4:
		return "production"
	case stepNumber == 5:
		return "quality"
	case stepNumber == 6:
		return "shipping"
	default:
		return "delivery"
	}
}
