// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import "encoding/json"

// Quality ranks how precisely a candidate locates a query. Values are
// ordered so direct comparison picks the better candidate.
type Quality int

const (
	// QualityUnknown is assigned to unrecognized location types. It loses
	// against every real tier.
	QualityUnknown Quality = iota
	// QualityPlacesAPI marks candidates admitted through the Places text
	// search fallback. The Places API reports no location precision, so
	// these rank below every geocoding tier.
	QualityPlacesAPI
	// QualityApproximate corresponds to the APPROXIMATE location type.
	QualityApproximate
	// QualityGeometricCenter corresponds to GEOMETRIC_CENTER.
	QualityGeometricCenter
	// QualityRangeInterpolated corresponds to RANGE_INTERPOLATED.
	QualityRangeInterpolated
	// QualityRooftop corresponds to ROOFTOP, the most precise answer the
	// geocoder gives.
	QualityRooftop
	// QualityCoordinates marks input that already was a coordinate pair.
	// Never produced by a provider.
	QualityCoordinates
)

// ParseQuality maps a tier name to its value. The four geocoding
// location_type strings are covered, as are the two tiers this package
// assigns itself.
func ParseQuality(locationType string) Quality {
	switch locationType {
	case "COORDINATES":
		return QualityCoordinates
	case "ROOFTOP":
		return QualityRooftop
	case "RANGE_INTERPOLATED":
		return QualityRangeInterpolated
	case "GEOMETRIC_CENTER":
		return QualityGeometricCenter
	case "APPROXIMATE":
		return QualityApproximate
	case "PLACES_API":
		return QualityPlacesAPI
	default:
		return QualityUnknown
	}
}

func (q Quality) String() string {
	switch q {
	case QualityCoordinates:
		return "COORDINATES"
	case QualityRooftop:
		return "ROOFTOP"
	case QualityRangeInterpolated:
		return "RANGE_INTERPOLATED"
	case QualityGeometricCenter:
		return "GEOMETRIC_CENTER"
	case QualityApproximate:
		return "APPROXIMATE"
	case QualityPlacesAPI:
		return "PLACES_API"
	default:
		return "UNKNOWN"
	}
}

// AtLeast reports whether q ranks at or above other.
func (q Quality) AtLeast(other Quality) bool {
	return q >= other
}

// MarshalJSON renders the tier name rather than the numeric rank.
func (q Quality) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

func (q *Quality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*q = ParseQuality(s)

	return nil
}

// Strategy identifies the pipeline step that produced a candidate. Lower
// values run earlier and win quality ties.
type Strategy int

const (
	// StrategyCoordinates is the parser fast path.
	StrategyCoordinates Strategy = iota
	// StrategyDirect is the plain geocoding attempt.
	StrategyDirect
	// StrategyParish retries the query suffixed with each parish name.
	StrategyParish
	// StrategyPlaces is the Places text search fallback.
	StrategyPlaces
	// StrategyUnknown covers names parsed from storage that this version
	// does not produce.
	StrategyUnknown
)

// ParseStrategy maps a strategy name back to its value.
func ParseStrategy(name string) Strategy {
	switch name {
	case "coordinates":
		return StrategyCoordinates
	case "direct":
		return StrategyDirect
	case "parish":
		return StrategyParish
	case "places":
		return StrategyPlaces
	default:
		return StrategyUnknown
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyCoordinates:
		return "coordinates"
	case StrategyDirect:
		return "direct"
	case StrategyParish:
		return "parish"
	case StrategyPlaces:
		return "places"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the strategy name rather than the numeric value.
func (s Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Strategy) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}

	*s = ParseStrategy(name)

	return nil
}
