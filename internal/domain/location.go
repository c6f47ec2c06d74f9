package domain

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/notemap-service/internal/pkg/utils"
)

// Point is the canonical coordinate: a validated latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// The oldest writer stored locations as the form's display string,
// e.g. "緯度: 35.68124, 経度: 139.76713".
var (
	latPattern = regexp.MustCompile(`緯度[:：]\s*(-?[0-9.]+)`)
	lngPattern = regexp.MustCompile(`経度[:：]\s*(-?[0-9.]+)`)
)

// NormalizeLocation converts any of the legacy stored location encodings
// into a canonical Point:
//
//   - structured pair      {"lat": 35.6, "lng": 139.7}
//   - nested geopoint      {"latitude": 35.6, "longitude": 139.7}
//   - formatted string     "緯度: 35.6, 経度: 139.7"
//
// Any other shape, or values outside the valid coordinate range, yields
// ok == false. Callers skip rendering such posts instead of failing.
func NormalizeLocation(raw json.RawMessage) (Point, bool) {
	if len(raw) == 0 {
		return Point{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseLocationString(s)
	}

	var obj struct {
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Point{}, false
	}

	switch {
	case obj.Lat != nil && obj.Lng != nil:
		return makePoint(*obj.Lat, *obj.Lng)
	case obj.Latitude != nil && obj.Longitude != nil:
		return makePoint(*obj.Latitude, *obj.Longitude)
	}
	return Point{}, false
}

func parseLocationString(s string) (Point, bool) {
	latMatch := latPattern.FindStringSubmatch(s)
	lngMatch := lngPattern.FindStringSubmatch(s)
	if latMatch == nil || lngMatch == nil {
		return Point{}, false
	}

	lat, err := strconv.ParseFloat(latMatch[1], 64)
	if err != nil {
		return Point{}, false
	}
	lng, err := strconv.ParseFloat(lngMatch[1], 64)
	if err != nil {
		return Point{}, false
	}
	return makePoint(lat, lng)
}

func makePoint(lat, lng float64) (Point, bool) {
	if !utils.ValidateCoordinates(lat, lng) {
		return Point{}, false
	}
	return Point{Lat: lat, Lng: lng}, true
}
