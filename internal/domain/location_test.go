package domain_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/notemap-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLocation_Encodings(t *testing.T) {
	want := domain.Point{Lat: 35.681236, Lng: 139.767125}

	tests := []struct {
		name string
		raw  string
	}{
		{"structured pair", `{"lat": 35.681236, "lng": 139.767125}`},
		{"nested geopoint", `{"latitude": 35.681236, "longitude": 139.767125}`},
		{"formatted string", `"緯度: 35.681236, 経度: 139.767125"`},
		{"formatted string full-width colon", `"緯度：35.681236、経度：139.767125"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.NormalizeLocation(json.RawMessage(tt.raw))
			require.True(t, ok)
			assert.InDelta(t, want.Lat, got.Lat, 1e-9)
			assert.InDelta(t, want.Lng, got.Lng, 1e-9)
		})
	}
}

// Round trip: a canonical point survives re-encoding in every supported
// shape.
func TestNormalizeLocation_RoundTrip(t *testing.T) {
	points := []domain.Point{
		{Lat: 35.681236, Lng: 139.767125},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 0, Lng: 0},
		{Lat: -90, Lng: 180},
	}

	for _, p := range points {
		encodings := []string{
			fmt.Sprintf(`{"lat": %v, "lng": %v}`, p.Lat, p.Lng),
			fmt.Sprintf(`{"latitude": %v, "longitude": %v}`, p.Lat, p.Lng),
			fmt.Sprintf(`"緯度: %v, 経度: %v"`, p.Lat, p.Lng),
		}
		for _, enc := range encodings {
			got, ok := domain.NormalizeLocation(json.RawMessage(enc))
			require.True(t, ok, "encoding %s", enc)
			assert.InDelta(t, p.Lat, got.Lat, 1e-9)
			assert.InDelta(t, p.Lng, got.Lng, 1e-9)
		}
	}
}

func TestNormalizeLocation_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"null", `null`},
		{"plain string", `"abc"`},
		{"string with only lat", `"緯度: 35.68"`},
		{"string with garbage numbers", `"緯度: .., 経度: .."`},
		{"missing lng", `{"lat": 35.68}`},
		{"missing lat", `{"lng": 139.76}`},
		{"non-numeric fields", `{"lat": "35.68", "lng": "139.76"}`},
		{"mixed shape", `{"lat": 35.68, "longitude": 139.76}`},
		{"latitude out of range", `{"lat": 91, "lng": 0}`},
		{"longitude out of range", `{"lat": 0, "lng": -181}`},
		{"array", `[35.68, 139.76]`},
		{"number", `42`},
		{"not json at all", `{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.NormalizeLocation(json.RawMessage(tt.raw))
			assert.False(t, ok)
			assert.Equal(t, domain.Point{}, got)
		})
	}
}

func TestPostPosition(t *testing.T) {
	valid := domain.Post{Location: json.RawMessage(`{"lat": 1, "lng": 2}`)}
	pos, ok := valid.Position()
	require.True(t, ok)
	assert.Equal(t, domain.Point{Lat: 1, Lng: 2}, pos)

	malformed := domain.Post{Location: json.RawMessage(`"abc"`)}
	_, ok = malformed.Position()
	assert.False(t, ok)
}
