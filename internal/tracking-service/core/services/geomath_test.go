package services

import (
	"math"
	"testing"
)

func TestDistanceMeters_SamePoint(t *testing.T) {
	d := DistanceMeters(43.238949, 76.889709, 43.238949, 76.889709)
	if d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceMeters_Symmetry(t *testing.T) {
	a := DistanceMeters(43.238949, 76.889709, 51.169392, 71.449074)
	b := DistanceMeters(51.169392, 71.449074, 43.238949, 76.889709)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestDistanceMeters_EquatorDegree(t *testing.T) {
	// one degree of longitude on the equator is roughly 111.2 km
	d := DistanceMeters(0, 0, 0, 1)
	if d < 110000 || d > 112500 {
		t.Errorf("expected ~111.2km, got %f", d)
	}
}

func TestBearingDegrees(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}
	for _, tc := range cases {
		got := BearingDegrees(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
		if math.Abs(got-tc.want) > 0.5 {
			t.Errorf("%s: expected %f, got %f", tc.name, tc.want, got)
		}
	}
}
