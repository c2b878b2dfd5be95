package mqttsub

import "testing"

func TestVehicleFromTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  string
	}{
		{"fleet/bus-1/location", "bus-1"},
		{"fleet/bus-2/location/extra", "bus-2"},
		{"fleet/location", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := vehicleFromTopic(tc.topic); got != tc.want {
			t.Errorf("vehicleFromTopic(%q) = %q, want %q", tc.topic, got, tc.want)
		}
	}
}
