package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHotspotUnmarshalEncodings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Position
	}{
		{"legacy pitch yaw", `{"pitch":-12.5,"yaw":170,"label":"door","targetSceneId":"s2"}`, Spherical{Pitch: -12.5, Yaw: 170}},
		{"position array", `{"position":[1,2,3],"label":"door"}`, Cartesian{X: 1, Y: 2, Z: 3}},
		{"position object", `{"position":{"x":4,"y":5,"z":6}}`, Cartesian{X: 4, Y: 5, Z: 6}},
		{"position wins", `{"pitch":1,"yaw":2,"position":[7,8,9]}`, Cartesian{X: 7, Y: 8, Z: 9}},
		{"no position", `{"label":"info"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Hotspot
			if err := json.Unmarshal([]byte(tt.in), &h); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if h.Position != tt.want {
				t.Errorf("Position = %#v, want %#v", h.Position, tt.want)
			}
		})
	}
}

func TestHotspotUnmarshalRejectsBadVector(t *testing.T) {
	var h Hotspot
	if err := json.Unmarshal([]byte(`{"position":[1,2]}`), &h); err == nil {
		t.Fatal("Unmarshal() error = nil, want error for 2-element vector")
	}
}

func TestHotspotRoundTripKeepsVariant(t *testing.T) {
	in := []Hotspot{
		{Position: Spherical{Pitch: 3, Yaw: 4}, Label: "a", TargetSceneID: "s1"},
		{Position: Cartesian{X: 1, Y: 0, Z: -1}, Label: "b"},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"pitch":3`) || !strings.Contains(string(data), `"position":[1,0,-1]`) {
		t.Errorf("Marshal() = %s", data)
	}
	var out []Hotspot
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("hotspot %d = %#v, want %#v", i, out[i], in[i])
		}
	}
}
