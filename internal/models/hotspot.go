package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Position locates a hotspot inside a panorama. It is either Spherical
// (legacy pitch/yaw in degrees) or Cartesian (a 3D vector).
type Position interface {
	isPosition()
}

type Spherical struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

type Cartesian struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (Spherical) isPosition() {}
func (Cartesian) isPosition() {}

// Hotspot is a clickable point in a scene. TargetSceneID is a weak reference
// to another scene of the same project and may dangle.
type Hotspot struct {
	Position      Position
	Label         string
	TargetSceneID string
}

type hotspotJSON struct {
	Pitch         *float64        `json:"pitch,omitempty"`
	Yaw           *float64        `json:"yaw,omitempty"`
	Position      json.RawMessage `json:"position,omitempty"`
	Label         string          `json:"label"`
	TargetSceneID string          `json:"targetSceneId"`
}

var errBadPosition = errors.New("hotspot position must be [x,y,z] or {x,y,z}")

func (h Hotspot) MarshalJSON() ([]byte, error) {
	out := hotspotJSON{Label: h.Label, TargetSceneID: h.TargetSceneID}
	switch p := h.Position.(type) {
	case Spherical:
		out.Pitch, out.Yaw = &p.Pitch, &p.Yaw
	case *Spherical:
		out.Pitch, out.Yaw = &p.Pitch, &p.Yaw
	case Cartesian:
		raw, err := json.Marshal([3]float64{p.X, p.Y, p.Z})
		if err != nil {
			return nil, err
		}
		out.Position = raw
	case *Cartesian:
		raw, err := json.Marshal([3]float64{p.X, p.Y, p.Z})
		if err != nil {
			return nil, err
		}
		out.Position = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts both encodings. A position field wins over pitch/yaw.
func (h *Hotspot) UnmarshalJSON(data []byte) error {
	var in hotspotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	h.Label = in.Label
	h.TargetSceneID = in.TargetSceneID
	h.Position = nil

	if raw := bytes.TrimSpace(in.Position); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		pos, err := parseCartesian(raw)
		if err != nil {
			return err
		}
		h.Position = pos
		return nil
	}
	if in.Pitch != nil || in.Yaw != nil {
		var s Spherical
		if in.Pitch != nil {
			s.Pitch = *in.Pitch
		}
		if in.Yaw != nil {
			s.Yaw = *in.Yaw
		}
		h.Position = s
	}
	return nil
}

func parseCartesian(raw []byte) (Cartesian, error) {
	if raw[0] == '[' {
		var v []float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return Cartesian{}, fmt.Errorf("%w: %v", errBadPosition, err)
		}
		if len(v) != 3 {
			return Cartesian{}, errBadPosition
		}
		return Cartesian{X: v[0], Y: v[1], Z: v[2]}, nil
	}
	var c Cartesian
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cartesian{}, fmt.Errorf("%w: %v", errBadPosition, err)
	}
	return c, nil
}
