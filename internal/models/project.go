package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// ProjectModel is a published virtual tour. Scenes and tour steps are owned by
// the project and persisted with it, so they are removed together.
type ProjectModel struct {
	Base
	ProjectID     int64      `json:"projectId"     gorm:"uniqueIndex;not null"`
	OwnerUserID   int64      `json:"userId"        gorm:"index;not null"`
	Title         string     `json:"title"         gorm:"size:255;not null"`
	Description   string     `json:"description"   gorm:"type:text"`
	DepartureCity int        `json:"departureCity" gorm:"index"`
	DepartureDate *time.Time `json:"departureDate"`
	CoverImage    string     `json:"coverImage"`
	Price         float64    `json:"price"         gorm:"index"`
	Sale          float64    `json:"sale"`
	TimeLastBook  *time.Time `json:"timeLastBook"`
	IsForeign     bool       `json:"isForeign"     gorm:"not null;default:false;index"`
	IsLock        bool       `json:"isLock"        gorm:"not null;default:false;index"`
	TourSteps     []TourStep `json:"tourSteps"     gorm:"type:text;serializer:json"`
	Scenes        []Scene    `json:"scenes"        gorm:"type:text;serializer:json"`
}

func (ProjectModel) TableName() string { return "projects" }

// TourStep is one itinerary entry. Order is meaningful and days may repeat.
// Day is a free-form label such as "1" or "Ngày 1".
type TourStep struct {
	Day     string `json:"day"`
	Content string `json:"content"`
}

// UnmarshalJSON also accepts a numeric day and keeps its literal text.
func (s *TourStep) UnmarshalJSON(data []byte) error {
	var in struct {
		Day     json.RawMessage `json:"day"`
		Content string          `json:"content"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Content = in.Content
	s.Day = ""
	raw := bytes.TrimSpace(in.Day)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '"':
		return json.Unmarshal(raw, &s.Day)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		s.Day = n.String()
	}
	return nil
}

// Scene is one panorama inside a project.
type Scene struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type,omitempty"`
	OriginalImage string    `json:"originalImage,omitempty"`
	CubePaths     []string  `json:"cubePaths,omitempty"`
	TilesPath     string    `json:"tilesPath,omitempty"`
	Audio         string    `json:"audio,omitempty"`
	Hotspots      []Hotspot `json:"hotspots"`
	IsFirst       bool      `json:"isFirst"`
}

const (
	SceneTypeCube     = "cube"
	SceneTypeMultires = "multires"
	SceneTypeEquirect = "equirectangular"
)

// DeadLink is a hotspot whose target scene does not exist in the project.
type DeadLink struct {
	SceneID       string `json:"sceneId"`
	HotspotIndex  int    `json:"hotspotIndex"`
	TargetSceneID string `json:"targetSceneId"`
}

// SceneByID returns the scene with the given id, or nil.
func (p *ProjectModel) SceneByID(id string) *Scene {
	for i := range p.Scenes {
		if p.Scenes[i].ID == id {
			return &p.Scenes[i]
		}
	}
	return nil
}

// EntryScene returns the scene flagged isFirst, falling back to the first scene.
func (p *ProjectModel) EntryScene() *Scene {
	if len(p.Scenes) == 0 {
		return nil
	}
	for i := range p.Scenes {
		if p.Scenes[i].IsFirst {
			return &p.Scenes[i]
		}
	}
	return &p.Scenes[0]
}

// EntrySceneCount counts scenes flagged isFirst.
func (p *ProjectModel) EntrySceneCount() int {
	n := 0
	for _, s := range p.Scenes {
		if s.IsFirst {
			n++
		}
	}
	return n
}

// DeadLinks lists hotspots pointing at scenes that are not part of the project.
// Hotspots without a target are labels, not links.
func (p *ProjectModel) DeadLinks() []DeadLink {
	ids := make(map[string]struct{}, len(p.Scenes))
	for _, s := range p.Scenes {
		ids[s.ID] = struct{}{}
	}
	out := []DeadLink{}
	for _, s := range p.Scenes {
		for i, h := range s.Hotspots {
			if h.TargetSceneID == "" {
				continue
			}
			if _, ok := ids[h.TargetSceneID]; !ok {
				out = append(out, DeadLink{SceneID: s.ID, HotspotIndex: i, TargetSceneID: h.TargetSceneID})
			}
		}
	}
	return out
}
