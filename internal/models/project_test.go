package models

import (
	"encoding/json"
	"testing"
)

func tourWithScenes() *ProjectModel {
	return &ProjectModel{
		Scenes: []Scene{
			{ID: "lobby", Hotspots: []Hotspot{
				{Label: "to pool", TargetSceneID: "pool"},
				{Label: "to roof", TargetSceneID: "roof"},
				{Label: "sign"},
			}},
			{ID: "pool", IsFirst: true, Hotspots: []Hotspot{{TargetSceneID: "lobby"}}},
		},
	}
}

func TestDeadLinks(t *testing.T) {
	links := tourWithScenes().DeadLinks()
	if len(links) != 1 {
		t.Fatalf("DeadLinks() = %+v, want one dead link", links)
	}
	want := DeadLink{SceneID: "lobby", HotspotIndex: 1, TargetSceneID: "roof"}
	if links[0] != want {
		t.Errorf("DeadLinks()[0] = %+v, want %+v", links[0], want)
	}
}

func TestEntryScene(t *testing.T) {
	p := tourWithScenes()
	if got := p.EntryScene(); got == nil || got.ID != "pool" {
		t.Errorf("EntryScene() = %+v, want pool", got)
	}
	p.Scenes[1].IsFirst = false
	if got := p.EntryScene(); got == nil || got.ID != "lobby" {
		t.Errorf("EntryScene() fallback = %+v, want lobby", got)
	}
	if got := (&ProjectModel{}).EntryScene(); got != nil {
		t.Errorf("EntryScene() on empty project = %+v, want nil", got)
	}
}

func TestEntrySceneCountAndLookup(t *testing.T) {
	p := tourWithScenes()
	p.Scenes[0].IsFirst = true
	if n := p.EntrySceneCount(); n != 2 {
		t.Errorf("EntrySceneCount() = %d, want 2", n)
	}
	if s := p.SceneByID("missing"); s != nil {
		t.Errorf("SceneByID(missing) = %+v, want nil", s)
	}
}

func TestTourStepDayLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"day":"Ngày 1","content":"x"}`, "Ngày 1"},
		{`{"day":3,"content":"x"}`, "3"},
		{`{"day":null,"content":"x"}`, ""},
		{`{"content":"x"}`, ""},
	}
	for _, tt := range tests {
		var s TourStep
		if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
			t.Fatalf("Unmarshal(%s): %v", tt.in, err)
		}
		if s.Day != tt.want || s.Content != "x" {
			t.Errorf("Unmarshal(%s) = %+v, want day %q", tt.in, s, tt.want)
		}
	}
	if err := json.Unmarshal([]byte(`{"day":true}`), &TourStep{}); err == nil {
		t.Error("boolean day accepted")
	}
}
