package markdown

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
		deny []string
	}{
		{name: "empty", in: "  \n", want: nil},
		{name: "emphasis", in: "Visit **Ha Long** bay", want: []string{"<strong>Ha Long</strong>"}},
		{name: "hard wraps", in: "morning\nevening", want: []string{"<br />"}},
		{name: "list", in: "- breakfast\n- kayak", want: []string{"<ul>", "<li>kayak</li>"}},
		{name: "raw html dropped", in: "<script>alert(1)</script>", deny: []string{"<script>"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.in)
			if tt.want == nil && tt.deny == nil && got != "" {
				t.Fatalf("Render(%q) = %q, want empty", tt.in, got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Render(%q) = %q, missing %q", tt.in, got, w)
				}
			}
			for _, d := range tt.deny {
				if strings.Contains(got, d) {
					t.Errorf("Render(%q) = %q, should not contain %q", tt.in, got, d)
				}
			}
		})
	}
}
