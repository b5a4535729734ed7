package textfilter

import "testing"

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		words []string
		want  string
	}{
		{
			name:  "single word",
			text:  "Rowan lifted the lantern.",
			words: []string{"lantern"},
			want:  "Rowan lifted the **lantern**.",
		},
		{
			name:  "case insensitive keeps original casing",
			text:  "Lantern light, lantern shade",
			words: []string{"LANTERN"},
			want:  "**Lantern** light, **lantern** shade",
		},
		{
			name:  "whole words only",
			text:  "the map on the mapmaker's desk",
			words: []string{"map"},
			want:  "the **map** on the mapmaker's desk",
		},
		{
			name:  "longest phrase first",
			text:  "They met at East Gate, by the gate.",
			words: []string{"gate", "East Gate"},
			want:  "They met at **East Gate**, by the **gate**.",
		},
		{
			name:  "punctuation at the edge",
			text:  "DJ Q'Wip? No, Q'Wip!",
			words: []string{"Q'Wip!"},
			want:  "DJ Q'Wip? No, **Q'Wip!**",
		},
		{
			name:  "blank and duplicate words ignored",
			text:  "grit and grace",
			words: []string{"", "  ", "grit", "Grit"},
			want:  "**grit** and grace",
		},
		{
			name:  "no words",
			text:  "unchanged",
			words: nil,
			want:  "unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.text, tt.words); got != tt.want {
				t.Errorf("Highlight() = %q, want %q", got, tt.want)
			}
		})
	}
}
