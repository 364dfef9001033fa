package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "simple title",
			title: "Luxury Villa",
			want:  "luxury-villa",
		},
		{
			name:  "punctuation stripped",
			title: "3BHK Flat, Sector 21 (Prime)!",
			want:  "3bhk-flat-sector-21-prime",
		},
		{
			name:  "surrounding whitespace",
			title: "  Plot near highway  ",
			want:  "plot-near-highway",
		},
		{
			name:  "multiple spaces collapse",
			title: "Big   corner   house",
			want:  "big-corner-house",
		},
		{
			name:  "existing hyphens kept",
			title: "Semi-furnished apartment",
			want:  "semi-furnished-apartment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
