package model

import (
	"path/filepath"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"png", KindStatic},
		{"", KindStatic},
		{"gif", KindSweep},
		{"GIF", KindSweep},
		{"gif reverse", KindReverseSweep},
		{"reverse_gif", KindReverseSweep},
		{"reverse", KindStatic},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseKind(tt.in); got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKind_RoundTrip(t *testing.T) {
	for _, k := range []Kind{KindStatic, KindSweep, KindReverseSweep} {
		if got := ParseKind(k.String()); got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestArtwork_Paths(t *testing.T) {
	art := Artwork{Name: "Mount_Rainier", UID: "00007"}

	tests := []struct {
		name  string
		level int
		want  string
	}{
		{"static", 0, filepath.Join("img", "Mount_Rainier", "Mount_Rainier.png")},
		{"first frame", 1, filepath.Join("img", "Mount_Rainier", "Mount_Rainier 01.png")},
		{"two digits", 12, filepath.Join("img", "Mount_Rainier", "Mount_Rainier 12.png")},
		{"three digits", 120, filepath.Join("img", "Mount_Rainier", "Mount_Rainier 120.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := art.FramePath("img", tt.level, "png"); got != tt.want {
				t.Errorf("FramePath(%d) = %q, want %q", tt.level, got, tt.want)
			}
		})
	}

	if got, want := art.AnimationPath("img"), filepath.Join("img", "Mount_Rainier", "Mount_Rainier.gif"); got != want {
		t.Errorf("AnimationPath() = %q, want %q", got, want)
	}
}

func TestArtwork_PathsStayUnderOutputDir(t *testing.T) {
	tests := []struct {
		name string
		art  Artwork
		want string
	}{
		{"separators", Artwork{Name: "../../etc/passwd"}, filepath.Join("img", ".._.._etc_passwd", ".._.._etc_passwd.png")},
		{"dots only", Artwork{Name: "..", UID: "00003"}, filepath.Join("img", "00003", "00003.png")},
		{"empty", Artwork{}, filepath.Join("img", "artwork", "artwork.png")},
		{"reserved characters", Artwork{Name: "Mount: Rainier?"}, filepath.Join("img", "Mount_ Rainier_", "Mount_ Rainier_.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.art.FramePath("img", 0, "png"); got != tt.want {
				t.Errorf("FramePath() = %q, want %q", got, tt.want)
			}
			if dir := tt.art.Dir("img"); filepath.Dir(dir) != "img" {
				t.Errorf("Dir() = %q escapes img", dir)
			}
		})
	}
}

func TestArtwork_DisplayName(t *testing.T) {
	art := Artwork{Name: "Mount_Rainier", UID: "00007"}
	if got, want := art.DisplayName(), "MOUNT RAINIER [00007]"; got != want {
		t.Errorf("DisplayName() = %q, want %q", got, want)
	}
}
