package utils

import "testing"

func TestIsValidUsername(t *testing.T) {
	v := NewValidators()

	tests := []struct {
		name     string
		username string
		want     bool
	}{
		{"simple name", "alice", true},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"exactly fifteen runes", "abcdefghijklmno", true},
		{"sixteen runes", "abcdefghijklmnop", false},
		{"emoji counts as one rune", "🌳🌳🌳🌳🌳🌳🌳🌳🌳🌳🌳🌳🌳🌳🌳", true},
		{"spaces inside allowed", "tree house", true},
		{"surrounding whitespace trimmed", "  alice  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsValidUsername(tt.username); got != tt.want {
				t.Errorf("IsValidUsername(%q) = %v, want %v", tt.username, got, tt.want)
			}
		})
	}
}

func TestIsValidImageFile(t *testing.T) {
	v := NewValidators()

	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"jpg", "photo.jpg", true},
		{"jpeg", "photo.jpeg", true},
		{"png uppercase", "PHOTO.PNG", true},
		{"heic", "IMG_0042.heic", true},
		{"pdf rejected", "doc.pdf", false},
		{"no extension", "photo", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsValidImageFile(tt.filename); got != tt.want {
				t.Errorf("IsValidImageFile(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectPath(t *testing.T) {
	v := NewValidators()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"uid scoped photo", "user-123/abc.jpg", true},
		{"parent traversal", "user-123/../other/abc.jpg", false},
		{"absolute path", "/user-123/abc.jpg", false},
		{"bad character", "user*123/abc.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.IsValidObjectPath(tt.path); got != tt.want {
				t.Errorf("IsValidObjectPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
