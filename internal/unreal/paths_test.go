package unreal

import "testing"

func TestSoftObjectFromAsset(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"asset in subdirectory",
			"C:/Projects/Demo/Content/Maps/City.umap",
			"/Game/Maps/City.City",
		},
		{
			"nested directories",
			"C:/Projects/Demo/Content/Cinematics/Shots/Shot01.uasset",
			"/Game/Cinematics/Shots/Shot01.Shot01",
		},
		{
			"asset at content root",
			"/home/artist/Demo/Content/Intro.uasset",
			"/Game/Intro.Intro",
		},
		{
			"uppercase extension",
			"C:/Projects/Demo/Content/Maps/City.UMAP",
			"/Game/Maps/City.City",
		},
		{
			"backslash separators",
			`C:\Projects\Demo\Content\Maps\City.umap`,
			"/Game/Maps/City.City",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := SoftObjectFromAsset(test.input)
			if err != nil {
				t.Fatalf("SoftObjectFromAsset(%q) unexpected error: %v", test.input, err)
			}
			if got != test.expected {
				t.Errorf("SoftObjectFromAsset(%q) = %q, expected %q", test.input, got, test.expected)
			}
		})
	}
}

func TestSoftObjectFromAsset_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong extension", "C:/Projects/Demo/Content/Maps/City.txt"},
		{"no content directory", "C:/Projects/Demo/Maps/City.umap"},
		{"empty path", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := SoftObjectFromAsset(test.input); err == nil {
				t.Errorf("SoftObjectFromAsset(%q) expected error, got nil", test.input)
			}
		})
	}
}

func TestSoftName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/Game/Maps/City.City", "City"},
		{"/Game/Cinematics/Shot01.Shot01", "Shot01"},
		{"NoDotsHere", "NoDotsHere"},
		{"", "?"},
	}

	for _, test := range tests {
		if got := SoftName(test.input); got != test.expected {
			t.Errorf("SoftName(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestMapArgument(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/Game/Maps/City.City", "/Game/Maps/City"},
		{"/Game/Maps/City", "/Game/Maps/City"},
	}

	for _, test := range tests {
		if got := MapArgument(test.input); got != test.expected {
			t.Errorf("MapArgument(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}
