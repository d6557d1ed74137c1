package util

import "testing"

func TestRandomString32(t *testing.T) {
	s1, err := RandomString32()
	if err != nil {
		t.Fatal(err)
	}
	if len(s1) != 32 {
		t.Fatalf("len = %d, want 32", len(s1))
	}
	s2, err := RandomString32()
	if err != nil {
		t.Fatal(err)
	}
	if s1 == s2 {
		t.Fatal("two random strings are equal")
	}
}

func TestTrunc(t *testing.T) {
	var tests = []struct {
		input    string
		maxRunes int
		want     string
	}{
		{"", 5, ""},
		{"short", 10, "short"},
		{"hello world", 6, "hello"},
		{"  padded  ", 20, "padded"},
		{"äöü äöü", 5, "äöü"},
	}
	for _, tt := range tests {
		if got := Trunc(tt.input, tt.maxRunes); got != tt.want {
			t.Errorf("Trunc(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
		}
	}
}

func TestTextContent(t *testing.T) {
	var tests = []struct {
		fragment string
		want     string
	}{
		{"<p>Hello <em>World</em></p>", "Hello World"},
		{"plain text", "plain text"},
		{"<ul><li>one</li><li>two</li></ul>", "one two"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TextContent(tt.fragment); got != tt.want {
			t.Errorf("TextContent(%q) = %q, want %q", tt.fragment, got, tt.want)
		}
	}
}
