package fonts

import "testing"

func TestFontParsedOnce(t *testing.T) {
	a, err := Font(Regular)
	if err != nil {
		t.Fatalf("Font: %v", err)
	}
	b, _ := Font(Regular)
	if a != b {
		t.Error("regular font parsed twice")
	}
	c, err := Font(Bold)
	if err != nil {
		t.Fatal(err)
	}
	if c == a {
		t.Error("bold and regular are the same font")
	}
}

func TestNewFace(t *testing.T) {
	f, err := NewFace(Bold, 14)
	if err != nil {
		t.Fatalf("NewFace: %v", err)
	}
	if f.Metrics().Height <= 0 {
		t.Error("face has no height")
	}
}
