package graph

import (
	"math"
	"strconv"
	"testing"
)

func TestNumericSuffix(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{"12", 12, true},
		{"node-7", 7, true},
		{"007", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := NumericSuffix(tt.id)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NumericSuffix(%q) = %d, %v; want %d, %v", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIDAllocator(t *testing.T) {
	a := NewIDAllocator()
	if got := a.Next(); got != "1" {
		t.Errorf("first id = %q, want 1", got)
	}

	a.Observe("10")
	if got := a.Next(); got != "11" {
		t.Errorf("after Observe(10) = %q, want 11", got)
	}

	a.Observe("3")
	if got := a.Peek(); got != "12" {
		t.Errorf("lower Observe moved counter back: %q", got)
	}

	a.Reseed([]string{"4", "x", "node-20"})
	if got := a.Peek(); got != "21" {
		t.Errorf("after Reseed = %q, want 21", got)
	}

	a.Reseed(nil)
	if got := a.Peek(); got != "1" {
		t.Errorf("empty Reseed = %q, want 1", got)
	}
}

func TestIDAllocatorLargeSuffixes(t *testing.T) {
	maxID := strconv.Itoa(math.MaxInt)
	tests := []struct {
		name    string
		observe []string
		want    string
	}{
		{"MaxInt ignored", []string{"4", maxID}, "5"},
		{"MaxInt only", []string{maxID}, "1"},
		{"prefixed MaxInt", []string{"node-" + maxID, "2"}, "3"},
		{"one below MaxInt", []string{strconv.Itoa(math.MaxInt - 1)}, maxID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewIDAllocator()
			a.Reseed(tt.observe)
			if got := a.Peek(); got != tt.want {
				t.Errorf("Peek = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIDAllocatorExhausted(t *testing.T) {
	a := NewIDAllocator()
	a.Observe(strconv.Itoa(math.MaxInt - 1))
	first := a.Next()
	second := a.Next()
	if first != strconv.Itoa(math.MaxInt) || second != first {
		t.Errorf("Next = %q then %q, want MaxInt twice", first, second)
	}
}

func TestAddChildAfterMaxIntID(t *testing.T) {
	s := New()
	maxID := strconv.Itoa(math.MaxInt)
	if _, err := s.AddNode(RootID, maxID); err != nil {
		t.Fatal(err)
	}
	n, err := s.AddChild(RootID)
	if err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	if n.ID != "2" {
		t.Errorf("new id = %q, want 2", n.ID)
	}
	if _, err := s.AddChild(maxID); err != nil {
		t.Errorf("second AddChild: %v", err)
	}
}
