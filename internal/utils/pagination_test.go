package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 7, 7},
		{"abc", 7, 7},
		{"42", 7, 42},
		{"-3", 7, -3},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, size, def, max int
		wantPage, wantSize   int
	}{
		{0, 0, 50, 100, 1, 50},
		{-5, -1, 50, 100, 1, 50},
		{2, 20, 50, 100, 2, 20},
		{1, 500, 50, 100, 1, 100},
		{1, 500, 50, 0, 1, 500}, // max 0 disables the cap
	}
	for _, tc := range cases {
		p, s := ClampPage(tc.page, tc.size, tc.def, tc.max)
		if p != tc.wantPage || s != tc.wantSize {
			t.Fatalf("ClampPage(%d,%d,%d,%d) = %d,%d want %d,%d",
				tc.page, tc.size, tc.def, tc.max, p, s, tc.wantPage, tc.wantSize)
		}
	}
}
