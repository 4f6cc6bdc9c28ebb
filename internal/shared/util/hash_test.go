package util

import "testing"

func TestHashUserKey(t *testing.T) {
	a := HashUserKey("guest:abc-123")
	b := HashUserKey("guest:abc-123")
	if a != b {
		t.Fatalf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashUserKey("google:123") {
		t.Fatalf("different inputs produced same hash")
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "paper.pdf", want: "paper.pdf"},
		{in: "deep learning survey.pdf", want: "deep_learning_survey.pdf"},
		{in: "a/b\\c.pdf", want: "a_b_c.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
