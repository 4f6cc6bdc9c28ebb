package papers

import "testing"

func TestIsPDFUpload(t *testing.T) {
	cases := []struct {
		contentType string
		fileName    string
		want        bool
	}{
		{"application/pdf", "paper.pdf", true},
		{"application/pdf; charset=binary", "paper.pdf", true},
		{"application/x-pdf", "paper.pdf", true},
		// browsers and curl often omit or generalize the part type
		{"", "paper.pdf", true},
		{"application/octet-stream", "paper.pdf", true},
		{"", "paper.txt", false},
		{"application/octet-stream", "paper.docx", false},
		{"text/plain", "paper.pdf", false},
		{"image/png", "scan.pdf", false},
	}
	for _, tc := range cases {
		if got := isPDFUpload(tc.contentType, tc.fileName); got != tc.want {
			t.Fatalf("isPDFUpload(%q, %q) = %v, want %v", tc.contentType, tc.fileName, got, tc.want)
		}
	}
}
