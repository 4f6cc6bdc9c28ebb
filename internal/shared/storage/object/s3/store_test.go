package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	cases := []struct {
		prefix string
		key    string
		want   string
	}{
		{prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{prefix: "root/sub", key: "file.pdf", want: "root/sub/file.pdf"},
		{prefix: "root", key: "", want: "root"},
	}
	for _, tc := range cases {
		if got := applyPrefix(tc.prefix, tc.key); got != tc.want {
			t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tc.prefix, tc.key, got, tc.want)
		}
	}
}
