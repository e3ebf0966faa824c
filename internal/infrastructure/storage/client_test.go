package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\notes.txt`: "notes.txt",
		"my file (1).docx":      "my_file__1_.docx",
		"":                      "file",
		"/":                     "file",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSubmissionKeyLayout(t *testing.T) {
	user := uuid.New()
	key := SubmissionKey(user, "work.zip")

	prefix := "submissions/" + user.String() + "/"
	if !strings.HasPrefix(key, prefix) {
		t.Fatalf("expected prefix %q, got %q", prefix, key)
	}
	if !strings.HasSuffix(key, "-work.zip") {
		t.Fatalf("expected file name suffix, got %q", key)
	}
	if key == SubmissionKey(user, "work.zip") {
		t.Fatalf("expected unique keys for repeated uploads")
	}
}

func TestJobFileKeyLayout(t *testing.T) {
	key := JobFileKey("brief.pdf")
	if !strings.HasPrefix(key, "jobs/") || !strings.HasSuffix(key, "-brief.pdf") {
		t.Fatalf("unexpected key %q", key)
	}
}
