package git

import (
	"testing"
	"time"
)

func TestParseLog(t *testing.T) {
	output := recordSep + "abc1234def" + fieldSep + "Alice" + fieldSep + "alice@example.com" + fieldSep +
		"2024-03-01T10:00:00+00:00" + fieldSep + "feat: add login" + fieldSep + "Adds the login flow." + groupSep + "\n" +
		"10\t2\tsrc/auth/login.go\n" +
		"3\t0\tsrc/auth/session.go\n" +
		recordSep + "def5678abc" + fieldSep + "Bob" + fieldSep + "bob@example.com" + fieldSep +
		"2024-02-28T09:30:00+00:00" + fieldSep + "fix: handle nil session" + fieldSep + "" + groupSep + "\n" +
		"-\t-\tassets/logo.png\n" +
		"1\t1\tsrc/auth/session.go\n"

	commits, err := parseLog(output)
	if err != nil {
		t.Fatalf("parseLog returned error: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}

	first := commits[0]
	if first.Hash != "abc1234def" {
		t.Errorf("hash = %q, want abc1234def", first.Hash)
	}
	if first.ShortHash() != "abc1234" {
		t.Errorf("short hash = %q, want abc1234", first.ShortHash())
	}
	if first.Author != "Alice" || first.Email != "alice@example.com" {
		t.Errorf("author = %q <%q>", first.Author, first.Email)
	}
	if first.Subject != "feat: add login" {
		t.Errorf("subject = %q", first.Subject)
	}
	if first.Body != "Adds the login flow." {
		t.Errorf("body = %q", first.Body)
	}
	if first.Insertions != 13 || first.Deletions != 2 || first.FilesChanged != 2 {
		t.Errorf("stats = +%d/-%d over %d files, want +13/-2 over 2",
			first.Insertions, first.Deletions, first.FilesChanged)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, want)
	}

	// Binary files count toward FilesChanged but not line totals.
	second := commits[1]
	if second.Insertions != 1 || second.Deletions != 1 || second.FilesChanged != 2 {
		t.Errorf("stats = +%d/-%d over %d files, want +1/-1 over 2",
			second.Insertions, second.Deletions, second.FilesChanged)
	}
	if second.Body != "" {
		t.Errorf("body = %q, want empty", second.Body)
	}
}

func TestParseLogEmpty(t *testing.T) {
	commits, err := parseLog("")
	if err != nil {
		t.Fatalf("parseLog returned error: %v", err)
	}
	if len(commits) != 0 {
		t.Fatalf("expected no commits, got %d", len(commits))
	}
}

func TestParseLogMalformed(t *testing.T) {
	_, err := parseLog(recordSep + "onlyonefield" + groupSep)
	if err == nil {
		t.Fatal("expected error for malformed record")
	}
}
