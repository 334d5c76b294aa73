package changelog

import (
	"testing"

	"github.com/redgit/redgit/internal/git"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		subject   string
		wantType  string
		wantScope string
		wantDesc  string
	}{
		{
			name:     "type only",
			subject:  "feat: add login",
			wantType: "feat",
			wantDesc: "add login",
		},
		{
			name:      "type with scope",
			subject:   "fix(auth): handle nil session",
			wantType:  "fix",
			wantScope: "auth",
			wantDesc:  "handle nil session",
		},
		{
			name:     "uppercase type folds",
			subject:  "Feat: add login",
			wantType: "feat",
			wantDesc: "add login",
		},
		{
			name:     "unrecognized type goes to other",
			subject:  "wip: half-done thing",
			wantType: TypeOther,
			wantDesc: "wip: half-done thing",
		},
		{
			name:     "no prefix goes to other",
			subject:  "update stuff",
			wantType: TypeOther,
			wantDesc: "update stuff",
		},
		{
			name:     "empty subject goes to other",
			subject:  "",
			wantType: TypeOther,
			wantDesc: "",
		},
		{
			name:     "loose spacing around colon",
			subject:  "docs : describe config keys",
			wantType: "docs",
			wantDesc: "describe config keys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify(git.Commit{Subject: tt.subject})
			if e.Type != tt.wantType {
				t.Errorf("type = %q, want %q", e.Type, tt.wantType)
			}
			if e.Scope != tt.wantScope {
				t.Errorf("scope = %q, want %q", e.Scope, tt.wantScope)
			}
			if e.Description != tt.wantDesc {
				t.Errorf("description = %q, want %q", e.Description, tt.wantDesc)
			}
		})
	}
}

func TestIsMerge(t *testing.T) {
	tests := []struct {
		subject string
		want    bool
	}{
		{"Merge branch 'feature/login'", true},
		{"Merge pull request #42 from org/fix", true},
		{"Merge remote-tracking branch 'origin/main'", true},
		{"merge branch 'x'", true},
		{"feat: merge accounts on login", false},
		{"Merged the new parser", false},
		{"fix: handle merge markers in files", false},
	}

	for _, tt := range tests {
		if got := IsMerge(tt.subject); got != tt.want {
			t.Errorf("IsMerge(%q) = %v, want %v", tt.subject, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add login", "add login"},
		{"add login.", "add login"},
		{"add login!!!", "add login"},
		{"add login (#123)", "add login"},
		{"add login [#123]", "add login"},
		{"add login (123)", "add login"},
		{"  Add Login (#9).  ", "add login"},
		{"add login", "add login"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
