package changelog

import "github.com/redgit/redgit/internal/git"

// Deduplicate removes merge commits and message-duplicate commits from an
// ordered commit sequence. The first occurrence of a normalized message is
// kept; later ones are removed as duplicates of it. The returned slices
// partition the input: every commit appears exactly once, either in unique
// or in removed.
func Deduplicate(commits []git.Commit) (unique []git.Commit, removed []Removed) {
	seen := make(map[string]string) // normalized message -> kept hash

	for _, c := range commits {
		if IsMerge(c.Subject) {
			removed = append(removed, Removed{Commit: c, Reason: RemovedMerge})
			continue
		}

		key := Normalize(Classify(c).Description)
		if keptHash, ok := seen[key]; ok {
			removed = append(removed, Removed{
				Commit:      c,
				Reason:      RemovedDuplicate,
				DuplicateOf: keptHash,
			})
			continue
		}

		seen[key] = c.Hash
		unique = append(unique, c)
	}

	return unique, removed
}
