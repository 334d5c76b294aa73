// Package changelog turns ordered commit history into versioned changelog
// documents.
//
// The pipeline is a sequence of pure functions over git.Commit values:
//
//	commits := gitlog for the ref range
//	unique, removed := Deduplicate(commits)   // drop merges and repeats
//	grouped := GroupByType(unique)            // conventional-commit buckets
//	stats := ContributorStats(unique)         // per-author shares
//	doc := RenderMarkdown(...)                // presentation
//
// Every input commit lands exactly once: either in a grouped bucket or in
// the removed list with its removal reason. The Generator wires the
// pipeline to the filesystem, the release store, and the optional AI
// summary.
package changelog
