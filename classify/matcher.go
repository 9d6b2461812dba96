// Package classify computes hashtag-driven category assignments for posts.
// Everything in this package is pure: no storage, no clock, no mutation of
// inputs.
package classify

import "strings"

// Matches returns true iff at least one category trigger hashtag equals,
// case-insensitively, at least one of the post's hashtags. Matching is exact
// after lowercasing both sides; substring containment is intentionally not
// supported, otherwise a "#art" trigger would claim every "#article" post.
func Matches(postTags []string, categoryTags []string) bool {
	for _, ct := range categoryTags {
		lowered := strings.ToLower(ct)
		for _, pt := range postTags {
			if strings.ToLower(pt) == lowered {
				return true
			}
		}
	}
	return false
}
