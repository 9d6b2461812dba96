package classify

import "github.com/tgportal/tgportal/model"

// Classify runs the matcher over both taxonomies and returns the ids of every
// section and material type whose trigger hashtags intersect the post's
// hashtags. Result order follows the input category order. Deterministic for
// identical inputs.
//
// Called automatically at ingest time to pre-populate links, and
// interactively to suggest defaults when an admin opens a post for manual
// classification. The suggestion is only a hint: callers must prefer explicit
// prior links when both exist.
func Classify(hashtags []string, sections []model.Section, materialTypes []model.MaterialType) (sectionIDs []string, materialTypeIDs []string) {
	for _, s := range sections {
		if Matches(hashtags, s.Hashtags) {
			sectionIDs = append(sectionIDs, s.Id)
		}
	}
	for _, m := range materialTypes {
		if Matches(hashtags, m.Hashtags) {
			materialTypeIDs = append(materialTypeIDs, m.Id)
		}
	}
	return sectionIDs, materialTypeIDs
}
