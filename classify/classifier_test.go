package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tgportal/tgportal/model"
)

func TestMatches(t *testing.T) {
	assert.True(t, Matches([]string{"tutorial", "video"}, []string{"tutorial"}))
	assert.True(t, Matches([]string{"Tutorial"}, []string{"TUTORIAL"}))
	assert.False(t, Matches([]string{"article"}, []string{"art"}))
	assert.False(t, Matches([]string{}, []string{"tutorial"}))
	assert.False(t, Matches([]string{"tutorial"}, []string{}))
	assert.True(t, Matches([]string{"видео"}, []string{"Видео"}))
}

func TestClassify(t *testing.T) {
	sections := []model.Section{
		{Id: "s1", Name: "Tutorials", Hashtags: []string{"tutorial"}},
		{Id: "s2", Name: "News", Hashtags: []string{"news", "digest"}},
	}
	materialTypes := []model.MaterialType{
		{Id: "m1", Name: "Video", Hashtags: []string{"video"}},
		{Id: "m2", Name: "Longread", Hashtags: []string{"longread"}},
	}

	sectionIDs, materialTypeIDs := Classify([]string{"Tutorial", "video"}, sections, materialTypes)
	assert.Equal(t, []string{"s1"}, sectionIDs)
	assert.Equal(t, []string{"m1"}, materialTypeIDs)

	sectionIDs, materialTypeIDs = Classify([]string{"offtopic"}, sections, materialTypes)
	assert.Empty(t, sectionIDs)
	assert.Empty(t, materialTypeIDs)

	// Categories sharing a trigger both match; one tag can land a post in
	// several categories of the same taxonomy.
	sections = append(sections, model.Section{Id: "s3", Name: "Also Tutorials", Hashtags: []string{"tutorial"}})
	sectionIDs, _ = Classify([]string{"tutorial"}, sections, materialTypes)
	assert.Equal(t, []string{"s1", "s3"}, sectionIDs)
}

func TestClassifyDoesNotMutateInputs(t *testing.T) {
	tags := []string{"Tutorial"}
	sections := []model.Section{{Id: "s1", Hashtags: []string{"tutorial"}}}
	Classify(tags, sections, nil)
	assert.Equal(t, []string{"Tutorial"}, tags)
	assert.Equal(t, []string{"tutorial"}, []string(sections[0].Hashtags))
}
