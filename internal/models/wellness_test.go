package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextContentType(t *testing.T) {
	// Unknown or empty input starts the rotation
	assert.Equal(t, ContentTypes[0], NextContentType(""))
	assert.Equal(t, ContentTypes[0], NextContentType("no such category"))

	// Each category advances to the next
	for i, ct := range ContentTypes {
		expected := ContentTypes[(i+1)%len(ContentTypes)]
		assert.Equal(t, expected, NextContentType(ct))
	}

	// The last category wraps back to the first
	assert.Equal(t, ContentTypes[0], NextContentType(ContentTypes[len(ContentTypes)-1]))
}

func TestContentTypesRotationCoversAll(t *testing.T) {
	seen := map[ContentType]bool{}
	current := ContentTypes[0]
	for i := 0; i < len(ContentTypes); i++ {
		seen[current] = true
		current = NextContentType(current)
	}
	assert.Len(t, seen, len(ContentTypes))
	assert.Equal(t, ContentTypes[0], current)
}

func TestWellnessContentValidate(t *testing.T) {
	valid := &WellnessContent{
		Content:     "Take three slow breaths before opening your inbox.",
		ContentType: ContentMeditationTip,
		ChannelID:   123,
	}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&WellnessContent{ContentType: ContentMeditationTip, ChannelID: 123}).Validate())
	assert.Error(t, (&WellnessContent{Content: "x", ChannelID: 123}).Validate())
	assert.Error(t, (&WellnessContent{Content: "x", ContentType: ContentMeditationTip}).Validate())
}
