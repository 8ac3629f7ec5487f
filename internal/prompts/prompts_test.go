package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAnalyzePrompts(t *testing.T) {
	system, err := Render("analyze_system", AnalyzeData{
		Categories: []string{"mindfulness", "breathwork", "ignore"},
	})
	require.NoError(t, err)
	assert.Contains(t, system, "- mindfulness")
	assert.Contains(t, system, "- breathwork")
	assert.Contains(t, system, `"ignore"`)
	assert.Contains(t, system, "confidence")

	user, err := Render("analyze_user", AnalyzeData{
		Content: "how do I start meditating?",
		Author:  "alice",
		History: []HistoryEntry{
			{Author: "bob", Content: "good morning everyone"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, user, "bob: good morning everyone")
	assert.Contains(t, user, "Latest message from alice")
	assert.Contains(t, user, "how do I start meditating?")
}

func TestRenderAnalyzeUserWithoutHistory(t *testing.T) {
	user, err := Render("analyze_user", AnalyzeData{
		Content: "hello",
		Author:  "alice",
	})
	require.NoError(t, err)
	assert.NotContains(t, user, "Recent channel history")
	assert.Contains(t, user, "Latest message from alice")
}

func TestRenderRespondPrompts(t *testing.T) {
	system, err := Render("respond_system", RespondData{
		Intent:    "breathwork",
		Documents: []string{"Box breathing: inhale four counts, hold four."},
	})
	require.NoError(t, err)
	assert.Contains(t, system, `"breathwork"`)
	assert.Contains(t, system, "Box breathing")

	user, err := Render("respond_user", RespondData{
		Content: "any breathing exercise for stress?",
		Author:  "carol",
	})
	require.NoError(t, err)
	assert.Contains(t, user, "Reply to this message from carol")
}

func TestRenderRespondSystemWithoutDocuments(t *testing.T) {
	system, err := Render("respond_system", RespondData{Intent: "mindfulness"})
	require.NoError(t, err)
	assert.NotContains(t, system, "knowledge base passages")
}

func TestRenderWellnessPrompts(t *testing.T) {
	system, err := Render("wellness_system", WellnessData{
		ContentType:     "breathwork technique",
		PreviousContent: []string{"Try 4-7-8 breathing before bed."},
	})
	require.NoError(t, err)
	assert.Contains(t, system, `"breathwork technique"`)
	assert.Contains(t, system, "Try 4-7-8 breathing before bed.")

	user, err := Render("wellness_user", WellnessData{ContentType: "gratitude practice"})
	require.NoError(t, err)
	assert.Equal(t, "Generate one new gratitude practice for the community.", user)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("no_such_template", nil)
	assert.Error(t, err)
}
