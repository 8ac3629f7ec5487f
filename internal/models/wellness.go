// File: internal/models/wellness.go
package models

import (
	"fmt"
	"time"
)

// ContentType is a category of scheduled wellness content
type ContentType string

const (
	ContentMeditationTip       ContentType = "meditation tip"
	ContentWeeklyChallenge     ContentType = "weekly challenge"
	ContentMindfulnessPractice ContentType = "mindfulness practice"
	ContentEmotionalWellness   ContentType = "emotional wellness"
	ContentSomaticExercise     ContentType = "somatic exercise"
	ContentBreathworkTechnique ContentType = "breathwork technique"
	ContentSleepOptimization   ContentType = "sleep optimization"
	ContentGratitudePractice   ContentType = "gratitude practice"
	ContentBoundarySetting     ContentType = "boundary setting"
	ContentStressManagement    ContentType = "stress management"
)

// ContentTypes lists all categories in rotation order
var ContentTypes = []ContentType{
	ContentMeditationTip,
	ContentWeeklyChallenge,
	ContentMindfulnessPractice,
	ContentEmotionalWellness,
	ContentSomaticExercise,
	ContentBreathworkTechnique,
	ContentSleepOptimization,
	ContentGratitudePractice,
	ContentBoundarySetting,
	ContentStressManagement,
}

// NextContentType returns the category following the given one in the
// rotation. Unknown or empty input starts the rotation over.
func NextContentType(last ContentType) ContentType {
	for i, ct := range ContentTypes {
		if ct == last {
			return ContentTypes[(i+1)%len(ContentTypes)]
		}
	}
	return ContentTypes[0]
}

// WellnessContent is a generated piece of scheduled channel content
type WellnessContent struct {
	ID          int64       `json:"id" db:"id"`
	Content     string      `json:"content" db:"content"`
	ContentType ContentType `json:"content_type" db:"content_type"`
	ChannelID   int64       `json:"channel_id" db:"channel_id"`
	Posted      bool        `json:"posted" db:"posted"`
	PostedAt    *time.Time  `json:"posted_at,omitempty" db:"posted_at"`
	Reasoning   string      `json:"reasoning,omitempty" db:"reasoning"`
	Confidence  float64     `json:"confidence" db:"confidence"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// Validate validates a wellness content record before storage
func (w *WellnessContent) Validate() error {
	if w.Content == "" {
		return fmt.Errorf("content is required")
	}
	if w.ContentType == "" {
		return fmt.Errorf("content type is required")
	}
	if w.ChannelID == 0 {
		return fmt.Errorf("channel ID is required")
	}
	return nil
}
