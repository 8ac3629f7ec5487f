// File: internal/models/intent.go
package models

// Intent is the classified topic of an inbound message
type Intent string

const (
	IntentPlatformInfo   Intent = "platform and business info"
	IntentPersonalGrowth Intent = "personal growth and creativity"
	IntentMindfulness    Intent = "mindfulness"
	IntentBreathwork     Intent = "breathwork"
	IntentHypnosis       Intent = "hypnosis"
	IntentTraumaTherapy  Intent = "trauma and somatic therapy"
	IntentIgnore         Intent = "ignore"
)

// Intents lists all known intent categories
var Intents = []Intent{
	IntentPlatformInfo,
	IntentPersonalGrowth,
	IntentMindfulness,
	IntentBreathwork,
	IntentHypnosis,
	IntentTraumaTherapy,
	IntentIgnore,
}

// Valid reports whether the intent is one of the known categories
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// Analysis is the structured output of message classification
type Analysis struct {
	Intent     Intent  `json:"intent"`
	Reasoning  string  `json:"reasoning"`
	Confidence float64 `json:"confidence"`
}

// Reply is the structured output of response generation
type Reply struct {
	Response  string `json:"response"`
	Reasoning string `json:"reasoning,omitempty"`
}
