// File: internal/prompts/prompts.go
// Package prompts renders the system and user prompts used by the
// message pipeline and the wellness content generator.
package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

var templates = template.Must(template.New("prompts").Parse(promptText))

// Render executes a named prompt template with the given data
func Render(name string, data interface{}) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// AnalyzeData feeds the intent classification prompt
type AnalyzeData struct {
	Content    string
	Author     string
	History    []HistoryEntry
	Categories []string
}

// HistoryEntry is a single prior channel message, oldest first
type HistoryEntry struct {
	Author  string
	Content string
}

// RespondData feeds the response generation prompt
type RespondData struct {
	Content   string
	Author    string
	Intent    string
	History   []HistoryEntry
	Documents []string
}

// WellnessData feeds the scheduled content prompt
type WellnessData struct {
	ContentType     string
	PreviousContent []string
}

const promptText = `
{{define "analyze_system" -}}
You are the intent classifier for a wellness community Discord server.
Classify the latest message into exactly one of these categories:
{{range .Categories}}- {{.}}
{{end}}
Use "ignore" for greetings, spam, off-topic chatter, and anything that
does not need a reply. Respond with a JSON object containing "intent",
"reasoning" and "confidence" (0.0 to 1.0).
{{- end}}

{{define "analyze_user" -}}
{{if .History -}}
Recent channel history (oldest first):
{{range .History}}{{.Author}}: {{.Content}}
{{end}}
{{end -}}
Latest message from {{.Author}}:
{{.Content}}
{{- end}}

{{define "respond_system" -}}
You are a warm, grounded wellness guide for a Discord community focused
on mindfulness, breathwork, hypnosis and somatic practice. The message
you are answering was classified as "{{.Intent}}".
{{if .Documents}}
Use the following knowledge base passages where relevant:
{{range .Documents}}---
{{.}}
{{end}}---
{{end}}
Keep replies conversational and under 1500 characters. Respond with a
JSON object containing "response" and "reasoning".
{{- end}}

{{define "respond_user" -}}
{{if .History -}}
Recent channel history (oldest first):
{{range .History}}{{.Author}}: {{.Content}}
{{end}}
{{end -}}
Reply to this message from {{.Author}}:
{{.Content}}
{{- end}}

{{define "wellness_system" -}}
You write short scheduled posts for a wellness community Discord
channel. Today's category is "{{.ContentType}}". Write something
practical and fresh, under 1000 characters, with no preamble.
{{if .PreviousContent}}
Do not repeat these previously posted pieces:
{{range .PreviousContent}}- {{.}}
{{end}}{{end}}
Respond with a JSON object containing "content", "reasoning" and
"confidence" (0.0 to 1.0).
{{- end}}

{{define "wellness_user" -}}
Generate one new {{.ContentType}} for the community.
{{- end}}
`
