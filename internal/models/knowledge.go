// File: internal/models/knowledge.go
package models

// KBDocument is a knowledge base entry held in the vector store
type KBDocument struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Title    string  `json:"title,omitempty"`
	Content  string  `json:"content"`
	Score    float32 `json:"score,omitempty"`
}
