// File: internal/vectorstore/store.go
// Package vectorstore holds the knowledge base in an embedded,
// persistent vector database.
package vectorstore

import (
	"context"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/sirupsen/logrus"

	"github.com/psyche-voyage/launchpad/internal/config"
	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// EmbeddingFunc produces an embedding vector for a text
type EmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

// Store wraps a persistent chromem collection of knowledge documents
type Store struct {
	db     *chromem.DB
	col    *chromem.Collection
	logger *logrus.Logger
}

// New opens (or creates) the knowledge base at the configured path
func New(cfg *config.VectorStoreConfig, embed EmbeddingFunc) (*Store, error) {
	db, err := chromem.NewPersistentDB(cfg.Path, cfg.Compress)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeConnection, "failed to open vector store", err.Error())
	}

	col, err := db.GetOrCreateCollection(cfg.Collection, nil, chromem.EmbeddingFunc(embed))
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeConnection, "failed to open collection", err.Error())
	}

	return &Store{
		db:     db,
		col:    col,
		logger: utils.GetLogger(),
	}, nil
}

// Count returns the number of documents in the knowledge base
func (s *Store) Count() int {
	return s.col.Count()
}

// Seed adds documents to the knowledge base, skipping IDs already present
func (s *Store) Seed(ctx context.Context, docs []models.KBDocument) (int, error) {
	added := 0
	for _, doc := range docs {
		if doc.ID == "" || doc.Content == "" {
			continue
		}
		if _, err := s.col.GetByID(ctx, doc.ID); err == nil {
			continue
		}
		err := s.col.AddDocument(ctx, chromem.Document{
			ID: doc.ID,
			Metadata: map[string]string{
				"category": doc.Category,
				"title":    doc.Title,
			},
			Content: doc.Content,
		})
		if err != nil {
			return added, utils.NewAppError(utils.ErrCodeProcessing, "failed to add document", err.Error())
		}
		added++
	}
	s.logger.WithField("added", added).Info("Knowledge base seeded")
	return added, nil
}

// Search returns the documents most similar to the query, optionally
// filtered by category. The requested limit is clamped to the collection
// size, and retried with a smaller limit when the store reports the
// result count is still too large for the filtered subset.
func (s *Store) Search(ctx context.Context, query, category string, limit int) ([]models.KBDocument, error) {
	if limit <= 0 {
		limit = 10
	}
	if count := s.col.Count(); limit > count {
		limit = count
	}
	if limit == 0 {
		return nil, nil
	}

	var where map[string]string
	if category != "" {
		where = map[string]string{"category": category}
	}

	var results []chromem.Result
	var err error
	for n := limit; n > 0; n-- {
		results, err = s.col.Query(ctx, query, n, where, nil)
		if err == nil {
			break
		}
		if !strings.Contains(err.Error(), "nResults must be") {
			return nil, utils.NewAppError(utils.ErrCodeProcessing, "knowledge base query failed", err.Error())
		}
	}
	if err != nil {
		return nil, nil
	}

	docs := make([]models.KBDocument, 0, len(results))
	for _, r := range results {
		docs = append(docs, models.KBDocument{
			ID:       r.ID,
			Category: r.Metadata["category"],
			Title:    r.Metadata["title"],
			Content:  r.Content,
			Score:    r.Similarity,
		})
	}
	return docs, nil
}
