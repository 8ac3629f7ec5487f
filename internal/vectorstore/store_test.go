package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyche-voyage/launchpad/internal/config"
	"github.com/psyche-voyage/launchpad/internal/models"
)

// hashEmbedding is a deterministic stand-in for a real embedding model.
// Texts sharing characters land near each other, which is enough for
// exercising search plumbing.
func hashEmbedding(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, 8)
	for i, r := range text {
		vector[i%8] += float32(r) / 1000
	}
	return vector, nil
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(&config.VectorStoreConfig{
		Path:       t.TempDir(),
		Collection: "knowledge_base",
	}, hashEmbedding)
	require.NoError(t, err)
	return store
}

func testDocs() []models.KBDocument {
	return []models.KBDocument{
		{ID: "kb-1", Category: "breathwork", Title: "Box breathing", Content: "Inhale four counts, hold four, exhale four, hold four."},
		{ID: "kb-2", Category: "mindfulness", Title: "Body scan", Content: "Move attention slowly from head to toe."},
		{ID: "kb-3", Category: "hypnosis", Title: "Self-hypnosis basics", Content: "Find a quiet place and focus on a single point."},
	}
}

func TestSeed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	added, err := store.Seed(ctx, testDocs())
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, store.Count())
}

func TestSeedSkipsDuplicatesAndInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Seed(ctx, testDocs())
	require.NoError(t, err)

	docs := append(testDocs(),
		models.KBDocument{ID: "", Category: "breathwork", Content: "no id"},
		models.KBDocument{ID: "kb-4", Category: "breathwork", Content: ""},
		models.KBDocument{ID: "kb-5", Category: "somatic", Title: "Grounding", Content: "Press your feet into the floor and notice the contact."},
	)
	added, err := store.Seed(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 4, store.Count())
}

func TestSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Seed(ctx, testDocs())
	require.NoError(t, err)

	results, err := store.Search(ctx, "breathing exercise", "", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, doc := range results {
		assert.NotEmpty(t, doc.ID)
		assert.NotEmpty(t, doc.Content)
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Seed(ctx, testDocs())
	require.NoError(t, err)

	results, err := store.Search(ctx, "calm the mind", "mindfulness", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, doc := range results {
		assert.Equal(t, "mindfulness", doc.Category)
	}
}

func TestSearchLimitClampedToCollectionSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Seed(ctx, testDocs())
	require.NoError(t, err)

	results, err := store.Search(ctx, "anything", "", 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchEmptyStore(t *testing.T) {
	store := newTestStore(t)

	results, err := store.Search(context.Background(), "anything", "", 5)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.VectorStoreConfig{Path: dir, Collection: "knowledge_base"}

	store, err := New(cfg, hashEmbedding)
	require.NoError(t, err)
	_, err = store.Seed(context.Background(), testDocs())
	require.NoError(t, err)

	reopened, err := New(cfg, hashEmbedding)
	require.NoError(t, err)
	assert.Equal(t, 3, reopened.Count())
}
