package wellness

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyche-voyage/launchpad/internal/models"
	"github.com/psyche-voyage/launchpad/internal/storage"
)

const testChannelID = int64(777)

type fakeCompleter struct {
	calls      int
	lastSystem string
	content    generated
	err        error
}

func (f *fakeCompleter) CreateStructuredCompletion(ctx context.Context, system, user string, result interface{}) (*models.TokenUsage, error) {
	f.calls++
	f.lastSystem = system
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := result.(*generated); ok {
		*v = f.content
	}
	return &models.TokenUsage{TotalTokens: 20}, nil
}

type fakeSender struct {
	calls   int
	content string
	err     error
}

func (f *fakeSender) SendMessage(ctx context.Context, channelID int64, content string) error {
	f.calls++
	f.content = content
	return f.err
}

func newWellnessStorage(t *testing.T) storage.Storage {
	t.Helper()

	store := storage.NewSQLiteStorage(&storage.StorageConfig{
		Type:             "sqlite",
		ConnectionString: filepath.Join(t.TempDir(), "wellness.db"),
		MaxConnections:   4,
		MaxIdleTime:      time.Minute,
	})
	require.NoError(t, store.Connect())
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNextContentTypeStartsRotation(t *testing.T) {
	store := newWellnessStorage(t)
	manager := NewManager(&fakeCompleter{}, store, &fakeSender{}, testChannelID, 100)

	contentType, err := manager.NextContentType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypes[0], contentType)
}

func TestNextContentTypeAdvances(t *testing.T) {
	store := newWellnessStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveWellnessContent(ctx, &models.WellnessContent{
		Content:     "x",
		ContentType: models.ContentTypes[0],
		ChannelID:   testChannelID,
		CreatedAt:   time.Now().UTC(),
	}))

	manager := NewManager(&fakeCompleter{}, store, &fakeSender{}, testChannelID, 100)
	contentType, err := manager.NextContentType(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypes[1], contentType)
}

func TestGenerateIncludesPreviousPosts(t *testing.T) {
	store := newWellnessStorage(t)
	ctx := context.Background()

	earlier := &models.WellnessContent{
		Content:     "Try 4-7-8 breathing before bed.",
		ContentType: models.ContentBreathworkTechnique,
		ChannelID:   testChannelID,
		CreatedAt:   time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, store.SaveWellnessContent(ctx, earlier))
	require.NoError(t, store.MarkContentPosted(ctx, earlier.ID))

	completer := &fakeCompleter{
		content: generated{Content: "Take one mindful breath right now.", Reasoning: "fresh angle", Confidence: 0.8},
	}
	manager := NewManager(completer, store, &fakeSender{}, testChannelID, 100)

	content, err := manager.Generate(ctx, models.ContentBreathworkTechnique)
	require.NoError(t, err)
	assert.Contains(t, completer.lastSystem, "Try 4-7-8 breathing before bed.")
	assert.Equal(t, "Take one mindful breath right now.", content.Content)
	assert.NotZero(t, content.ID)
	assert.False(t, content.Posted)
}

func TestGenerateEmptyContentFails(t *testing.T) {
	store := newWellnessStorage(t)
	completer := &fakeCompleter{content: generated{Content: ""}}
	manager := NewManager(completer, store, &fakeSender{}, testChannelID, 100)

	_, err := manager.Generate(context.Background(), models.ContentMeditationTip)
	assert.Error(t, err)
}

func TestGenerateAndPost(t *testing.T) {
	store := newWellnessStorage(t)
	ctx := context.Background()

	completer := &fakeCompleter{
		content: generated{Content: "Notice three things you can hear.", Reasoning: "grounding", Confidence: 0.9},
	}
	sender := &fakeSender{}
	manager := NewManager(completer, store, sender, testChannelID, 100)

	content, err := manager.GenerateAndPost(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.ContentTypes[0], content.ContentType)
	assert.True(t, content.Posted)
	require.NotNil(t, content.PostedAt)

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "Notice three things you can hear.", sender.content)

	posted, err := store.GetPostedContent(ctx, testChannelID, 10)
	require.NoError(t, err)
	require.Len(t, posted, 1)
	assert.True(t, posted[0].Posted)
}

func TestGenerateAndPostRotatesAcrossRuns(t *testing.T) {
	store := newWellnessStorage(t)
	ctx := context.Background()

	completer := &fakeCompleter{
		content: generated{Content: "A small daily practice goes a long way.", Confidence: 0.9},
	}
	manager := NewManager(completer, store, &fakeSender{}, testChannelID, 100)

	first, err := manager.GenerateAndPost(ctx)
	require.NoError(t, err)
	second, err := manager.GenerateAndPost(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.ContentTypes[0], first.ContentType)
	assert.Equal(t, models.ContentTypes[1], second.ContentType)
}

func TestGenerateAndPostSendFailure(t *testing.T) {
	store := newWellnessStorage(t)
	ctx := context.Background()

	completer := &fakeCompleter{
		content: generated{Content: "Stretch your shoulders for thirty seconds.", Confidence: 0.9},
	}
	sender := &fakeSender{err: errors.New("gateway unavailable")}
	manager := NewManager(completer, store, sender, testChannelID, 100)

	_, err := manager.GenerateAndPost(ctx)
	assert.Error(t, err)

	// The content is saved but never marked posted
	posted, perr := store.GetPostedContent(ctx, testChannelID, 10)
	require.NoError(t, perr)
	assert.Empty(t, posted)

	last, lerr := store.GetLastContent(ctx, testChannelID)
	require.NoError(t, lerr)
	require.NotNil(t, last)
	assert.False(t, last.Posted)
}

func TestGenerateAndPostCompleterFailure(t *testing.T) {
	store := newWellnessStorage(t)
	completer := &fakeCompleter{err: errors.New("model unavailable")}
	manager := NewManager(completer, store, &fakeSender{}, testChannelID, 100)

	_, err := manager.GenerateAndPost(context.Background())
	assert.Error(t, err)
}
