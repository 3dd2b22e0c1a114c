package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/config"
	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/llm"
	"github.com/luminakb/lumina/internal/passage"
	"github.com/luminakb/lumina/internal/repository"
	"github.com/luminakb/lumina/internal/retrieval"
)

type testEnv struct {
	chat        *ChatService
	ingest      *IngestService
	collections *repository.CollectionRepository
	sessions    *repository.SessionRepository
	client      *llm.MockClient
	completions int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	collectionRepo := repository.NewCollectionRepository(db)
	contentRepo := repository.NewContentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	env := &testEnv{
		collections: collectionRepo,
		sessions:    sessionRepo,
		client:      llm.NewMockClient(32),
	}
	env.client.CompleteF = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		env.completions++
		return "Mock answer.", nil
	}

	cfg := &config.Config{Retrieval: config.RetrievalConfig{TopK: 8}}
	logger := zap.NewNop()

	env.chat = NewChatService(
		cfg,
		collectionRepo,
		contentRepo,
		sessionRepo,
		passage.NewNormalizer(logger),
		retrieval.NewRanker(env.client, logger),
		env.client,
		logger,
	)
	env.ingest = NewIngestService(collectionRepo, contentRepo, logger)

	return env
}

func (e *testEnv) createCollection(t *testing.T) string {
	t.Helper()
	collection := &domain.Collection{Name: "physics"}
	require.NoError(t, e.collections.Create(collection))
	return collection.ID
}

func (e *testEnv) addVideo(t *testing.T, collectionID, title string, transcript string) {
	t.Helper()
	_, err := e.ingest.AddContentItem(context.Background(), collectionID, &domain.CreateContentItemRequest{
		Type:       "youtube",
		Title:      title,
		Transcript: json.RawMessage(transcript),
	})
	require.NoError(t, err)
}

func TestChatEmptyCollectionShortCircuits(t *testing.T) {
	env := newTestEnv(t)
	collectionID := env.createCollection(t)

	resp, err := env.chat.Chat(context.Background(), collectionID, &domain.ChatRequest{Message: "anything?"})
	require.NoError(t, err)

	assert.Equal(t, NoRelevantContentAnswer, resp.Answer)
	assert.Zero(t, env.completions, "completion provider must not be called for an empty collection")

	messages, err := env.chat.GetMessages(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)
}

func TestChatTurnWithCitations(t *testing.T) {
	env := newTestEnv(t)
	collectionID := env.createCollection(t)
	env.addVideo(t, collectionID, "My Video", `[{"text":"Speed increased","start":6}]`)

	env.client.CompleteF = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		// the context block must carry the passage with its tag
		assert.Contains(t, userPrompt, "Speed increased {{ref:youtube:My Video:6}}")
		return "Speed increased {{ref:youtube:My Video:6}}", nil
	}

	resp, err := env.chat.Chat(context.Background(), collectionID, &domain.ChatRequest{Message: "what happened to the speed?"})
	require.NoError(t, err)

	require.Len(t, resp.References, 1)
	assert.Equal(t, domain.SourceYouTube, resp.References[0].Source.Type)
	assert.Equal(t, 6, resp.References[0].Source.Location.Value)
	assert.Equal(t, "Speed increased __REF_MARKER_0__", resp.Answer)

	require.Len(t, resp.Tokens, 2)
	assert.Equal(t, domain.TokenReference, resp.Tokens[1].Kind)

	// references survive persistence
	messages, err := env.chat.GetMessages(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Len(t, messages[1].References, 1)
	assert.Equal(t, "Speed increased", messages[1].References[0].Text)
}

func TestChatCompletionFailureBecomesMessage(t *testing.T) {
	env := newTestEnv(t)
	collectionID := env.createCollection(t)
	env.addVideo(t, collectionID, "My Video", `[{"text":"Speed increased","start":6}]`)

	env.client.CompleteF = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "", errors.New("rate limited")
	}

	resp, err := env.chat.Chat(context.Background(), collectionID, &domain.ChatRequest{Message: "question"})
	require.NoError(t, err, "a failed completion is a degraded answer, not a failed turn")
	assert.Contains(t, resp.Answer, "rate limited")

	// the user's question is preserved even though the answer failed
	messages, err := env.chat.GetMessages(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "question", messages[0].Content)
}

func TestChatSessionContinuity(t *testing.T) {
	env := newTestEnv(t)
	collectionID := env.createCollection(t)

	first, err := env.chat.Chat(context.Background(), collectionID, &domain.ChatRequest{Message: "one"})
	require.NoError(t, err)

	second, err := env.chat.Chat(context.Background(), collectionID, &domain.ChatRequest{
		SessionID: first.SessionID,
		Message:   "two",
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	messages, err := env.chat.GetMessages(context.Background(), first.SessionID)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestChatUnknownCollection(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.chat.Chat(context.Background(), "missing", &domain.ChatRequest{Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateStudyNotes(t *testing.T) {
	env := newTestEnv(t)
	collectionID := env.createCollection(t)
	env.addVideo(t, collectionID, "My Video", `[{"text":"Speed increased","start":6}]`)

	env.client.CompleteF = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "Overview. Speed increased {{ref:youtube:My Video:6}}", nil
	}

	resp, err := env.chat.GenerateStudyNotes(context.Background(), collectionID, "")
	require.NoError(t, err)
	require.Len(t, resp.References, 1)

	messages, err := env.chat.GetMessages(context.Background(), resp.SessionID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsStudyNotes)
}

func TestIngestRejectsMalformedTranscript(t *testing.T) {
	env := newTestEnv(t)
	collectionID := env.createCollection(t)

	_, err := env.ingest.AddContentItem(context.Background(), collectionID, &domain.CreateContentItemRequest{
		Type:       "youtube",
		Title:      "Broken",
		Transcript: json.RawMessage(`{"not":"segments"}`),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestIngestRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)
	collectionID := env.createCollection(t)

	_, err := env.ingest.AddContentItem(context.Background(), collectionID, &domain.CreateContentItemRequest{
		Type:  "webinar",
		Title: "Nope",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.True(t, strings.Contains(err.Error(), "webinar"))
}
