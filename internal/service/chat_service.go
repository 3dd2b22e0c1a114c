package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/citation"
	"github.com/luminakb/lumina/internal/config"
	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/llm"
	"github.com/luminakb/lumina/internal/passage"
	"github.com/luminakb/lumina/internal/repository"
	"github.com/luminakb/lumina/internal/retrieval"
)

// NoRelevantContentAnswer is the fixed reply when a collection yields no
// passages; the completion provider is never called in that case.
const NoRelevantContentAnswer = "I couldn't find relevant information about that in this collection. Try adding more content or rephrasing your question."

const studyNotesPrompt = "Write structured study notes for this material: a short overview, the key points as a bulleted list, and any important terms with definitions. Cite the source of each point."

// ChatService runs question/answer turns against a collection
type ChatService struct {
	cfg            *config.Config
	collectionRepo *repository.CollectionRepository
	contentRepo    *repository.ContentRepository
	sessionRepo    *repository.SessionRepository
	normalizer     *passage.Normalizer
	ranker         *retrieval.Ranker
	completer      llm.Completer
	logger         *zap.Logger

	// turns serializes question turns per collection so overlapping
	// submissions cannot interleave their history writes
	turns keyedMutex
}

// NewChatService creates a new chat service
func NewChatService(
	cfg *config.Config,
	collectionRepo *repository.CollectionRepository,
	contentRepo *repository.ContentRepository,
	sessionRepo *repository.SessionRepository,
	normalizer *passage.Normalizer,
	ranker *retrieval.Ranker,
	completer llm.Completer,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:            cfg,
		collectionRepo: collectionRepo,
		contentRepo:    contentRepo,
		sessionRepo:    sessionRepo,
		normalizer:     normalizer,
		ranker:         ranker,
		completer:      completer,
		logger:         logger,
	}
}

// Chat handles one question/answer turn. The user message is persisted
// before the answer is attempted, so a failed turn still appears in
// history with an error reply rather than vanishing.
func (s *ChatService) Chat(ctx context.Context, collectionID string, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	unlock := s.turns.lock(collectionID)
	defer unlock()

	collection, err := s.collectionRepo.Get(collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrNotFound
	}

	sessionID, err := s.ensureSession(collectionID, req.SessionID)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		SessionID: sessionID,
		Role:      "user",
		Content:   req.Message,
	}
	if err := s.sessionRepo.CreateMessage(userMsg); err != nil {
		return nil, err
	}

	resp := s.answer(ctx, collectionID, sessionID, req.Message)

	assistantMsg := &domain.Message{
		SessionID:  sessionID,
		Role:       "assistant",
		Content:    resp.Answer,
		References: resp.References,
	}
	if err := s.sessionRepo.CreateMessage(assistantMsg); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(sessionID); err != nil {
		return nil, err
	}

	return resp, nil
}

// answer runs the retrieval and citation pipeline for one question.
// It never returns an error: failures become the answer text.
func (s *ChatService) answer(ctx context.Context, collectionID, sessionID, question string) *domain.ChatResponse {
	ranked := s.retrieve(ctx, collectionID, question)
	if len(ranked) == 0 {
		return &domain.ChatResponse{
			SessionID: sessionID,
			Answer:    NoRelevantContentAnswer,
			Tokens:    []domain.MessageToken{{Kind: domain.TokenText, Text: NoRelevantContentAnswer}},
		}
	}

	raw, err := s.completer.Complete(ctx, citation.SystemPrompt, citation.BuildUserPrompt(question, ranked))
	if err != nil {
		s.logger.Warn("completion failed", zap.String("collection_id", collectionID), zap.Error(err))
		answer := fmt.Sprintf("Sorry, I couldn't generate an answer: %v", err)
		return &domain.ChatResponse{
			SessionID: sessionID,
			Answer:    answer,
			Tokens:    []domain.MessageToken{{Kind: domain.TokenText, Text: answer}},
		}
	}

	decoded := citation.Decode(raw, ranked)
	return &domain.ChatResponse{
		SessionID:  sessionID,
		Answer:     decoded.Content,
		Tokens:     decoded.Tokens,
		References: decoded.References,
	}
}

// retrieve normalizes the collection's items and ranks passages against
// the question
func (s *ChatService) retrieve(ctx context.Context, collectionID, question string) []domain.Passage {
	items, err := s.contentRepo.ListByCollection(collectionID)
	if err != nil {
		s.logger.Warn("listing content items failed", zap.String("collection_id", collectionID), zap.Error(err))
		return nil
	}
	passages := s.normalizer.Normalize(items)
	return s.ranker.Rank(ctx, question, passages, s.cfg.Retrieval.TopK)
}

// ChatStream handles a streaming chat turn: progress chunks while the
// pipeline runs, then the decoded answer with its references.
func (s *ChatService) ChatStream(ctx context.Context, collectionID string, req *domain.ChatRequest) (<-chan domain.StreamChunk, error) {
	collection, err := s.collectionRepo.Get(collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrNotFound
	}

	ch := make(chan domain.StreamChunk, 16)
	go func() {
		defer close(ch)

		ch <- domain.StreamChunk{Type: "thinking", Content: "Searching the collection..."}
		resp, err := s.Chat(ctx, collectionID, req)
		if err != nil {
			ch <- domain.StreamChunk{Type: "error", Content: err.Error()}
			return
		}
		ch <- domain.StreamChunk{Type: "content", Content: resp.Answer, Tokens: resp.Tokens}
		if len(resp.References) > 0 {
			ch <- domain.StreamChunk{Type: "references", References: resp.References}
		}
		ch <- domain.StreamChunk{Type: "done", Content: resp.SessionID}
	}()
	return ch, nil
}

// GenerateStudyNotes produces a cited study-notes message over the
// collection's most central passages and appends it to the session.
func (s *ChatService) GenerateStudyNotes(ctx context.Context, collectionID string, sessionID string) (*domain.ChatResponse, error) {
	unlock := s.turns.lock(collectionID)
	defer unlock()

	collection, err := s.collectionRepo.Get(collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrNotFound
	}

	sessionID, err = s.ensureSession(collectionID, sessionID)
	if err != nil {
		return nil, err
	}

	resp := s.answer(ctx, collectionID, sessionID, studyNotesPrompt)

	notesMsg := &domain.Message{
		SessionID:    sessionID,
		Role:         "assistant",
		Content:      resp.Answer,
		References:   resp.References,
		IsStudyNotes: true,
	}
	if err := s.sessionRepo.CreateMessage(notesMsg); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Update(sessionID); err != nil {
		return nil, err
	}

	return resp, nil
}

// GetMessages returns the message history of a session
func (s *ChatService) GetMessages(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	session, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return s.sessionRepo.GetMessages(sessionID)
}

func (s *ChatService) ensureSession(collectionID, sessionID string) (string, error) {
	if sessionID != "" {
		session, err := s.sessionRepo.Get(sessionID)
		if err != nil {
			return "", err
		}
		if session != nil && session.CollectionID == collectionID {
			return sessionID, nil
		}
		// unknown or mismatched session falls through to a fresh one
	}
	session := &domain.Session{CollectionID: collectionID}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", err
	}
	return session.ID, nil
}

// keyedMutex hands out one mutex per key
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
