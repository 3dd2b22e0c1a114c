package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/passage"
	"github.com/luminakb/lumina/internal/repository"
)

// IngestService registers content items into collections. Items arrive
// with their content already extracted (transcript segments or document
// chunks); extraction itself happens upstream of this service.
type IngestService struct {
	collectionRepo *repository.CollectionRepository
	contentRepo    *repository.ContentRepository
	logger         *zap.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	collectionRepo *repository.CollectionRepository,
	contentRepo *repository.ContentRepository,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		collectionRepo: collectionRepo,
		contentRepo:    contentRepo,
		logger:         logger,
	}
}

// AddContentItem validates and stores a content item. Payload shape is
// checked here, at the boundary, so the pipeline downstream never has
// to type-sniff stored content.
func (s *IngestService) AddContentItem(ctx context.Context, collectionID string, req *domain.CreateContentItemRequest) (*domain.ContentItem, error) {
	collection, err := s.collectionRepo.Get(collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrNotFound
	}

	if !domain.IsValidSourceType(req.Type) {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidRequest, req.Type)
	}
	itemType := domain.SourceType(req.Type)

	if itemType == domain.SourceYouTube {
		if _, err := passage.ParseTranscript(req.Transcript); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
	} else if len(req.ExtractedContent) == 0 {
		return nil, fmt.Errorf("%w: extracted_content is required for %s items", domain.ErrInvalidRequest, itemType)
	}

	item := &domain.ContentItem{
		CollectionID:     collectionID,
		Type:             itemType,
		Title:            req.Title,
		URL:              req.URL,
		VideoID:          req.VideoID,
		Transcript:       req.Transcript,
		ExtractedContent: req.ExtractedContent,
	}
	if err := s.contentRepo.Create(item); err != nil {
		return nil, err
	}

	if err := s.collectionRepo.UpdateItemCount(collectionID, 1); err != nil {
		return nil, err
	}

	s.logger.Info("content item added",
		zap.String("collection_id", collectionID),
		zap.String("item_id", item.ID),
		zap.String("type", string(item.Type)),
	)

	return item, nil
}

// ListContentItems lists the content items of a collection
func (s *IngestService) ListContentItems(ctx context.Context, collectionID string) (*domain.ContentItemListResponse, error) {
	collection, err := s.collectionRepo.Get(collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrNotFound
	}

	items, err := s.contentRepo.ListByCollection(collectionID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.ContentItem{}
	}
	return &domain.ContentItemListResponse{Items: items, Total: len(items)}, nil
}

// DeleteContentItem removes a content item and updates its collection's
// item count
func (s *IngestService) DeleteContentItem(ctx context.Context, id string) error {
	collectionID, err := s.contentRepo.Delete(id)
	if err != nil {
		return err
	}
	return s.collectionRepo.UpdateItemCount(collectionID, -1)
}
