package service

import (
	"context"

	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/repository"
	"github.com/luminakb/lumina/internal/seek"
)

// SeekService resolves activated citations against a collection's items
type SeekService struct {
	contentRepo *repository.ContentRepository
	coordinator *seek.Coordinator
}

// NewSeekService creates a new seek service
func NewSeekService(contentRepo *repository.ContentRepository, coordinator *seek.Coordinator) *SeekService {
	return &SeekService{contentRepo: contentRepo, coordinator: coordinator}
}

// Resolve finds the content item a reference points at and the offset
// the client's viewer should move to
func (s *SeekService) Resolve(ctx context.Context, collectionID string, req *domain.SeekRequest) (domain.SeekTarget, error) {
	items, err := s.contentRepo.ListByCollection(collectionID)
	if err != nil {
		return domain.SeekTarget{}, err
	}
	return s.coordinator.Resolve(req.Reference, req.RawOffset, items, req.CurrentItemID)
}
