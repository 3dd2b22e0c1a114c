package service

import (
	"context"

	"github.com/luminakb/lumina/internal/domain"
	"github.com/luminakb/lumina/internal/repository"
)

// AdminService handles admin operations
type AdminService struct {
	collectionRepo *repository.CollectionRepository
	contentRepo    *repository.ContentRepository
	sessionRepo    *repository.SessionRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	collectionRepo *repository.CollectionRepository,
	contentRepo *repository.ContentRepository,
	sessionRepo *repository.SessionRepository,
) *AdminService {
	return &AdminService{
		collectionRepo: collectionRepo,
		contentRepo:    contentRepo,
		sessionRepo:    sessionRepo,
	}
}

// Collection operations

func (s *AdminService) CreateCollection(ctx context.Context, req *domain.CreateCollectionRequest) (*domain.Collection, error) {
	collection := &domain.Collection{
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
	}
	if err := s.collectionRepo.Create(collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *AdminService) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	return s.collectionRepo.Get(id)
}

func (s *AdminService) ListCollections(ctx context.Context) ([]*domain.Collection, error) {
	return s.collectionRepo.List()
}

func (s *AdminService) UpdateCollection(ctx context.Context, id string, req *domain.UpdateCollectionRequest) (*domain.Collection, error) {
	collection, err := s.collectionRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != "" {
		collection.Name = req.Name
	}
	if req.Description != "" {
		collection.Description = req.Description
	}
	if req.Metadata != nil {
		collection.Metadata = req.Metadata
	}

	if err := s.collectionRepo.Update(collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (s *AdminService) DeleteCollection(ctx context.Context, id string) error {
	return s.collectionRepo.Delete(id)
}

// Stats

func (s *AdminService) GetStats(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{}
	var err error

	if stats.TotalCollections, err = s.collectionRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalItems, err = s.contentRepo.Count(); err != nil {
		return nil, err
	}
	if stats.TotalSessions, err = s.sessionRepo.CountSessions(); err != nil {
		return nil, err
	}
	if stats.TotalChats, err = s.sessionRepo.CountChats(); err != nil {
		return nil, err
	}

	return stats, nil
}
