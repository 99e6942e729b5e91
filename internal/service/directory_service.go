package service

import (
	"context"
	"fmt"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/repository"
)

// DirectoryService exposes the visitor directory outside the registration
// workflow: front-desk lookup and administrative corrections.
type DirectoryService interface {
	GetVisitor(ctx context.Context, id int64) (*domain.Visitor, error)
	FindVisitorByIDCard(ctx context.Context, number string) (*domain.Visitor, error)
	ListVisitors(ctx context.Context, limit, offset int) ([]domain.Visitor, error)
	UpdateVisitor(ctx context.Context, id int64, patch domain.VisitorPatch) (*domain.Visitor, error)
	DeleteVisitor(ctx context.Context, id int64) error
}

type directoryService struct {
	visitorRepo repository.VisitorRepository
}

func NewDirectoryService(visitorRepo repository.VisitorRepository) DirectoryService {
	return &directoryService{visitorRepo: visitorRepo}
}

func (s *directoryService) GetVisitor(ctx context.Context, id int64) (*domain.Visitor, error) {
	visitor, err := s.visitorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get visitor: %w", err)
	}
	if visitor == nil {
		return nil, domain.ErrNotFound
	}
	return visitor, nil
}

func (s *directoryService) FindVisitorByIDCard(ctx context.Context, number string) (*domain.Visitor, error) {
	visitor, err := s.visitorRepo.FindByIDCardNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to find visitor: %w", err)
	}
	if visitor == nil {
		return nil, domain.ErrNotFound
	}
	return visitor, nil
}

func (s *directoryService) ListVisitors(ctx context.Context, limit, offset int) ([]domain.Visitor, error) {
	visitors, err := s.visitorRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	return visitors, nil
}

func (s *directoryService) UpdateVisitor(ctx context.Context, id int64, patch domain.VisitorPatch) (*domain.Visitor, error) {
	visitor, err := s.visitorRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update visitor: %w", err)
	}
	if visitor == nil {
		return nil, domain.ErrNotFound
	}
	return visitor, nil
}

func (s *directoryService) DeleteVisitor(ctx context.Context, id int64) error {
	deleted, err := s.visitorRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete visitor: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
