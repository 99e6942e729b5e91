package service

import (
	"context"
	"fmt"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/repository"
)

// ReferenceService covers the lookup tables the check-in flow depends on:
// venues, role records and identification-document types.
type ReferenceService interface {
	CreateVenue(ctx context.Context, venue *domain.Venue) (*domain.Venue, error)
	GetVenue(ctx context.Context, id int64) (*domain.Venue, error)
	UpdateVenue(ctx context.Context, id int64, patch domain.VenuePatch) (*domain.Venue, error)
	ListVenues(ctx context.Context, limit, offset int) ([]domain.Venue, error)
	DeleteVenue(ctx context.Context, id int64) error

	CreateRole(ctx context.Context, name string) (*domain.RoleRecord, error)
	ListRoles(ctx context.Context) ([]domain.RoleRecord, error)
	DeleteRole(ctx context.Context, id int64) error

	CreateIDCardType(ctx context.Context, name string) (*domain.IDCardType, error)
	ListIDCardTypes(ctx context.Context) ([]domain.IDCardType, error)
	DeleteIDCardType(ctx context.Context, id int64) error
}

type referenceService struct {
	venueRepo      repository.VenueRepository
	roleRepo       repository.RoleRepository
	idCardTypeRepo repository.IDCardTypeRepository
}

func NewReferenceService(
	venueRepo repository.VenueRepository,
	roleRepo repository.RoleRepository,
	idCardTypeRepo repository.IDCardTypeRepository,
) ReferenceService {
	return &referenceService{
		venueRepo:      venueRepo,
		roleRepo:       roleRepo,
		idCardTypeRepo: idCardTypeRepo,
	}
}

func (s *referenceService) CreateVenue(ctx context.Context, venue *domain.Venue) (*domain.Venue, error) {
	if venue.Name == "" {
		return nil, fmt.Errorf("%w: venue name required", domain.ErrInvalidInput)
	}
	created, err := s.venueRepo.Create(ctx, venue)
	if err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}
	return created, nil
}

func (s *referenceService) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	if venue == nil {
		return nil, domain.ErrNotFound
	}
	return venue, nil
}

func (s *referenceService) UpdateVenue(ctx context.Context, id int64, patch domain.VenuePatch) (*domain.Venue, error) {
	venue, err := s.venueRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}
	if venue == nil {
		return nil, domain.ErrNotFound
	}
	return venue, nil
}

func (s *referenceService) ListVenues(ctx context.Context, limit, offset int) ([]domain.Venue, error) {
	venues, err := s.venueRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}

func (s *referenceService) DeleteVenue(ctx context.Context, id int64) error {
	deleted, err := s.venueRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *referenceService) CreateRole(ctx context.Context, name string) (*domain.RoleRecord, error) {
	if _, ok := domain.ParseRole(name); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, name)
	}
	role, err := s.roleRepo.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

func (s *referenceService) ListRoles(ctx context.Context) ([]domain.RoleRecord, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *referenceService) DeleteRole(ctx context.Context, id int64) error {
	deleted, err := s.roleRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *referenceService) CreateIDCardType(ctx context.Context, name string) (*domain.IDCardType, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalidInput)
	}
	t, err := s.idCardTypeRepo.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create id card type: %w", err)
	}
	return t, nil
}

func (s *referenceService) ListIDCardTypes(ctx context.Context) ([]domain.IDCardType, error) {
	types, err := s.idCardTypeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list id card types: %w", err)
	}
	return types, nil
}

func (s *referenceService) DeleteIDCardType(ctx context.Context, id int64) error {
	deleted, err := s.idCardTypeRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete id card type: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
