package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/repository"
	"github.com/entrada-hq/entrada/pkg/events"
	"github.com/entrada-hq/entrada/pkg/logger"
)

type VisitService interface {
	RegisterFullVisit(ctx context.Context, actor *domain.User, req *domain.RegisterVisitRequest) (*domain.AccessView, error)
	CreateAccess(ctx context.Context, actor *domain.User, req *domain.CreateAccessRequest) (*domain.AccessView, error)
	ListAccesses(ctx context.Context, actor *domain.User, filters domain.AccessFilters) ([]domain.AccessView, error)
	GetAccess(ctx context.Context, actor *domain.User, id int64) (*domain.AccessView, error)
	UpdateAccess(ctx context.Context, id int64, patch domain.AccessPatch) (*domain.Access, error)
	MarkVisitExit(ctx context.Context, actor *domain.User, id int64) (*domain.Access, error)
	DeleteAccess(ctx context.Context, id int64) error
}

type visitService struct {
	accessRepo     repository.AccessRepository
	visitorRepo    repository.VisitorRepository
	idCardTypeRepo repository.IDCardTypeRepository
	eventBus       events.EventBus
}

func NewVisitService(
	accessRepo repository.AccessRepository,
	visitorRepo repository.VisitorRepository,
	idCardTypeRepo repository.IDCardTypeRepository,
	eventBus events.EventBus,
) VisitService {
	return &visitService{
		accessRepo:     accessRepo,
		visitorRepo:    visitorRepo,
		idCardTypeRepo: idCardTypeRepo,
		eventBus:       eventBus,
	}
}

// checkVenueScope rejects writes outside the actor's venue. Administrators
// operate across all venues.
func checkVenueScope(actor *domain.User, venueID int64) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.VenueID == nil {
		return fmt.Errorf("%w: no venue assigned", domain.ErrForbidden)
	}
	if *actor.VenueID != venueID {
		return fmt.Errorf("%w: not authorized for this venue", domain.ErrForbidden)
	}
	return nil
}

// inVenueScope reports whether the actor may see a record of the given venue.
// Used on the read side, where a scope miss is masked as not-found.
func inVenueScope(actor *domain.User, venueID int64) bool {
	return actor.IsAdmin() || (actor.VenueID != nil && *actor.VenueID == venueID)
}

func (s *visitService) RegisterFullVisit(ctx context.Context, actor *domain.User, req *domain.RegisterVisitRequest) (*domain.AccessView, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := checkVenueScope(actor, req.VenueID); err != nil {
		return nil, err
	}
	entryTime, err := req.EntryTimestamp()
	if err != nil {
		return nil, err
	}

	idCardType, err := s.idCardTypeRepo.GetByID(ctx, req.IDCardTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check id card type: %w", err)
	}
	if idCardType == nil {
		return nil, fmt.Errorf("%w: unknown id card type", domain.ErrInvalidInput)
	}

	visitor, err := s.findOrCreateVisitor(ctx, req)
	if err != nil {
		return nil, err
	}

	access, err := s.accessRepo.Create(ctx, &domain.CreateAccessRequest{
		VenueID:              req.VenueID,
		VisitorID:            visitor.ID,
		IDCardTypeID:         req.IDCardTypeID,
		IDCardNumberAtAccess: req.IDCardNumber,
		Reason:               req.Reason,
	}, actor.ID, entryTime)
	if err != nil {
		return nil, fmt.Errorf("failed to create access record: %w", err)
	}

	s.publish(ctx, events.VisitRegistered, events.VisitRegisteredEvent{
		AccessID:       access.ID,
		VisitorID:      visitor.ID,
		VenueID:        access.VenueID,
		LoggedByUserID: actor.ID,
		EntryTime:      access.EntryTime,
		Reason:         access.Reason,
	})

	return s.accessRepo.GetViewByID(ctx, access.ID)
}

// findOrCreateVisitor resolves the visitor for a check-in. A lost creation
// race surfaces as ErrConflict from the store; it is retried as a lookup
// because the winner's row is the one we want.
func (s *visitService) findOrCreateVisitor(ctx context.Context, req *domain.RegisterVisitRequest) (*domain.Visitor, error) {
	visitor, err := s.visitorRepo.FindByIDCardNumber(ctx, req.IDCardNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up visitor: %w", err)
	}

	if visitor == nil {
		visitor, err = s.visitorRepo.Create(ctx, &domain.CreateVisitorRequest{
			Name:                req.Name,
			LastName:            req.LastName,
			IDCardNumber:        req.IDCardNumber,
			Phone:               req.Phone,
			Email:               req.Email,
			IDCardTypeID:        req.IDCardTypeID,
			RegistrationVenueID: req.VenueID,
		})
		if errors.Is(err, domain.ErrConflict) {
			visitor, err = s.visitorRepo.FindByIDCardNumber(ctx, req.IDCardNumber)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create visitor: %w", err)
		}
		if visitor == nil {
			return nil, fmt.Errorf("visitor vanished after conflict: %w", domain.ErrConflict)
		}

		s.publish(ctx, events.VisitorCreated, events.VisitorCreatedEvent{
			VisitorID:    visitor.ID,
			IDCardNumber: visitor.IDCardNumber,
			VenueID:      visitor.RegistrationVenueID,
			CreatedAt:    visitor.CreatedAt,
		})
		return visitor, nil
	}

	// Known visitor: refresh contact fields from the request, identity
	// fields stay as stored.
	updated, err := s.visitorRepo.Update(ctx, visitor.ID, domain.VisitorPatch{
		Name:     &req.Name,
		LastName: &req.LastName,
		Phone:    &req.Phone,
		Email:    &req.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update visitor: %w", err)
	}
	if updated == nil {
		return visitor, nil
	}
	return updated, nil
}

func (s *visitService) CreateAccess(ctx context.Context, actor *domain.User, req *domain.CreateAccessRequest) (*domain.AccessView, error) {
	if err := checkVenueScope(actor, req.VenueID); err != nil {
		return nil, err
	}

	visitor, err := s.visitorRepo.FindByID(ctx, req.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up visitor: %w", err)
	}
	if visitor == nil {
		return nil, fmt.Errorf("%w: visitor", domain.ErrNotFound)
	}

	idCardType, err := s.idCardTypeRepo.GetByID(ctx, req.IDCardTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check id card type: %w", err)
	}
	if idCardType == nil {
		return nil, fmt.Errorf("%w: unknown id card type", domain.ErrInvalidInput)
	}

	if req.IDCardNumberAtAccess == "" {
		req.IDCardNumberAtAccess = visitor.IDCardNumber
	}

	access, err := s.accessRepo.Create(ctx, req, actor.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create access record: %w", err)
	}

	s.publish(ctx, events.VisitRegistered, events.VisitRegisteredEvent{
		AccessID:       access.ID,
		VisitorID:      access.VisitorID,
		VenueID:        access.VenueID,
		LoggedByUserID: actor.ID,
		EntryTime:      access.EntryTime,
		Reason:         access.Reason,
	})

	return s.accessRepo.GetViewByID(ctx, access.ID)
}

func (s *visitService) ListAccesses(ctx context.Context, actor *domain.User, filters domain.AccessFilters) ([]domain.AccessView, error) {
	// Venue filtering happens here, never client-side. Non-administrators
	// are pinned to their own venue regardless of the requested filter.
	if !actor.IsAdmin() {
		if actor.VenueID == nil {
			return nil, fmt.Errorf("%w: no venue assigned", domain.ErrForbidden)
		}
		filters.VenueID = actor.VenueID
	}

	views, err := s.accessRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list accesses: %w", err)
	}
	return views, nil
}

func (s *visitService) GetAccess(ctx context.Context, actor *domain.User, id int64) (*domain.AccessView, error) {
	view, err := s.accessRepo.GetViewByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get access: %w", err)
	}
	// Cross-venue existence is never revealed.
	if view == nil || !inVenueScope(actor, view.VenueID) {
		return nil, domain.ErrNotFound
	}
	return view, nil
}

func (s *visitService) UpdateAccess(ctx context.Context, id int64, patch domain.AccessPatch) (*domain.Access, error) {
	access, err := s.accessRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update access: %w", err)
	}
	if access == nil {
		return nil, domain.ErrNotFound
	}
	return access, nil
}

func (s *visitService) MarkVisitExit(ctx context.Context, actor *domain.User, id int64) (*domain.Access, error) {
	access, err := s.accessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get access: %w", err)
	}
	if access == nil || !inVenueScope(actor, access.VenueID) {
		return nil, domain.ErrNotFound
	}
	if !access.IsActive() {
		return nil, fmt.Errorf("%w: access is not active", domain.ErrInvalidState)
	}

	closed, err := s.accessRepo.MarkExit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark exit: %w", err)
	}
	// A concurrent exit won the conditional update.
	if closed == nil {
		return nil, fmt.Errorf("%w: access is not active", domain.ErrInvalidState)
	}

	s.publish(ctx, events.VisitClosed, events.VisitClosedEvent{
		AccessID:  closed.ID,
		VisitorID: closed.VisitorID,
		VenueID:   closed.VenueID,
		ExitTime:  *closed.ExitTime,
	})

	return closed, nil
}

func (s *visitService) DeleteAccess(ctx context.Context, id int64) error {
	deleted, err := s.accessRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete access: %w", err)
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func (s *visitService) publish(ctx context.Context, subject string, event interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
