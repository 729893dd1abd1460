package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/repository"
)

// RoomPatch is a partial room update.  Nil fields are left untouched.
type RoomPatch struct {
	Name        *string
	Beds        *string
	Capacity    *int
	PriceCents  *uint32
	Available   *int
	Occupied    *int
	Maintenance *bool
	Status      *string
	Features    []string
}

func (p RoomPatch) apply(r *model.Room) {
	if p.Name != nil {
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Beds != nil {
		r.Beds = *p.Beds
	}
	if p.Capacity != nil {
		r.Capacity = *p.Capacity
	}
	if p.PriceCents != nil {
		r.PriceCents = *p.PriceCents
	}
	if p.Available != nil {
		r.Available = *p.Available
	}
	if p.Occupied != nil {
		r.Occupied = *p.Occupied
	}
	if p.Maintenance != nil {
		r.Maintenance = *p.Maintenance
	}
	if p.Status != nil {
		r.Status = strings.TrimSpace(*p.Status)
	}
	if p.Features != nil {
		r.Features = p.Features
	}
}

func validateRoom(r *model.Room) error {
	switch {
	case r.Name == "":
		return invalidf("name is required")
	case r.Capacity < 1:
		return invalidf("capacity must be at least 1")
	case r.PriceCents == 0:
		return invalidf("price must be greater than zero")
	case r.Available < 0 || r.Occupied < 0:
		return invalidf("available and occupied must not be negative")
	}
	return nil
}

// Rooms lists rooms newest first.  limit <= 0 lists all of them.
func (s *Service) Rooms(ctx context.Context, limit int) ([]model.Room, error) {
	rooms, err := s.rooms.List(ctx, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	return rooms, nil
}

// Room returns one room.
func (s *Service) Room(ctx context.Context, id uint64) (*model.Room, error) {
	return s.resolveRoom(ctx, RoomRef{ID: id})
}

// CreateRoom stores a new room type.  Status defaults to "available".
func (s *Service) CreateRoom(ctx context.Context, r *model.Room) (*model.Room, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Status == "" {
		r.Status = "available"
	}
	if r.Features == nil {
		r.Features = []string{}
	}
	if err := validateRoom(r); err != nil {
		return nil, err
	}
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	if err := s.rooms.Create(ctx, r); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflict(fmt.Sprintf("a room named %q already exists", r.Name))
		}
		return nil, unavailable(err)
	}
	s.log.WithField("room_id", r.ID).Info("room created")
	return r, nil
}

// UpdateRoom applies p to room id.
func (s *Service) UpdateRoom(ctx context.Context, id uint64, p RoomPatch) (*model.Room, error) {
	r, err := s.Room(ctx, id)
	if err != nil {
		return nil, err
	}
	p.apply(r)
	if err := validateRoom(r); err != nil {
		return nil, err
	}
	r.UpdatedAt = s.now()
	if err := s.rooms.Update(ctx, r); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, conflict(fmt.Sprintf("a room named %q already exists", r.Name))
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound(fmt.Sprintf("room #%d not found", id))
		}
		return nil, unavailable(err)
	}
	return r, nil
}

// DeleteRoom removes a room that no reservation references.
func (s *Service) DeleteRoom(ctx context.Context, id uint64) error {
	err := s.rooms.Delete(ctx, id)
	switch {
	case err == nil:
		s.log.WithField("room_id", id).Info("room deleted")
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(fmt.Sprintf("room #%d not found", id))
	case errors.Is(err, repository.ErrConflict):
		return conflict("room has reservations and cannot be deleted")
	}
	return unavailable(err)
}
