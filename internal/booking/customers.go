package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/repository"
)

// Messages returned by the profile operations.
const (
	MsgCustomerNotFound = "User not found"
	MsgEmailTaken       = "Email address is already in use by another account"
)

var errNoCustomerStore = errors.New("customer profiles are not configured")

// CustomerPatch is a profile update.  Empty FullName and Email keep the
// stored value; the other fields are written whenever they are non-nil, so
// they can be cleared.
type CustomerPatch struct {
	FullName      string
	Email         string
	Address       *string
	ContactNumber *string
	Gender        *string
	PlateNo       *string
}

func (p CustomerPatch) apply(c *model.Customer) {
	if name := strings.TrimSpace(p.FullName); name != "" {
		c.FullName = name
	}
	if email := normalizeEmail(p.Email); email != "" {
		c.Email = email
	}
	if p.Address != nil {
		c.Address = strings.TrimSpace(*p.Address)
	}
	if p.ContactNumber != nil {
		c.ContactNumber = strings.TrimSpace(*p.ContactNumber)
	}
	if p.Gender != nil {
		c.Gender = strings.TrimSpace(*p.Gender)
	}
	if p.PlateNo != nil {
		c.PlateNo = strings.TrimSpace(*p.PlateNo)
	}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Customers lists guest profiles newest first.  limit <= 0 lists all of them.
func (s *Service) Customers(ctx context.Context, limit int) ([]model.Customer, error) {
	if s.customers == nil {
		return nil, unavailable(errNoCustomerStore)
	}
	cs, err := s.customers.List(ctx, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	if cs == nil {
		cs = []model.Customer{}
	}
	return cs, nil
}

// RegisterCustomer stores a new guest profile.
func (s *Service) RegisterCustomer(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	if s.customers == nil {
		return nil, unavailable(errNoCustomerStore)
	}
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = normalizeEmail(c.Email)
	switch {
	case c.FullName == "":
		return nil, invalidf("full_name is required")
	case c.Email == "":
		return nil, invalidf("email is required")
	}
	now := s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := s.customers.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, conflict(MsgEmailTaken)
		}
		return nil, unavailable(err)
	}
	s.log.WithField("customer_id", c.ID).Info("customer registered")
	return c, nil
}

// UpdateCustomer applies p to profile id.  When id no longer exists but
// p.Email names a profile, that profile is updated instead, which covers
// clients holding a stale id.  Moving to an email another profile already
// uses is a conflict.
func (s *Service) UpdateCustomer(ctx context.Context, id uint64, p CustomerPatch) (*model.Customer, error) {
	if s.customers == nil {
		return nil, unavailable(errNoCustomerStore)
	}
	c, err := s.customers.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) && normalizeEmail(p.Email) != "" {
		c, err = s.customers.GetByEmail(ctx, p.Email)
		if err == nil {
			s.log.WithFields(logrus.Fields{"requested_id": id, "customer_id": c.ID}).
				Warn("customer id not found, matched by email")
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(MsgCustomerNotFound)
	}
	if err != nil {
		return nil, unavailable(err)
	}

	if email := normalizeEmail(p.Email); email != "" && email != c.Email {
		other, err := s.customers.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != c.ID:
			return nil, conflict(MsgEmailTaken)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, unavailable(err)
		}
	}

	p.apply(c)
	c.UpdatedAt = s.now()
	if err := s.customers.Update(ctx, c); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, conflict(MsgEmailTaken)
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound(MsgCustomerNotFound)
		}
		return nil, unavailable(err)
	}
	return c, nil
}
