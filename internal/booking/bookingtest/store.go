package bookingtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/repository"
)

// Store holds rooms, reservations, payments and customer profiles in memory
// and hands out the store views the booking service needs.  It follows the MySQL
// repositories' contracts, including their sentinel errors.
type Store struct {
	mu           sync.Mutex
	rooms        map[uint64]model.Room
	reservations map[uint64]model.Reservation
	payments     []model.Payment
	customers    map[uint64]model.Customer
	nextID       uint64
	err          error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		rooms:        make(map[uint64]model.Room),
		reservations: make(map[uint64]model.Reservation),
		customers:    make(map[uint64]model.Customer),
	}
}

// SetErr makes every subsequent store call fail with err.  Pass nil to heal.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Rooms returns the room view.
func (s *Store) Rooms() *Rooms { return &Rooms{s} }

// Reservations returns the reservation view.
func (s *Store) Reservations() *Reservations { return &Reservations{s} }

// Payments returns the payment view.
func (s *Store) Payments() *Payments { return &Payments{s} }

// Customers returns the customer profile view.
func (s *Store) Customers() *Customers { return &Customers{s} }

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

// AddRoom seeds a room and returns it with its ID.
func (s *Store) AddRoom(r model.Room) model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.rooms[r.ID] = r
	return r
}

// AddReservation seeds a reservation and returns it with its ID.
func (s *Store) AddReservation(r model.Reservation) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	s.reservations[r.ID] = r
	return s.withRoom(r)
}

// AddPayment seeds a payment.
func (s *Store) AddPayment(p model.Payment) model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.payments = append(s.payments, p)
	return p
}

// AddCustomer seeds a profile and returns it with its ID.
func (s *Store) AddCustomer(c model.Customer) model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	c.Email = strings.ToLower(c.Email)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	s.customers[c.ID] = c
	return c
}

// Pay seeds a completed payment for reservation id.
func (s *Store) Pay(id uint64, amount float64) model.Payment {
	return s.AddPayment(model.Payment{ReservationID: id, Amount: amount, Status: model.PaymentCompleted, Method: model.MethodCash})
}

// Status returns the stored status of reservation id.
func (s *Store) Status(id uint64) model.ReservationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reservations[id].Status
}

// Reservation returns the stored reservation id.
func (s *Store) Reservation(id uint64) (model.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	return s.withRoom(r), ok
}

// Count returns the number of stored reservations.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

func (s *Store) withRoom(r model.Reservation) model.Reservation {
	if room, ok := s.rooms[r.RoomID]; ok {
		r.RoomName = room.Name
	}
	return r
}

func (s *Store) sorted(keep func(model.Reservation) bool) []model.Reservation {
	var out []model.Reservation
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, s.withRoom(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func in(st model.ReservationStatus, set []model.ReservationStatus) bool {
	for _, s := range set {
		if s == st {
			return true
		}
	}
	return false
}

// Rooms implements booking.RoomStore.
type Rooms struct{ s *Store }

func (v *Rooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	r, ok := v.s.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (v *Rooms) GetByName(_ context.Context, name string) (*model.Room, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	for _, r := range v.s.rooms {
		if strings.EqualFold(r.Name, name) {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *Rooms) List(_ context.Context, limit int) ([]model.Room, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	out := make([]model.Room, 0, len(v.s.rooms))
	for _, r := range v.s.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *Rooms) nameTaken(name string, except uint64) bool {
	for _, r := range v.s.rooms {
		if r.ID != except && strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

func (v *Rooms) Create(_ context.Context, r *model.Room) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	if v.nameTaken(r.Name, 0) {
		return repository.ErrConflict
	}
	r.ID = v.s.id()
	v.s.rooms[r.ID] = *r
	return nil
}

func (v *Rooms) Update(_ context.Context, r *model.Room) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	if _, ok := v.s.rooms[r.ID]; !ok {
		return repository.ErrNotFound
	}
	if v.nameTaken(r.Name, r.ID) {
		return repository.ErrConflict
	}
	v.s.rooms[r.ID] = *r
	return nil
}

func (v *Rooms) Delete(_ context.Context, id uint64) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	if _, ok := v.s.rooms[id]; !ok {
		return repository.ErrNotFound
	}
	for _, r := range v.s.reservations {
		if r.RoomID == id {
			return repository.ErrConflict
		}
	}
	delete(v.s.rooms, id)
	return nil
}

// Reservations implements booking.ReservationStore.
type Reservations struct{ s *Store }

func (v *Reservations) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	r, ok := v.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r = v.s.withRoom(r)
	return &r, nil
}

func (v *Reservations) Insert(_ context.Context, r *model.Reservation) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	if _, ok := v.s.rooms[r.RoomID]; !ok {
		return repository.ErrConflict
	}
	r.ID = v.s.id()
	stored := *r
	stored.RoomName = ""
	stored.Payments = nil
	v.s.reservations[r.ID] = stored
	return nil
}

func (v *Reservations) List(_ context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	out := v.s.sorted(func(r model.Reservation) bool {
		return f.UserName == "" || r.UserName == f.UserName
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (v *Reservations) Overlapping(_ context.Context, roomID uint64, statuses []model.ReservationStatus, start, end model.Date) ([]model.Reservation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	return v.s.sorted(func(r model.Reservation) bool {
		return (roomID == 0 || r.RoomID == roomID) &&
			in(r.Status, statuses) &&
			model.Overlaps(r.CheckIn, r.CheckOut, start, end)
	}), nil
}

func (v *Reservations) ListByStatus(_ context.Context, statuses []model.ReservationStatus) ([]model.Reservation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	return v.s.sorted(func(r model.Reservation) bool { return in(r.Status, statuses) }), nil
}

func (v *Reservations) DueForCheckout(_ context.Context, before model.Date) ([]model.Reservation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	return v.s.sorted(func(r model.Reservation) bool {
		return r.Status == model.StatusConfirmed && r.CheckOut.Before(before)
	}), nil
}

func (v *Reservations) CheckingIn(_ context.Context, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	return v.s.sorted(func(r model.Reservation) bool { return r.CheckIn.Equal(day) && in(r.Status, statuses) }), nil
}

func (v *Reservations) CheckingOut(_ context.Context, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	return v.s.sorted(func(r model.Reservation) bool { return r.CheckOut.Equal(day) && in(r.Status, statuses) }), nil
}

func (v *Reservations) CountByStatus(_ context.Context) (map[model.ReservationStatus]int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	out := make(map[model.ReservationStatus]int)
	for _, r := range v.s.reservations {
		out[r.Status]++
	}
	return out, nil
}

func (v *Reservations) UpdateStatus(_ context.Context, id uint64, from, to model.ReservationStatus, at time.Time) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return false, v.s.err
	}
	r, ok := v.s.reservations[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.UpdatedAt = at
	v.s.reservations[id] = r
	return true, nil
}

func (v *Reservations) BulkUpdateStatus(_ context.Context, ids []uint64, from, to model.ReservationStatus, at time.Time) (int64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return 0, v.s.err
	}
	var n int64
	for _, id := range ids {
		r, ok := v.s.reservations[id]
		if !ok || r.Status != from {
			continue
		}
		r.Status = to
		r.UpdatedAt = at
		v.s.reservations[id] = r
		n++
	}
	return n, nil
}

func (v *Reservations) UpdateDetails(_ context.Context, id uint64, p model.ReservationPatch, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	r, ok := v.s.reservations[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.SpecialRequests != nil {
		r.SpecialRequests = *p.SpecialRequests
	}
	if p.GuestCount != nil {
		r.GuestCount = *p.GuestCount
	}
	if p.ExtraBeds != nil {
		r.ExtraBeds = *p.ExtraBeds
	}
	if p.ExtraPersons != nil {
		r.ExtraPersons = *p.ExtraPersons
	}
	r.UpdatedAt = at
	v.s.reservations[id] = r
	return nil
}

// Payments implements booking.PaymentStore.
type Payments struct{ s *Store }

func (v *Payments) Insert(_ context.Context, p *model.Payment) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	if _, ok := v.s.reservations[p.ReservationID]; !ok {
		return repository.ErrConflict
	}
	p.ID = v.s.id()
	v.s.payments = append(v.s.payments, *p)
	return nil
}

func (v *Payments) ListByReservation(_ context.Context, reservationID uint64) ([]model.Payment, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	var out []model.Payment
	for i := len(v.s.payments) - 1; i >= 0; i-- {
		if v.s.payments[i].ReservationID == reservationID {
			out = append(out, v.s.payments[i])
		}
	}
	return out, nil
}

func (v *Payments) ListByReservations(_ context.Context, ids []uint64) (map[uint64][]model.Payment, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	want := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[uint64][]model.Payment)
	for i := len(v.s.payments) - 1; i >= 0; i-- {
		p := v.s.payments[i]
		if want[p.ReservationID] {
			out[p.ReservationID] = append(out[p.ReservationID], p)
		}
	}
	return out, nil
}

func (v *Payments) PaidAmong(_ context.Context, ids []uint64) (map[uint64]bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	want := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[uint64]bool)
	for _, p := range v.s.payments {
		if want[p.ReservationID] && p.Status == model.PaymentCompleted {
			out[p.ReservationID] = true
		}
	}
	return out, nil
}

func (v *Payments) HasCompleted(ctx context.Context, reservationID uint64) (bool, error) {
	paid, err := v.PaidAmong(ctx, []uint64{reservationID})
	if err != nil {
		return false, err
	}
	return paid[reservationID], nil
}

func (v *Payments) CompletedRevenue(_ context.Context) (float64, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return 0, v.s.err
	}
	var sum float64
	for _, p := range v.s.payments {
		if p.Status == model.PaymentCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

// Customers implements booking.CustomerStore.
type Customers struct{ s *Store }

func (v *Customers) GetByID(_ context.Context, id uint64) (*model.Customer, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	c, ok := v.s.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (v *Customers) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	for _, c := range v.s.customers {
		if strings.EqualFold(c.Email, strings.TrimSpace(email)) {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (v *Customers) List(_ context.Context, limit int) ([]model.Customer, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return nil, v.s.err
	}
	out := make([]model.Customer, 0, len(v.s.customers))
	for _, c := range v.s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (v *Customers) emailTaken(email string, except uint64) bool {
	for _, c := range v.s.customers {
		if c.ID != except && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (v *Customers) Create(_ context.Context, c *model.Customer) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	if v.emailTaken(c.Email, 0) {
		return repository.ErrConflict
	}
	c.ID = v.s.id()
	v.s.customers[c.ID] = *c
	return nil
}

func (v *Customers) Update(_ context.Context, c *model.Customer) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.err != nil {
		return v.s.err
	}
	if _, ok := v.s.customers[c.ID]; !ok {
		return repository.ErrNotFound
	}
	if v.emailTaken(c.Email, c.ID) {
		return repository.ErrConflict
	}
	v.s.customers[c.ID] = *c
	return nil
}
