package lifecycle

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/study-room-reservation/internal/fault"
	"github.com/iliyamo/study-room-reservation/internal/model"
)

// MemoryStore is an in-memory implementation of Atomic. It backs the
// engine tests and is handy for local development without MySQL. The
// per-seat boundary is a mutex per seat ID; on error the seat's state is
// restored from a snapshot taken at the start of the transaction, so a
// half-failed operation leaves nothing behind.
type MemoryStore struct {
	mu        sync.RWMutex
	rooms     map[uint64]*model.Room
	seats     map[uint64]*model.Seat
	bookings  map[uint64]*model.Booking
	nextID    uint64
	seatLocks sync.Map // seat ID -> *sync.Mutex
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[uint64]*model.Room),
		seats:    make(map[uint64]*model.Seat),
		bookings: make(map[uint64]*model.Booking),
		nextID:   1,
	}
}

// AddRoom inserts a room, assigning an ID when none is set.
func (m *MemoryStore) AddRoom(r model.Room) *model.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		r.ID = m.nextID
		m.nextID++
	}
	m.rooms[r.ID] = &r
	return &r
}

// AddSeat inserts a seat, assigning an ID when none is set. New seats
// default to AVAILABLE.
func (m *MemoryStore) AddSeat(s model.Seat) *model.Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.nextID
		m.nextID++
	}
	if s.Status == "" {
		s.Status = model.SeatAvailable
	}
	m.seats[s.ID] = &s
	return &s
}

func (m *MemoryStore) seatLock(seatID uint64) *sync.Mutex {
	l, _ := m.seatLocks.LoadOrStore(seatID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// InSeatTx serializes state-changing operations on one seat. Different
// seats proceed in parallel.
func (m *MemoryStore) InSeatTx(ctx context.Context, seatID uint64, fn func(Store) error) error {
	lock := m.seatLock(seatID)
	lock.Lock()
	defer lock.Unlock()

	snap := m.snapshotSeat(seatID)
	if err := fn(m); err != nil {
		m.restoreSeat(seatID, snap)
		return err
	}
	return nil
}

type seatSnapshot struct {
	seat     *model.Seat
	bookings map[uint64]model.Booking
}

func (m *MemoryStore) snapshotSeat(seatID uint64) seatSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := seatSnapshot{bookings: make(map[uint64]model.Booking)}
	if s, ok := m.seats[seatID]; ok {
		cp := *s
		snap.seat = &cp
	}
	for id, b := range m.bookings {
		if b.SeatID == seatID {
			snap.bookings[id] = *b
		}
	}
	return snap
}

func (m *MemoryStore) restoreSeat(seatID uint64, snap seatSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.seat != nil {
		cp := *snap.seat
		m.seats[seatID] = &cp
	}
	for id, b := range m.bookings {
		if b.SeatID != seatID {
			continue
		}
		if _, ok := snap.bookings[id]; !ok {
			delete(m.bookings, id) // created inside the failed tx
		}
	}
	for id, b := range snap.bookings {
		cp := b
		m.bookings[id] = &cp
	}
}

// SeatByID implements Store.
func (m *MemoryStore) SeatByID(ctx context.Context, seatID uint64) (*model.Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.seats[seatID]
	if !ok {
		return nil, fault.New(fault.NotFound, "seat not found")
	}
	cp := *s
	return &cp, nil
}

// RoomByID implements Store.
func (m *MemoryStore) RoomByID(ctx context.Context, roomID uint64) (*model.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, fault.New(fault.NotFound, "room not found")
	}
	cp := *r
	return &cp, nil
}

// SetSeatStatus implements Store.
func (m *MemoryStore) SetSeatStatus(ctx context.Context, seatID uint64, status model.SeatStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[seatID]
	if !ok {
		return fault.New(fault.NotFound, "seat not found")
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateBooking implements Store.
func (m *MemoryStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

// OverlappingBookings implements Store.
func (m *MemoryStore) OverlappingBookings(ctx context.Context, seatID uint64, start, end time.Time) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.SeatID == seatID && !b.Status.Terminal() && b.Overlaps(start, end) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// LatestBookingForSeat implements Store.
func (m *MemoryStore) LatestBookingForSeat(ctx context.Context, studentID, seatID uint64) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []*model.Booking
	for _, b := range m.bookings {
		if b.StudentID == studentID && b.SeatID == seatID {
			list = append(list, b)
		}
	}
	if len(list) == 0 {
		return nil, fault.New(fault.NotFound, "booking not found")
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartTime.After(list[j].StartTime) })
	cp := *list[0]
	return &cp, nil
}

// ActiveBookingBySeat implements Store.
func (m *MemoryStore) ActiveBookingBySeat(ctx context.Context, seatID uint64) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.Booking
	for _, b := range m.bookings {
		if b.SeatID != seatID || b.Status.Terminal() {
			continue
		}
		if latest == nil || b.StartTime.After(latest.StartTime) {
			latest = b
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

// BookingByIDForStudent implements Store.
func (m *MemoryStore) BookingByIDForStudent(ctx context.Context, bookingID, studentID uint64) (*model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[bookingID]
	if !ok || b.StudentID != studentID {
		return nil, fault.New(fault.NotFound, "booking not found")
	}
	cp := *b
	return &cp, nil
}

// SetBookingStatus implements Store.
func (m *MemoryStore) SetBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return fault.New(fault.NotFound, "booking not found")
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return nil
}
