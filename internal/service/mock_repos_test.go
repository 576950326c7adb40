package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/ajuteixeira/book-sala/internal/model"
	pkgerrors "github.com/ajuteixeira/book-sala/pkg/errors"
)

// ── mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByMatricula(_ context.Context, matricula string) (*model.User, error) {
	for _, u := range m.users {
		if u.Matricula == matricula {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── mock RoomRepository ──

type mockRoomRepo struct {
	rooms map[string]*model.Room
	seq   int
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]*model.Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, room *model.Room) error {
	if room.RoomID == "" {
		m.seq++
		room.RoomID = fmt.Sprintf("room-%03d", m.seq)
	}
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (*model.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoomRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Room, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRoomRepo) List(_ context.Context) ([]model.Room, error) {
	var result []model.Room
	for _, r := range m.rooms {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRoomRepo) Update(_ context.Context, room *model.Room) error {
	m.rooms[room.RoomID] = room
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id string) error {
	delete(m.rooms, id)
	return nil
}

// ── mock ReservationRepository ──

type mockReservationRepo struct {
	reservations map[string]*model.Reservation
	rooms        *mockRoomRepo
	users        *mockUserRepo
	seq          int
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (m *mockReservationRepo) Create(_ context.Context, res *model.Reservation) error {
	if res.ReservationID == "" {
		m.seq++
		res.ReservationID = fmt.Sprintf("res-%03d", m.seq)
	}
	if res.Version == 0 {
		res.Version = 1
	}
	copied := *res
	m.reservations[res.ReservationID] = &copied
	return nil
}

// GetByID mirrors the real repository's Room and User preloads when
// the companion mocks are wired in.
func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := m.attach(*r)
	return &copied, nil
}

func (m *mockReservationRepo) Update(_ context.Context, res *model.Reservation) error {
	stored, ok := m.reservations[res.ReservationID]
	if !ok || stored.Version != res.Version {
		return pkgerrors.ErrOptimisticLock
	}
	res.Version++
	copied := *res
	m.reservations[res.ReservationID] = &copied
	return nil
}

// expired mirrors the repository's effective-status predicate.
func expired(r *model.Reservation, today, nowClock string) bool {
	return r.Date < today || (r.Date == today && r.EndTime <= nowClock)
}

// attach mirrors the Room and User preloads of the list queries.
func (m *mockReservationRepo) attach(r model.Reservation) model.Reservation {
	if m.rooms != nil {
		r.Room = m.rooms.rooms[r.RoomID]
	}
	if m.users != nil {
		r.User = m.users.users[r.UserID]
	}
	return r
}

func (m *mockReservationRepo) ListActive(_ context.Context, userID, today, nowClock string) ([]model.Reservation, error) {
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.Status != model.StatusActive || expired(r, today, nowClock) {
			continue
		}
		if userID != "" && r.UserID != userID {
			continue
		}
		result = append(result, m.attach(*r))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockReservationRepo) ListHistory(_ context.Context, userID, today, nowClock string, offset, limit int) ([]model.Reservation, int64, error) {
	var all []model.Reservation
	for _, r := range m.reservations {
		inHistory := r.Status == model.StatusCompleted || r.Status == model.StatusCancelled ||
			(r.Status == model.StatusActive && expired(r, today, nowClock))
		if !inHistory {
			continue
		}
		if userID != "" && r.UserID != userID {
			continue
		}
		all = append(all, m.attach(*r))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Date != all[j].Date {
			return all[i].Date > all[j].Date
		}
		return all[i].StartTime > all[j].StartTime
	})

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockReservationRepo) ListActiveByRoomAndDate(_ context.Context, roomID, date, excludeID string) ([]model.Reservation, error) {
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.Status != model.StatusActive || r.RoomID != roomID || r.Date != date {
			continue
		}
		if excludeID != "" && r.ReservationID == excludeID {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockReservationRepo) ListActiveByDate(_ context.Context, date string) ([]model.Reservation, error) {
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.Status == model.StatusActive && r.Date == date {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockReservationRepo) CountActiveByUser(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, r := range m.reservations {
		if r.UserID == userID && r.Status == model.StatusActive {
			count++
		}
	}
	return count, nil
}

func (m *mockReservationRepo) FindByUserAndDate(_ context.Context, userID, date, excludeID string) ([]model.Reservation, error) {
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.UserID != userID || r.Date != date {
			continue
		}
		if r.Status != model.StatusActive && r.Status != model.StatusCompleted {
			continue
		}
		if excludeID != "" && r.ReservationID == excludeID {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockReservationRepo) CompleteExpired(_ context.Context, today, nowClock string) (int64, error) {
	var count int64
	for _, r := range m.reservations {
		if r.Status == model.StatusActive && expired(r, today, nowClock) {
			r.Status = model.StatusCompleted
			count++
		}
	}
	return count, nil
}

func (m *mockReservationRepo) ListAll(_ context.Context) ([]model.Reservation, error) {
	var result []model.Reservation
	for _, r := range m.reservations {
		result = append(result, m.attach(*r))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}
