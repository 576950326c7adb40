package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ajuteixeira/book-sala/internal/booking"
	"github.com/ajuteixeira/book-sala/internal/dto"
	"github.com/ajuteixeira/book-sala/internal/model"
	"github.com/ajuteixeira/book-sala/internal/repository"
)

// ── test helpers ──

// fixedNow is a Tuesday inside opening hours.
var fixedNow = time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)

func setupReservationService() (*reservationService, *mockReservationRepo, *mockRoomRepo) {
	resRepo := newMockReservationRepo()
	roomRepo := newMockRoomRepo()
	resRepo.rooms = roomRepo
	repo := &repository.Repository{
		User:        newMockUserRepo(),
		Room:        roomRepo,
		Reservation: resRepo,
	}
	svc := NewReservationService(repo, zap.NewNop()).(*reservationService)
	svc.now = func() time.Time { return fixedNow }
	return svc, resRepo, roomRepo
}

func seedRoom(roomRepo *mockRoomRepo, id, name string, capacity int) {
	roomRepo.rooms[id] = &model.Room{RoomID: id, Name: name, Capacity: capacity}
}

func createReq(roomID, date, start, end string) *dto.CreateReservationRequest {
	return &dto.CreateReservationRequest{
		RoomID:    roomID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Quantity:  1,
		Reason:    "Estudo individual",
	}
}

// ── Create ──

func TestReservationService_Create_Success(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	result, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-10", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if result.Status != model.StatusActive {
		t.Errorf("expected status=active, got %s", result.Status)
	}
	if result.StartTime != "10:00" || result.EndTime != "11:00" {
		t.Errorf("unexpected window %s-%s", result.StartTime, result.EndTime)
	}
	if result.Room == nil || result.Room.Name != "Sala 101" {
		t.Error("expected room Sala 101 in response")
	}
}

func TestReservationService_Create_RoomNotFound(t *testing.T) {
	svc, _, _ := setupReservationService()

	_, err := svc.Create(context.Background(), "user-1", false, createReq("nope", "2025-06-10", "10:00", "11:00"))
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestReservationService_Create_CapacityExceeded(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 301", 1)

	req := createReq("room-1", "2025-06-10", "10:00", "11:00")
	req.Quantity = 4

	_, err := svc.Create(context.Background(), "user-1", false, req)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestReservationService_Create_Conflict(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	if _, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-10", "10:00", "11:00")); err != nil {
		t.Fatalf("first Create should succeed: %v", err)
	}

	_, err := svc.Create(context.Background(), "user-2", false, createReq("room-1", "2025-06-10", "10:30", "11:30"))
	if !errors.Is(err, ErrTimeConflict) {
		t.Errorf("expected ErrTimeConflict, got %v", err)
	}
}

func TestReservationService_Create_BackToBackAllowed(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	if _, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-10", "10:00", "11:00")); err != nil {
		t.Fatalf("first Create should succeed: %v", err)
	}

	if _, err := svc.Create(context.Background(), "user-2", false, createReq("room-1", "2025-06-10", "11:00", "12:00")); err != nil {
		t.Errorf("back-to-back Create should succeed: %v", err)
	}
}

func TestReservationService_Create_CancelledDoesNotConflict(t *testing.T) {
	svc, resRepo, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	first, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-10", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("first Create should succeed: %v", err)
	}
	if err := svc.Cancel(context.Background(), first.ID, "user-1", false); err != nil {
		t.Fatalf("Cancel should succeed: %v", err)
	}
	if resRepo.reservations[first.ID].Status != model.StatusCancelled {
		t.Fatal("expected stored status=cancelled")
	}

	if _, err := svc.Create(context.Background(), "user-2", false, createReq("room-1", "2025-06-10", "10:00", "11:00")); err != nil {
		t.Errorf("Create over a cancelled slot should succeed: %v", err)
	}
}

func TestReservationService_Create_DailyUniqueness(t *testing.T) {
	svc, resRepo, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)
	seedRoom(roomRepo, "room-2", "Sala 102", 8)

	if _, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-11", "10:00", "11:00")); err != nil {
		t.Fatalf("first Create should succeed: %v", err)
	}

	_, err := svc.Create(context.Background(), "user-1", false, createReq("room-2", "2025-06-11", "14:00", "15:00"))
	if !errors.Is(err, ErrDailyLimitActive) {
		t.Errorf("expected ErrDailyLimitActive, got %v", err)
	}

	// a completed reservation on the day also blocks, with its own error
	for _, r := range resRepo.reservations {
		r.Status = model.StatusCompleted
	}
	_, err = svc.Create(context.Background(), "user-1", false, createReq("room-2", "2025-06-11", "14:00", "15:00"))
	if !errors.Is(err, ErrDailyLimitCompleted) {
		t.Errorf("expected ErrDailyLimitCompleted, got %v", err)
	}
}

func TestReservationService_Create_Quota(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	dates := []string{"2025-06-11", "2025-06-12", "2025-06-13"}
	for _, d := range dates {
		if _, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", d, "10:00", "11:00")); err != nil {
			t.Fatalf("Create on %s should succeed: %v", d, err)
		}
	}

	_, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-16", "10:00", "11:00"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}

	// admins are exempt from the quota
	if _, err := svc.Create(context.Background(), "admin-1", true, createReq("room-1", "2025-06-16", "10:00", "11:00")); err != nil {
		t.Errorf("admin Create should succeed: %v", err)
	}
}

func TestReservationService_Create_AdminExemptFromDailyLimit(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	if _, err := svc.Create(context.Background(), "admin-1", true, createReq("room-1", "2025-06-11", "10:00", "11:00")); err != nil {
		t.Fatalf("first Create should succeed: %v", err)
	}
	if _, err := svc.Create(context.Background(), "admin-1", true, createReq("room-1", "2025-06-11", "14:00", "15:00")); err != nil {
		t.Errorf("admin second same-day Create should succeed: %v", err)
	}
}

func TestReservationService_Create_TimeRuleViolations(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	tests := []struct {
		name    string
		date    string
		start   string
		end     string
		wantErr error
	}{
		{"sunday", "2025-06-15", "10:00", "11:00", booking.ErrClosed},
		{"outside hours", "2025-06-11", "06:00", "08:00", booking.ErrOutsideHours},
		{"granularity", "2025-06-11", "10:05", "11:00", booking.ErrInvalidGranularity},
		{"too short", "2025-06-11", "10:00", "10:00", booking.ErrTooShort},
		{"past date", "2025-06-09", "10:00", "11:00", booking.ErrPastDate},
		{"beyond horizon", "2025-07-12", "10:00", "11:00", booking.ErrTooFarAhead},
		{"today before now", "2025-06-10", "08:00", "09:00", booking.ErrPastTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", tt.date, tt.start, tt.end))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// ── Update ──

func TestReservationService_Update_MoveWindow(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	created, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-11", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}

	// moving within the same day must not trip the reservation's own
	// occupancy or daily-uniqueness row
	start, end := "10:30", "11:30"
	result, err := svc.Update(context.Background(), created.ID, "user-1", false, &dto.UpdateReservationRequest{
		StartTime: &start,
		EndTime:   &end,
	})
	if err != nil {
		t.Fatalf("Update should succeed: %v", err)
	}
	if result.StartTime != "10:30" || result.EndTime != "11:30" {
		t.Errorf("unexpected window %s-%s", result.StartTime, result.EndTime)
	}
}

func TestReservationService_Update_ConflictWithOther(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	if _, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-11", "10:00", "11:00")); err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	mine, err := svc.Create(context.Background(), "user-2", false, createReq("room-1", "2025-06-11", "14:00", "15:00"))
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}

	start, end := "10:30", "11:30"
	_, err = svc.Update(context.Background(), mine.ID, "user-2", false, &dto.UpdateReservationRequest{
		StartTime: &start,
		EndTime:   &end,
	})
	if !errors.Is(err, ErrTimeConflict) {
		t.Errorf("expected ErrTimeConflict, got %v", err)
	}
}

func TestReservationService_Update_Forbidden(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	created, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-11", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}

	start := "11:00"
	if _, err := svc.Update(context.Background(), created.ID, "user-2", false, &dto.UpdateReservationRequest{StartTime: &start}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	// admins may edit anyone's reservation
	end := "12:00"
	if _, err := svc.Update(context.Background(), created.ID, "admin-1", true, &dto.UpdateReservationRequest{StartTime: &start, EndTime: &end}); err != nil {
		t.Errorf("admin Update should succeed: %v", err)
	}
}

func TestReservationService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupReservationService()

	start := "11:00"
	_, err := svc.Update(context.Background(), "nope", "user-1", false, &dto.UpdateReservationRequest{StartTime: &start})
	if !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("expected ErrReservationNotFound, got %v", err)
	}
}

func TestReservationService_Update_NotActive(t *testing.T) {
	svc, resRepo, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	created, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-11", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	resRepo.reservations[created.ID].Status = model.StatusCancelled

	start := "11:00"
	if _, err := svc.Update(context.Background(), created.ID, "user-1", false, &dto.UpdateReservationRequest{StartTime: &start}); !errors.Is(err, ErrReservationNotActive) {
		t.Errorf("expected ErrReservationNotActive, got %v", err)
	}
}

// ── Cancel ──

func TestReservationService_Cancel_Forbidden(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)

	created, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-11", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}

	if err := svc.Cancel(context.Background(), created.ID, "user-2", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Cancel(context.Background(), created.ID, "admin-1", true); err != nil {
		t.Errorf("admin Cancel should succeed: %v", err)
	}
}

// ── List / History / CompletePast ──

func TestReservationService_List_ScopesToCaller(t *testing.T) {
	svc, _, roomRepo := setupReservationService()
	seedRoom(roomRepo, "room-1", "Sala 101", 6)
	seedRoom(roomRepo, "room-2", "Sala 102", 8)

	if _, err := svc.Create(context.Background(), "user-1", false, createReq("room-1", "2025-06-11", "10:00", "11:00")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "user-2", false, createReq("room-2", "2025-06-11", "10:00", "11:00")); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.List(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 reservation for user-1, got %d", len(mine))
	}

	all, err := svc.List(context.Background(), "admin-1", true)
	if err != nil {
		t.Fatalf("admin List should succeed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 reservations for admin, got %d", len(all))
	}
}

func TestReservationService_ExpiredReservationMovesToHistory(t *testing.T) {
	svc, resRepo, _ := setupReservationService()

	// dated yesterday, still recorded active: must not show in the
	// active list and must read as completed in history
	resRepo.reservations["res-old"] = &model.Reservation{
		ReservationID: "res-old",
		UserID:        "user-1",
		RoomID:        "room-1",
		Date:          "2025-06-09",
		StartTime:     "10:00",
		EndTime:       "11:00",
		Status:        model.StatusActive,
		Version:       1,
	}

	active, err := svc.List(context.Background(), "user-1", false)
	if err != nil {
		t.Fatalf("List should succeed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected empty active list, got %d entries", len(active))
	}

	history, total, err := svc.History(context.Background(), "user-1", false, 1)
	if err != nil {
		t.Fatalf("History should succeed: %v", err)
	}
	if total != 1 || len(history) != 1 {
		t.Fatalf("expected 1 history entry, got total=%d len=%d", total, len(history))
	}
	if history[0].Status != model.StatusCompleted {
		t.Errorf("expected effective status=completed, got %s", history[0].Status)
	}
}

func TestReservationService_CompletePast(t *testing.T) {
	svc, resRepo, _ := setupReservationService()

	resRepo.reservations["res-old"] = &model.Reservation{
		ReservationID: "res-old", UserID: "user-1", RoomID: "room-1",
		Date: "2025-06-09", StartTime: "10:00", EndTime: "11:00",
		Status: model.StatusActive, Version: 1,
	}
	resRepo.reservations["res-done-today"] = &model.Reservation{
		ReservationID: "res-done-today", UserID: "user-2", RoomID: "room-1",
		Date: "2025-06-10", StartTime: "07:00", EndTime: "08:00",
		Status: model.StatusActive, Version: 1,
	}
	resRepo.reservations["res-future"] = &model.Reservation{
		ReservationID: "res-future", UserID: "user-3", RoomID: "room-1",
		Date: "2025-06-11", StartTime: "10:00", EndTime: "11:00",
		Status: model.StatusActive, Version: 1,
	}

	n, err := svc.CompletePast(context.Background())
	if err != nil {
		t.Fatalf("CompletePast should succeed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 completed, got %d", n)
	}
	if resRepo.reservations["res-future"].Status != model.StatusActive {
		t.Error("future reservation must stay active")
	}
	if resRepo.reservations["res-old"].Status != model.StatusCompleted {
		t.Error("past reservation must be completed")
	}
}

func TestReservationService_History_Pagination(t *testing.T) {
	svc, resRepo, _ := setupReservationService()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("res-%d", i)
		resRepo.reservations[id] = &model.Reservation{
			ReservationID: id, UserID: "user-1", RoomID: "room-1",
			Date: fmt.Sprintf("2025-06-0%d", i+1), StartTime: "10:00", EndTime: "11:00",
			Status: model.StatusCompleted, Version: 1,
		}
	}

	page1, total, err := svc.History(context.Background(), "user-1", false, 1)
	if err != nil {
		t.Fatalf("History should succeed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total=5, got %d", total)
	}
	if len(page1) != HistoryPageSize {
		t.Errorf("expected page of %d, got %d", HistoryPageSize, len(page1))
	}

	page2, _, err := svc.History(context.Background(), "user-1", false, 2)
	if err != nil {
		t.Fatalf("History page 2 should succeed: %v", err)
	}
	if len(page2) != 2 {
		t.Errorf("expected 2 entries on page 2, got %d", len(page2))
	}
}
