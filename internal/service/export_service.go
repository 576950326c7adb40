package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ajuteixeira/book-sala/internal/booking"
	"github.com/ajuteixeira/book-sala/internal/model"
	"github.com/ajuteixeira/book-sala/internal/repository"
)

// ── export business errors ──

var (
	ErrExportEmpty = errors.New("nothing to export")
)

// ExportService produces downloadable views of the reservation data.
//
// Two formats:
//   - admin spreadsheet of every reservation (.xlsx)
//   - per-user iCalendar feed of active reservations (.ics)
//
// Both return a bytes.Buffer plus a suggested filename; the handler sets
// the response headers and streams the buffer.
type ExportService interface {
	ExportReservations(ctx context.Context) (*bytes.Buffer, string, error)
	ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates the ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── ExportReservations ──────────────────────

var exportHeader = []string{"Date", "Start", "End", "Room", "Matricula", "User", "Quantity", "Reason", "Status"}

func (s *exportService) ExportReservations(ctx context.Context) (*bytes.Buffer, string, error) {
	list, err := s.repo.Reservation.ListAll(ctx)
	if err != nil {
		s.logger.Error("listing reservations failed", zap.Error(err))
		return nil, "", err
	}
	if len(list) == 0 {
		return nil, "", ErrExportEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reservations"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row := range list {
		r := &list[row]
		roomName, matricula, userName := "", "", ""
		if r.Room != nil {
			roomName = r.Room.Name
		}
		if r.User != nil {
			matricula = r.User.Matricula
			userName = r.User.Name
		}
		values := []interface{}{r.Date, r.StartTime, r.EndTime, roomName, matricula, userName, r.Quantity, r.Reason, r.Status}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("writing spreadsheet failed", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("reservations-%s.xlsx", s.now().Format("2006-01-02"))
	return buf, filename, nil
}

// ────────────────────── ExportCalendar ──────────────────────

func (s *exportService) ExportCalendar(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	now := s.now()
	today := booking.Today(now).Format(booking.DateLayout)
	nowClock := booking.FormatClock(now.Hour()*60 + now.Minute())

	list, err := s.repo.Reservation.ListActive(ctx, userID, today, nowClock)
	if err != nil {
		s.logger.Error("listing reservations failed", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//book-sala//reservations//EN")

	for i := range list {
		r := &list[i]
		start, err := eventTime(r.Date, r.StartTime, now)
		if err != nil {
			continue
		}
		end, err := eventTime(r.Date, r.EndTime, now)
		if err != nil {
			continue
		}

		evt := cal.AddEvent(r.ReservationID + "@book-sala")
		evt.SetCreatedTime(r.CreatedAt)
		evt.SetDtStampTime(now)
		evt.SetStartAt(start)
		evt.SetEndAt(end)
		evt.SetSummary(eventSummary(r))
		if r.Notes != "" {
			evt.SetDescription(r.Notes)
		}
		if r.Room != nil {
			evt.SetLocation(r.Room.Name)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, "reservations.ics", nil
}

func eventTime(date, clock string, ref time.Time) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, ref.Location())
}

func eventSummary(r *model.Reservation) string {
	if r.Title != "" {
		return r.Title
	}
	if r.Room != nil {
		return "Reserva " + r.Room.Name
	}
	return "Reserva de sala"
}
