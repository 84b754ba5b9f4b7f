package attendance

import (
	"context"
)

// AttendanceService is the clock engine plus its read projections.
type AttendanceService interface {
	ClockIn(ctx context.Context, userID string) (AttendanceResponse, error)
	ClockOut(ctx context.Context, userID string) (AttendanceResponse, error)
	StartBreak(ctx context.Context, userID string) (BreakResponse, error)
	EndBreak(ctx context.Context, userID string) (BreakResponse, error)

	// Recalculate refreshes derived minutes without persisting. Open shifts
	// are measured against now.
	Recalculate(ctx context.Context, a Attendance) (Attendance, error)

	Today(ctx context.Context, userID string) (TodayResponse, error)
	ListRange(ctx context.Context, userID string, req RangeRequest) ([]AttendanceResponse, error)
	GetByID(ctx context.Context, viewer Viewer, id string) (AttendanceResponse, error)
	ListBreaks(ctx context.Context, viewer Viewer, attendanceID string) ([]BreakResponse, error)
	StillWorking(ctx context.Context) ([]StillWorkingResponse, error)
	Export(ctx context.Context, req ExportRequest) ([]byte, string, error)
}

// Recomputer is the slice of the clock engine other workflows use after
// changing a record's clock readings. Records without both readings get nil
// totals.
type Recomputer interface {
	Recompute(ctx context.Context, a *Attendance) error
}
