package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/export"
)

var (
	recordHeaders = []string{"Date", "Username", "Clock In", "Clock Out", "Break (min)", "Work (min)", "Overtime (min)"}
	totalHeaders  = []string{"Username", "Work Days", "Work (h)", "Overtime (h)"}
)

type exportTotals struct {
	workDays int
	work     int
	overtime int
}

// Export implements attendance.AttendanceService. It returns the workbook
// and a download file name.
func (a *AttendanceServiceImpl) Export(ctx context.Context, req attendance.ExportRequest) ([]byte, string, error) {
	if err := req.RangeRequest.Validate(); err != nil {
		return nil, "", err
	}

	records, err := a.AttendanceRepository.ListByRange(ctx, req.FromDate, req.ToDate, req.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list attendance: %w", err)
	}

	usernames := make(map[string]string)
	totals := make(map[string]*exportTotals)
	rows := make([][]interface{}, 0, len(records))

	for _, att := range records {
		name, ok := usernames[att.UserID]
		if !ok {
			u, err := a.users.GetByID(ctx, att.UserID)
			if err != nil {
				return nil, "", fmt.Errorf("failed to get user: %w", err)
			}
			name = u.Username
			usernames[att.UserID] = name
		}

		if att.IsOpen() {
			if att, err = a.Recalculate(ctx, att); err != nil {
				return nil, "", err
			}
		}

		rows = append(rows, []interface{}{
			att.Date.Format("2006-01-02"),
			name,
			a.clockCell(att.ClockIn),
			a.clockCell(att.ClockOut),
			deref(att.BreakMinutes),
			deref(att.WorkMinutes),
			deref(att.OvertimeMinutes),
		})

		t, ok := totals[name]
		if !ok {
			t = &exportTotals{}
			totals[name] = t
		}
		if att.ClockIn != nil {
			t.workDays++
		}
		t.work += deref(att.WorkMinutes)
		t.overtime += deref(att.OvertimeMinutes)
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	totalRows := make([][]interface{}, 0, len(names))
	for _, name := range names {
		t := totals[name]
		totalRows = append(totalRows, []interface{}{name, t.workDays, hours(t.work), hours(t.overtime)})
	}

	data, err := export.Workbook(
		export.Sheet{Name: "Attendance", Headers: recordHeaders, Rows: rows},
		export.Sheet{Name: "Totals", Headers: totalHeaders, Rows: totalRows},
	)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", req.FromDate.Format("20060102"), req.ToDate.Format("20060102"))
	return data, filename, nil
}

func (a *AttendanceServiceImpl) clockCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(a.loc).Format("2006-01-02 15:04")
}

func hours(minutes int) float64 {
	return float64(minutes*100/60) / 100
}
