package request

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
)

// CorrectionRequest proposes new clock readings for a past record. A nil
// requested time clears the field on approval. The current readings are a
// snapshot taken at submission.
type CorrectionRequest struct {
	Header
	TargetDate        time.Time
	RequestedClockIn  *clock.TimeOfDay
	RequestedClockOut *clock.TimeOfDay
	CurrentClockIn    *time.Time
	CurrentClockOut   *time.Time
	Reason            string
}

// ResolveTimes places the requested readings on the target date in loc. A
// clock-out at or before the clock-in moves to the next day.
func (c CorrectionRequest) ResolveTimes(loc *time.Location) (in, out *time.Time) {
	if c.RequestedClockIn != nil {
		t := c.RequestedClockIn.On(c.TargetDate, loc)
		in = &t
	}
	if c.RequestedClockOut != nil {
		t := c.RequestedClockOut.On(c.TargetDate, loc)
		if in != nil && !t.After(*in) {
			t = t.AddDate(0, 0, 1)
		}
		out = &t
	}
	return in, out
}

type OvertimeRequest struct {
	Header
	TargetDate time.Time
	Minutes    int
	Reason     string
}

type HolidayType string

const (
	HolidayPaid    HolidayType = "PAID"
	HolidaySpecial HolidayType = "SPECIAL"
	HolidaySick    HolidayType = "SICK"
	HolidayOther   HolidayType = "OTHER"
)

var HolidayTypes = []string{string(HolidayPaid), string(HolidaySpecial), string(HolidaySick), string(HolidayOther)}

// HolidayRequest covers StartDate through EndDate inclusive.
type HolidayRequest struct {
	Header
	StartDate   time.Time
	EndDate     time.Time
	HolidayType HolidayType
	Reason      string
}

// Days returns the number of calendar days covered.
func (h HolidayRequest) Days() int {
	return int(h.EndDate.Sub(h.StartDate).Hours()/24) + 1
}

type WorkType string

const (
	WorkTypeWork    WorkType = "WORK"
	WorkTypeHoliday WorkType = "HOLIDAY"
	WorkTypeRemote  WorkType = "REMOTE"
)

var WorkTypes = []string{string(WorkTypeWork), string(WorkTypeHoliday), string(WorkTypeRemote)}

type ScheduleDay struct {
	Header
	Date     time.Time
	WorkType WorkType
}

// ListItem is the kind-independent projection used by the combined lists.
type ListItem struct {
	Header
	Username  string
	StartDate time.Time
	EndDate   time.Time
	Detail    string
}

func (c CorrectionRequest) Item() ListItem {
	in, out := "--:--", "--:--"
	if c.RequestedClockIn != nil {
		in = c.RequestedClockIn.String()
	}
	if c.RequestedClockOut != nil {
		out = c.RequestedClockOut.String()
	}
	return ListItem{Header: c.Header, StartDate: c.TargetDate, EndDate: c.TargetDate, Detail: fmt.Sprintf("%s - %s: %s", in, out, c.Reason)}
}

func (o OvertimeRequest) Item() ListItem {
	return ListItem{Header: o.Header, StartDate: o.TargetDate, EndDate: o.TargetDate, Detail: fmt.Sprintf("%d min: %s", o.Minutes, o.Reason)}
}

func (h HolidayRequest) Item() ListItem {
	return ListItem{Header: h.Header, StartDate: h.StartDate, EndDate: h.EndDate, Detail: fmt.Sprintf("%s: %s", h.HolidayType, h.Reason)}
}

func (s ScheduleDay) Item() ListItem {
	return ListItem{Header: s.Header, StartDate: s.Date, EndDate: s.Date, Detail: string(s.WorkType)}
}
