package request

import (
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/validator"
)

const (
	maxReasonLength  = 500
	maxHolidaySpan   = 31
	maxOvertimeInDay = 24 * 60
)

// ========================================
// SUBMISSION DTOs
// ========================================

type SubmitCorrectionRequest struct {
	TargetDate        string  `json:"target_date"`
	RequestedClockIn  *string `json:"requested_clock_in"`
	RequestedClockOut *string `json:"requested_clock_out"`
	Reason            string  `json:"reason"`

	Date     time.Time        `json:"-"`
	ClockIn  *clock.TimeOfDay `json:"-"`
	ClockOut *clock.TimeOfDay `json:"-"`
}

func (r *SubmitCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.TargetDate)
	if !ok {
		errs.Add("target_date", "target_date must be YYYY-MM-DD")
	}
	r.ClockIn = parseOptionalTime(&errs, "requested_clock_in", r.RequestedClockIn)
	r.ClockOut = parseOptionalTime(&errs, "requested_clock_out", r.RequestedClockOut)
	if r.RequestedClockIn == nil && r.RequestedClockOut == nil {
		errs.Add("requested_clock_in", "at least one of requested_clock_in or requested_clock_out is required")
	}
	if r.ClockIn != nil && r.ClockOut != nil && *r.ClockIn == *r.ClockOut {
		errs.Add("requested_clock_out", "requested_clock_out must differ from requested_clock_in")
	}
	validateReason(&errs, r.Reason, true)

	r.Date = date
	return errs.Err()
}

type SubmitOvertimeRequest struct {
	TargetDate string `json:"target_date"`
	Minutes    int    `json:"minutes"`
	Reason     string `json:"reason"`

	Date time.Time `json:"-"`
}

func (r *SubmitOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.TargetDate)
	if !ok {
		errs.Add("target_date", "target_date must be YYYY-MM-DD")
	}
	if r.Minutes <= 0 || r.Minutes > maxOvertimeInDay {
		errs.Add("minutes", "minutes must be between 1 and 1440")
	}
	validateReason(&errs, r.Reason, true)

	r.Date = date
	return errs.Err()
}

type SubmitHolidayRequest struct {
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	HolidayType string  `json:"holiday_type"`
	Reason      string  `json:"reason"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (r *SubmitHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	start, ok := validator.IsValidDate(r.StartDate)
	if !ok {
		errs.Add("start_date", "start_date must be YYYY-MM-DD")
	}
	end := start
	if r.EndDate != nil {
		var ok2 bool
		end, ok2 = validator.IsValidDate(*r.EndDate)
		if !ok2 {
			errs.Add("end_date", "end_date must be YYYY-MM-DD")
		} else if ok && end.Before(start) {
			errs.Add("end_date", "end_date must not be before start_date")
		} else if ok && int(end.Sub(start).Hours()/24)+1 > maxHolidaySpan {
			errs.Add("end_date", "a holiday request may cover at most 31 days")
		}
	}
	r.HolidayType = strings.ToUpper(strings.TrimSpace(r.HolidayType))
	if !validator.IsInSlice(r.HolidayType, HolidayTypes) {
		errs.Add("holiday_type", "holiday_type must be one of PAID, SPECIAL, SICK, OTHER")
	}
	validateReason(&errs, r.Reason, false)

	r.Start, r.End = start, end
	return errs.Err()
}

type ScheduleDayInput struct {
	Date     string `json:"date"`
	WorkType string `json:"work_type"`
}

type SubmitScheduleDayRequest struct {
	ScheduleDayInput

	Day time.Time `json:"-"`
}

func (r *SubmitScheduleDayRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Day = validateScheduleDay(&errs, "", &r.ScheduleDayInput)
	return errs.Err()
}

// SubmitScheduleMonthRequest replaces the user's pending plan for Month.
type SubmitScheduleMonthRequest struct {
	Month string             `json:"month"`
	Days  []ScheduleDayInput `json:"days"`

	MonthStart time.Time   `json:"-"`
	Dates      []time.Time `json:"-"`
}

func (r *SubmitScheduleMonthRequest) Validate() error {
	var errs validator.ValidationErrors

	monthStart, ok := validator.IsValidYearMonth(r.Month)
	if !ok {
		errs.Add("month", "month must be YYYY-MM")
	}
	if len(r.Days) == 0 {
		errs.Add("days", "at least one day is required")
	}

	seen := make(map[string]bool, len(r.Days))
	r.Dates = make([]time.Time, len(r.Days))
	for i := range r.Days {
		prefix := "days[" + strconv.Itoa(i) + "]."
		day := validateScheduleDay(&errs, prefix, &r.Days[i])
		r.Dates[i] = day
		if day.IsZero() {
			continue
		}
		if ok && (day.Year() != monthStart.Year() || day.Month() != monthStart.Month()) {
			errs.Add(prefix+"date", "date must fall within month")
		}
		if seen[r.Days[i].Date] {
			errs.Add(prefix+"date", "duplicate date")
		}
		seen[r.Days[i].Date] = true
	}

	r.MonthStart = monthStart
	return errs.Err()
}

// MonthRequest identifies a (user, month) for grouped schedule operations.
type MonthRequest struct {
	UserID string `json:"-"`
	Month  string `json:"month"`

	MonthStart time.Time `json:"-"`
}

func (r *MonthRequest) Validate() error {
	var errs validator.ValidationErrors
	monthStart, ok := validator.IsValidYearMonth(r.Month)
	if !ok {
		errs.Add("month", "month must be YYYY-MM")
	}
	r.MonthStart = monthStart
	return errs.Err()
}

type ListRequest struct {
	Kind   string `json:"kind"`
	Status string `json:"status"`
	UserID string `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`

	Kinds  []Kind `json:"-"`
	Filter Filter `json:"-"`
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Kinds = Kinds
	if r.Kind != "" {
		k, err := ParseKind(r.Kind)
		if err != nil {
			errs.Add("kind", "kind must be one of correction, overtime, holiday, schedule")
		}
		r.Kinds = []Kind{k}
	}
	if r.Status != "" {
		s := Status(strings.ToUpper(r.Status))
		if !IsValidStatus(s) {
			errs.Add("status", "status must be PENDING, APPROVED or REJECTED")
		}
		r.Filter.Status = &s
	}
	if r.UserID != "" {
		id := r.UserID
		r.Filter.UserID = &id
	}
	if r.From != "" {
		from, ok := validator.IsValidDate(r.From)
		if !ok {
			errs.Add("from", "from must be YYYY-MM-DD")
		}
		r.Filter.From = &from
	}
	if r.To != "" {
		to, ok := validator.IsValidDate(r.To)
		if !ok {
			errs.Add("to", "to must be YYYY-MM-DD")
		}
		r.Filter.To = &to
	}

	return errs.Err()
}

func parseOptionalTime(errs *validator.ValidationErrors, field string, s *string) *clock.TimeOfDay {
	if s == nil {
		return nil
	}
	if !validator.IsValidTimeOfDay(*s) {
		errs.Add(field, field+" must be HH:MM")
		return nil
	}
	t := clock.MustTimeOfDay(*s)
	return &t
}

func validateReason(errs *validator.ValidationErrors, reason string, required bool) {
	if required && validator.IsEmpty(reason) {
		errs.Add("reason", "reason is required")
	}
	if len(reason) > maxReasonLength {
		errs.Add("reason", "reason must be at most 500 characters")
	}
}

func validateScheduleDay(errs *validator.ValidationErrors, prefix string, in *ScheduleDayInput) time.Time {
	day, ok := validator.IsValidDate(in.Date)
	if !ok {
		errs.Add(prefix+"date", "date must be YYYY-MM-DD")
	}
	in.WorkType = strings.ToUpper(strings.TrimSpace(in.WorkType))
	if !validator.IsInSlice(in.WorkType, WorkTypes) {
		errs.Add(prefix+"work_type", "work_type must be one of WORK, HOLIDAY, REMOTE")
	}
	return day
}

// ========================================
// RESPONSE DTOs
// ========================================

type HeaderResponse struct {
	ID         string  `json:"id"`
	Kind       Kind    `json:"kind"`
	UserID     string  `json:"user_id"`
	Status     Status  `json:"status"`
	DecidedBy  *string `json:"decided_by,omitempty"`
	Outcome    *string `json:"outcome,omitempty"`
	ApproverID *string `json:"approver_id,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type CorrectionResponse struct {
	HeaderResponse
	TargetDate        string  `json:"target_date"`
	RequestedClockIn  *string `json:"requested_clock_in"`
	RequestedClockOut *string `json:"requested_clock_out"`
	CurrentClockIn    *string `json:"current_clock_in"`
	CurrentClockOut   *string `json:"current_clock_out"`
	Reason            string  `json:"reason"`
}

type OvertimeResponse struct {
	HeaderResponse
	TargetDate string `json:"target_date"`
	Minutes    int    `json:"minutes"`
	Reason     string `json:"reason"`
}

type HolidayResponse struct {
	HeaderResponse
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Days        int    `json:"days"`
	HolidayType string `json:"holiday_type"`
	Reason      string `json:"reason"`
}

type ScheduleDayResponse struct {
	HeaderResponse
	Date     string `json:"date"`
	WorkType string `json:"work_type"`
}

type ListItemResponse struct {
	HeaderResponse
	Username  string `json:"username,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Detail    string `json:"detail"`
}

type StatsResponse struct {
	Pending      map[Kind]int `json:"pending"`
	TotalPending int          `json:"total_pending"`
}

type BulkDecisionResponse struct {
	UserID  string `json:"user_id"`
	Month   string `json:"month"`
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}

// Grouped schedule status when a month's days are not all in one state.
const GroupStatusMixed = "mixed"

type GroupedScheduleResponse struct {
	UserID   string                `json:"user_id"`
	Username string                `json:"username"`
	Month    string                `json:"month"`
	Status   string                `json:"status"`
	Counts   map[Status]int        `json:"counts"`
	Days     []ScheduleDayResponse `json:"days"`
}

const dateLayout = "2006-01-02"

func ToHeaderResponse(h Header) HeaderResponse {
	resp := HeaderResponse{
		ID:         h.ID,
		Kind:       h.Kind,
		UserID:     h.UserID,
		Status:     h.Status,
		ApproverID: h.ApproverID,
		CreatedAt:  h.CreatedAt.Format(time.RFC3339),
	}
	if h.DecidedBy != nil {
		s := string(*h.DecidedBy)
		resp.DecidedBy = &s
	}
	if h.Outcome != nil {
		s := string(*h.Outcome)
		resp.Outcome = &s
	}
	if h.DecidedAt != nil {
		s := h.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &s
	}
	return resp
}

func ToCorrectionResponse(c CorrectionRequest, loc *time.Location) CorrectionResponse {
	resp := CorrectionResponse{
		HeaderResponse:  ToHeaderResponse(c.Header),
		TargetDate:      c.TargetDate.Format(dateLayout),
		Reason:          c.Reason,
		CurrentClockIn:  formatTime(c.CurrentClockIn, loc),
		CurrentClockOut: formatTime(c.CurrentClockOut, loc),
	}
	if c.RequestedClockIn != nil {
		s := c.RequestedClockIn.String()
		resp.RequestedClockIn = &s
	}
	if c.RequestedClockOut != nil {
		s := c.RequestedClockOut.String()
		resp.RequestedClockOut = &s
	}
	return resp
}

func ToOvertimeResponse(o OvertimeRequest) OvertimeResponse {
	return OvertimeResponse{
		HeaderResponse: ToHeaderResponse(o.Header),
		TargetDate:     o.TargetDate.Format(dateLayout),
		Minutes:        o.Minutes,
		Reason:         o.Reason,
	}
}

func ToHolidayResponse(h HolidayRequest) HolidayResponse {
	return HolidayResponse{
		HeaderResponse: ToHeaderResponse(h.Header),
		StartDate:      h.StartDate.Format(dateLayout),
		EndDate:        h.EndDate.Format(dateLayout),
		Days:           h.Days(),
		HolidayType:    string(h.HolidayType),
		Reason:         h.Reason,
	}
}

func ToScheduleDayResponse(s ScheduleDay) ScheduleDayResponse {
	return ScheduleDayResponse{
		HeaderResponse: ToHeaderResponse(s.Header),
		Date:           s.Date.Format(dateLayout),
		WorkType:       string(s.WorkType),
	}
}

func ToListItemResponse(i ListItem) ListItemResponse {
	return ListItemResponse{
		HeaderResponse: ToHeaderResponse(i.Header),
		Username:       i.Username,
		StartDate:      i.StartDate.Format(dateLayout),
		EndDate:        i.EndDate.Format(dateLayout),
		Detail:         i.Detail,
	}
}

func formatTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}
