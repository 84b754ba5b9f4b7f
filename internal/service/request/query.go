package request

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/export"
)

const dateLayout = "2006-01-02"

func listItems[T interface{ Item() request.ListItem }](ctx context.Context, store request.Store[T], filter request.Filter) ([]request.ListItem, error) {
	rows, err := store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]request.ListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.Item())
	}
	return items, nil
}

// collect merges the requested kinds newest first.
func (s *RequestServiceImpl) collect(ctx context.Context, kinds []request.Kind, filter request.Filter) ([]request.ListItem, error) {
	var all []request.ListItem
	for _, kind := range kinds {
		var (
			items []request.ListItem
			err   error
		)
		switch kind {
		case request.KindCorrection:
			items, err = listItems[request.CorrectionRequest](ctx, s.corrections, filter)
		case request.KindOvertime:
			items, err = listItems[request.OvertimeRequest](ctx, s.overtimes, filter)
		case request.KindHoliday:
			items, err = listItems[request.HolidayRequest](ctx, s.holidays, filter)
		case request.KindSchedule:
			items, err = listItems[request.ScheduleDay](ctx, s.schedules, filter)
		default:
			return nil, request.ErrUnknownKind
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s requests: %w", kind, err)
		}
		all = append(all, items...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return all, nil
}

// ListMine implements request.RequestService.
func (s *RequestServiceImpl) ListMine(ctx context.Context, userID string, req request.ListRequest) ([]request.ListItemResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Filter.UserID = &userID

	items, err := s.collect(ctx, req.Kinds, req.Filter)
	if err != nil {
		return nil, err
	}
	out := make([]request.ListItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, request.ToListItemResponse(item))
	}
	return out, nil
}

// ListAll implements request.RequestService.
func (s *RequestServiceImpl) ListAll(ctx context.Context, req request.ListRequest) ([]request.ListItemResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	items, err := s.collect(ctx, req.Kinds, req.Filter)
	if err != nil {
		return nil, err
	}

	names, err := s.usernames(ctx, items)
	if err != nil {
		return nil, err
	}
	out := make([]request.ListItemResponse, 0, len(items))
	for _, item := range items {
		item.Username = names[item.UserID]
		out = append(out, request.ToListItemResponse(item))
	}
	return out, nil
}

func (s *RequestServiceImpl) usernames(ctx context.Context, items []request.ListItem) (map[string]string, error) {
	names := make(map[string]string)
	for _, item := range items {
		if _, ok := names[item.UserID]; ok {
			continue
		}
		u, err := s.users.GetByID(ctx, item.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		names[item.UserID] = u.Username
	}
	return names, nil
}

// Stats implements request.RequestService.
func (s *RequestServiceImpl) Stats(ctx context.Context) (request.StatsResponse, error) {
	pending := request.StatusPending
	resp := request.StatsResponse{Pending: make(map[request.Kind]int, len(request.Kinds))}

	for _, kind := range request.Kinds {
		items, err := s.collect(ctx, []request.Kind{kind}, request.Filter{Status: &pending})
		if err != nil {
			return request.StatsResponse{}, err
		}
		resp.Pending[kind] = len(items)
		resp.TotalPending += len(items)
	}
	return resp, nil
}

// GroupedSchedules implements request.RequestService. An empty UserID
// groups every user's month.
func (s *RequestServiceImpl) GroupedSchedules(ctx context.Context, req request.MonthRequest) ([]request.GroupedScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from := req.MonthStart
	to := from.AddDate(0, 1, -1)
	filter := request.Filter{From: &from, To: &to}
	if req.UserID != "" {
		filter.UserID = &req.UserID
	}

	days, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule days: %w", err)
	}

	groups := make(map[string]*request.GroupedScheduleResponse)
	for _, d := range days {
		g, ok := groups[d.UserID]
		if !ok {
			u, err := s.users.GetByID(ctx, d.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to get user: %w", err)
			}
			g = &request.GroupedScheduleResponse{
				UserID:   d.UserID,
				Username: u.Username,
				Month:    req.Month,
				Counts:   make(map[request.Status]int),
			}
			groups[d.UserID] = g
		}
		g.Counts[d.Status]++
		g.Days = append(g.Days, request.ToScheduleDayResponse(d))
	}

	out := make([]request.GroupedScheduleResponse, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Days, func(i, j int) bool { return g.Days[i].Date < g.Days[j].Date })
		g.Status = request.GroupStatusMixed
		if len(g.Counts) == 1 {
			for status := range g.Counts {
				g.Status = strings.ToLower(string(status))
			}
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Calendar implements request.RequestService.
func (s *RequestServiceImpl) Calendar(ctx context.Context, userID string, req request.MonthRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	from := req.MonthStart
	to := from.AddDate(0, 1, -1)
	approved := request.StatusApproved
	filter := request.Filter{UserID: &userID, Status: &approved, From: &from, To: &to}

	var events []export.Event

	days, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule days: %w", err)
	}
	for _, d := range days {
		events = append(events, export.Event{
			UID:     "schedule-" + d.ID,
			Summary: workTypeSummary(d.WorkType),
			Start:   d.Date,
			End:     d.Date,
		})
	}

	holidays, err := s.holidays.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list holiday requests: %w", err)
	}
	for _, h := range holidays {
		events = append(events, export.Event{
			UID:         "holiday-" + h.ID,
			Summary:     fmt.Sprintf("Holiday (%s)", strings.ToLower(string(h.HolidayType))),
			Description: h.Reason,
			Start:       h.StartDate,
			End:         h.EndDate,
		})
	}

	company, err := s.companyHolidays.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list company holidays: %w", err)
	}
	for _, h := range company {
		events = append(events, export.Event{
			UID:     "company-holiday-" + h.ID,
			Summary: h.Name,
			Start:   h.Date,
			End:     h.Date,
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return export.Calendar("Kintai "+req.Month, s.now(), events), nil
}

func workTypeSummary(t request.WorkType) string {
	switch t {
	case request.WorkTypeHoliday:
		return "Day off"
	case request.WorkTypeRemote:
		return "Remote work"
	default:
		return "Office work"
	}
}
