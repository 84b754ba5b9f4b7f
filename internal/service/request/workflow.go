package request

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
)

// flow binds one request kind to the shared state machine.
type flow[T any] struct {
	store  request.Store[T]
	header func(T) request.Header
	// onApprove runs inside the decision transaction.
	onApprove func(ctx context.Context, r T) error
	period    func(T) string
}

// run loads the request, checks the actor, records the decision and applies
// any approval effect in one transaction.
func run[T any](ctx context.Context, s *RequestServiceImpl, f flow[T], id string, action request.Action, actor user.User) (request.Header, string, error) {
	var (
		h      request.Header
		period string
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := f.store.GetByID(ctx, id)
		if err != nil {
			return err
		}
		h = f.header(r)

		if action != request.ActionCancel && !s.authorizer.CanApprove(actor, h) {
			return request.ErrNotAuthorized
		}

		d, err := h.Decide(action, actor.ID, s.now())
		if err != nil {
			return err
		}
		if err := f.store.Decide(ctx, id, d); err != nil {
			return err
		}
		if d.Outcome == request.OutcomeApproved && f.onApprove != nil {
			if err := f.onApprove(ctx, r); err != nil {
				return err
			}
		}

		h.Apply(d)
		period = f.period(r)
		return nil
	})
	return h, period, err
}

func (s *RequestServiceImpl) correctionFlow() flow[request.CorrectionRequest] {
	return flow[request.CorrectionRequest]{
		store:     s.corrections,
		header:    func(c request.CorrectionRequest) request.Header { return c.Header },
		onApprove: s.applyCorrection,
		period:    func(c request.CorrectionRequest) string { return c.TargetDate.Format(dateLayout) },
	}
}

func (s *RequestServiceImpl) overtimeFlow() flow[request.OvertimeRequest] {
	return flow[request.OvertimeRequest]{
		store:  s.overtimes,
		header: func(o request.OvertimeRequest) request.Header { return o.Header },
		period: func(o request.OvertimeRequest) string { return o.TargetDate.Format(dateLayout) },
	}
}

func (s *RequestServiceImpl) holidayFlow() flow[request.HolidayRequest] {
	return flow[request.HolidayRequest]{
		store:  s.holidays,
		header: func(h request.HolidayRequest) request.Header { return h.Header },
		period: func(h request.HolidayRequest) string {
			return h.StartDate.Format(dateLayout) + " - " + h.EndDate.Format(dateLayout)
		},
	}
}

func (s *RequestServiceImpl) scheduleFlow() flow[request.ScheduleDay] {
	return flow[request.ScheduleDay]{
		store:  s.schedules,
		header: func(d request.ScheduleDay) request.Header { return d.Header },
		period: func(d request.ScheduleDay) string { return d.Date.Format(dateLayout) },
	}
}

// applyCorrection overwrites the record's clock readings with the requested
// ones. A reading that was not requested is cleared.
func (s *RequestServiceImpl) applyCorrection(ctx context.Context, c request.CorrectionRequest) error {
	att, err := s.attendances.GetByUserAndDate(ctx, c.UserID, c.TargetDate)
	if err != nil {
		return fmt.Errorf("failed to get attendance: %w", err)
	}
	if att == nil {
		return attendance.ErrAttendanceNotFound
	}

	att.ClockIn, att.ClockOut = c.ResolveTimes(s.loc)
	if err := s.recomputer.Recompute(ctx, att); err != nil {
		return err
	}

	slog.Info("Correction applied", "request_id", c.ID, "attendance_id", att.ID, "user_id", c.UserID)
	return nil
}

func (s *RequestServiceImpl) transition(ctx context.Context, kind request.Kind, id string, actorID string, action request.Action) (request.HeaderResponse, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return request.HeaderResponse{}, err
	}

	var (
		h      request.Header
		period string
	)
	switch kind {
	case request.KindCorrection:
		h, period, err = run(ctx, s, s.correctionFlow(), id, action, actor)
	case request.KindOvertime:
		h, period, err = run(ctx, s, s.overtimeFlow(), id, action, actor)
	case request.KindHoliday:
		h, period, err = run(ctx, s, s.holidayFlow(), id, action, actor)
	case request.KindSchedule:
		h, period, err = run(ctx, s, s.scheduleFlow(), id, action, actor)
	default:
		return request.HeaderResponse{}, request.ErrUnknownKind
	}
	if err != nil {
		return request.HeaderResponse{}, err
	}

	slog.Info("Request decided", "kind", kind, "request_id", id, "actor_id", actorID, "outcome", *h.Outcome)
	s.notifyDecision(ctx, h, period)
	return request.ToHeaderResponse(h), nil
}

// Approve implements request.RequestService.
func (s *RequestServiceImpl) Approve(ctx context.Context, kind request.Kind, id string, actorID string) (request.HeaderResponse, error) {
	return s.transition(ctx, kind, id, actorID, request.ActionApprove)
}

// Reject implements request.RequestService.
func (s *RequestServiceImpl) Reject(ctx context.Context, kind request.Kind, id string, actorID string) (request.HeaderResponse, error) {
	return s.transition(ctx, kind, id, actorID, request.ActionReject)
}

// Cancel implements request.RequestService.
func (s *RequestServiceImpl) Cancel(ctx context.Context, kind request.Kind, id string, actorID string) (request.HeaderResponse, error) {
	return s.transition(ctx, kind, id, actorID, request.ActionCancel)
}

// DecideScheduleMonth implements request.RequestService.
func (s *RequestServiceImpl) DecideScheduleMonth(ctx context.Context, req request.MonthRequest, actorID string, approve bool) (request.BulkDecisionResponse, error) {
	if err := req.Validate(); err != nil {
		return request.BulkDecisionResponse{}, err
	}
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return request.BulkDecisionResponse{}, err
	}
	if !s.authorizer.CanApprove(actor, request.Header{UserID: req.UserID, Kind: request.KindSchedule, Status: request.StatusPending}) {
		return request.BulkDecisionResponse{}, request.ErrNotAuthorized
	}

	outcome := request.OutcomeRejected
	if approve {
		outcome = request.OutcomeApproved
	}
	d := request.Decision{By: request.DecidedByApprover, Outcome: outcome, ActorID: actor.ID, At: s.now()}

	var count int
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		count, err = s.schedules.DecideMonth(ctx, req.UserID, req.MonthStart, d)
		return err
	})
	if err != nil {
		return request.BulkDecisionResponse{}, err
	}

	slog.Info("Schedule month decided", "user_id", req.UserID, "month", req.Month, "outcome", outcome, "count", count)
	if count > 0 && s.notifier != nil {
		s.notifier.Notify(ctx, notification.Notification{
			RecipientID: req.UserID,
			Type:        notification.TypeScheduleDecided,
			Title:       fmt.Sprintf("Schedule for %s %s", req.Month, outcome),
			Message:     fmt.Sprintf("%d scheduled day(s) were %s.", count, outcome),
			Data: map[string]interface{}{
				"kind":    string(request.KindSchedule),
				"outcome": string(outcome),
				"period":  req.Month,
				"count":   count,
			},
			CreatedAt: s.now(),
		})
	}

	return request.BulkDecisionResponse{
		UserID:  req.UserID,
		Month:   req.Month,
		Outcome: string(outcome),
		Count:   count,
	}, nil
}

var notificationTypes = map[request.Outcome]notification.NotificationType{
	request.OutcomeApproved:  notification.TypeRequestApproved,
	request.OutcomeRejected:  notification.TypeRequestRejected,
	request.OutcomeCancelled: notification.TypeRequestCancelled,
}

// notifyDecision tells the requester about an approver's decision.
// Cancellations are made by the requester and are not echoed back.
func (s *RequestServiceImpl) notifyDecision(ctx context.Context, h request.Header, period string) {
	if s.notifier == nil || h.Outcome == nil || *h.Outcome == request.OutcomeCancelled {
		return
	}

	outcome := *h.Outcome
	kind := strings.ToUpper(string(h.Kind[:1])) + string(h.Kind[1:])
	s.notifier.Notify(ctx, notification.Notification{
		RecipientID: h.UserID,
		Type:        notificationTypes[outcome],
		Title:       fmt.Sprintf("%s request %s", kind, outcome),
		Message:     fmt.Sprintf("Your %s request for %s was %s.", h.Kind, period, outcome),
		Data: map[string]interface{}{
			"request_id": h.ID,
			"kind":       string(h.Kind),
			"outcome":    string(outcome),
			"period":     period,
		},
		CreatedAt: s.now(),
	})
}
