package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/request"
	"github.com/cmlabs-hris/kintai-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

type RequestHandler interface {
	SubmitCorrection(w http.ResponseWriter, r *http.Request)
	SubmitOvertime(w http.ResponseWriter, r *http.Request)
	SubmitHoliday(w http.ResponseWriter, r *http.Request)
	SubmitScheduleDay(w http.ResponseWriter, r *http.Request)
	SubmitScheduleMonth(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Calendar(w http.ResponseWriter, r *http.Request)

	// Admin
	ListAll(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	ApproveScheduleMonth(w http.ResponseWriter, r *http.Request)
	RejectScheduleMonth(w http.ResponseWriter, r *http.Request)
	GroupedSchedules(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	requestService request.RequestService
}

func NewRequestHandler(requestService request.RequestService) RequestHandler {
	return &requestHandlerImpl{requestService: requestService}
}

// decode reads a JSON body into dst and answers 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Debug("Request decode error", "path", r.URL.Path, "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func listRequestFrom(r *http.Request) request.ListRequest {
	query := r.URL.Query()
	return request.ListRequest{
		Kind:   query.Get("kind"),
		Status: query.Get("status"),
		UserID: query.Get("user_id"),
		From:   query.Get("from"),
		To:     query.Get("to"),
	}
}

// SubmitCorrection implements RequestHandler.
func (h *requestHandlerImpl) SubmitCorrection(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitCorrectionRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.requestService.SubmitCorrection(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Correction request submitted", result)
}

// SubmitOvertime implements RequestHandler.
func (h *requestHandlerImpl) SubmitOvertime(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitOvertimeRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.requestService.SubmitOvertime(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Overtime request submitted", result)
}

// SubmitHoliday implements RequestHandler.
func (h *requestHandlerImpl) SubmitHoliday(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitHolidayRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.requestService.SubmitHoliday(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Holiday request submitted", result)
}

// SubmitScheduleDay implements RequestHandler.
func (h *requestHandlerImpl) SubmitScheduleDay(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScheduleDayRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.requestService.SubmitScheduleDay(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Schedule request submitted", result)
}

// SubmitScheduleMonth implements RequestHandler.
func (h *requestHandlerImpl) SubmitScheduleMonth(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScheduleMonthRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.requestService.SubmitScheduleMonth(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Monthly schedule submitted", result)
}

// ListMine implements RequestHandler.
func (h *requestHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.requestService.ListMine(r.Context(), userIDFrom(r), listRequestFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Cancel implements RequestHandler.
func (h *requestHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	kind := request.Kind(chi.URLParam(r, "kind"))
	result, err := h.requestService.Cancel(r.Context(), kind, chi.URLParam(r, "id"), userIDFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Request cancelled", result)
}

// Calendar implements RequestHandler.
func (h *requestHandlerImpl) Calendar(w http.ResponseWriter, r *http.Request) {
	req := request.MonthRequest{Month: r.URL.Query().Get("month")}
	data, err := h.requestService.Calendar(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, export.ContentTypeICS, "kintai_"+req.Month+".ics", data)
}

// ListAll implements RequestHandler.
func (h *requestHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.requestService.ListAll(r.Context(), listRequestFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Stats implements RequestHandler.
func (h *requestHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.requestService.Stats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Approve implements RequestHandler.
func (h *requestHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	kind := request.Kind(chi.URLParam(r, "kind"))
	result, err := h.requestService.Approve(r.Context(), kind, chi.URLParam(r, "id"), userIDFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Request approved", result)
}

// Reject implements RequestHandler.
func (h *requestHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	kind := request.Kind(chi.URLParam(r, "kind"))
	result, err := h.requestService.Reject(r.Context(), kind, chi.URLParam(r, "id"), userIDFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Request rejected", result)
}

func (h *requestHandlerImpl) decideMonth(w http.ResponseWriter, r *http.Request, approve bool) {
	req := request.MonthRequest{
		UserID: chi.URLParam(r, "userID"),
		Month:  chi.URLParam(r, "month"),
	}
	result, err := h.requestService.DecideScheduleMonth(r.Context(), req, userIDFrom(r), approve)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ApproveScheduleMonth implements RequestHandler.
func (h *requestHandlerImpl) ApproveScheduleMonth(w http.ResponseWriter, r *http.Request) {
	h.decideMonth(w, r, true)
}

// RejectScheduleMonth implements RequestHandler.
func (h *requestHandlerImpl) RejectScheduleMonth(w http.ResponseWriter, r *http.Request) {
	h.decideMonth(w, r, false)
}

// GroupedSchedules implements RequestHandler.
func (h *requestHandlerImpl) GroupedSchedules(w http.ResponseWriter, r *http.Request) {
	req := request.MonthRequest{Month: r.URL.Query().Get("month")}
	result, err := h.requestService.GroupedSchedules(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
