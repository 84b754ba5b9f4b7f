package http

import (
	"net/http"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/kintai-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

type SummaryHandler interface {
	Weekly(w http.ResponseWriter, r *http.Request)
	Monthly(w http.ResponseWriter, r *http.Request)
	ExportMonthly(w http.ResponseWriter, r *http.Request)

	// Admin
	RunWeek(w http.ResponseWriter, r *http.Request)
	RunMonth(w http.ResponseWriter, r *http.Request)
	AggregateUserMonth(w http.ResponseWriter, r *http.Request)
}

type summaryHandlerImpl struct {
	summaryService summary.SummaryService
}

func NewSummaryHandler(summaryService summary.SummaryService) SummaryHandler {
	return &summaryHandlerImpl{summaryService: summaryService}
}

func periodFrom(r *http.Request) summary.PeriodRequest {
	query := r.URL.Query()
	return summary.PeriodRequest{Year: query.Get("year"), Month: query.Get("month")}
}

// Weekly implements SummaryHandler.
func (h *summaryHandlerImpl) Weekly(w http.ResponseWriter, r *http.Request) {
	result, err := h.summaryService.ListWeekly(r.Context(), userIDFrom(r), periodFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Monthly implements SummaryHandler.
func (h *summaryHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	result, err := h.summaryService.GetMonthly(r.Context(), userIDFrom(r), periodFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// ExportMonthly implements SummaryHandler.
func (h *summaryHandlerImpl) ExportMonthly(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.summaryService.ExportMonthly(r.Context(), userIDFrom(r), periodFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.File(w, export.ContentTypeXLSX, filename, data)
}

// RunWeek implements SummaryHandler. The run is synchronous; the result
// reports per-user failures.
func (h *summaryHandlerImpl) RunWeek(w http.ResponseWriter, r *http.Request) {
	req := summary.WeekRequest{Date: r.URL.Query().Get("date")}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.summaryService.RunWeek(r.Context(), req.Day)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// RunMonth implements SummaryHandler.
func (h *summaryHandlerImpl) RunMonth(w http.ResponseWriter, r *http.Request) {
	req := periodFrom(r)
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.summaryService.RunMonth(r.Context(), req.YearValue, req.MonthValue)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// AggregateUserMonth implements SummaryHandler.
func (h *summaryHandlerImpl) AggregateUserMonth(w http.ResponseWriter, r *http.Request) {
	req := periodFrom(r)
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.summaryService.AggregateMonth(r.Context(), chi.URLParam(r, "userID"), req.YearValue, req.MonthValue)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, summary.ToMonthlyResponse(result))
}
