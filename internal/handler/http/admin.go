package http

import (
	"net/http"

	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// AdminHandler serves master data: users, locations and company holidays.
type AdminHandler interface {
	CreateUser(w http.ResponseWriter, r *http.Request)
	ListUsers(w http.ResponseWriter, r *http.Request)
	AssignLocation(w http.ResponseWriter, r *http.Request)

	ListLocations(w http.ResponseWriter, r *http.Request)
	CreateLocation(w http.ResponseWriter, r *http.Request)
	UpdateLocation(w http.ResponseWriter, r *http.Request)

	ListHolidays(w http.ResponseWriter, r *http.Request)
	CreateHoliday(w http.ResponseWriter, r *http.Request)
	DeleteHoliday(w http.ResponseWriter, r *http.Request)
}

type adminHandlerImpl struct {
	userService     user.UserService
	locationService location.LocationService
	holidayService  holiday.HolidayService
}

func NewAdminHandler(userService user.UserService, locationService location.LocationService, holidayService holiday.HolidayService) AdminHandler {
	return &adminHandlerImpl{
		userService:     userService,
		locationService: locationService,
		holidayService:  holidayService,
	}
}

func (h *adminHandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.userService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "User created", result)
}

func (h *adminHandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.userService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *adminHandlerImpl) AssignLocation(w http.ResponseWriter, r *http.Request) {
	var req user.AssignLocationRequest
	if !decode(w, r, &req) {
		return
	}
	req.UserID = chi.URLParam(r, "id")

	if err := h.userService.AssignLocation(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Location assigned", nil)
}

func (h *adminHandlerImpl) ListLocations(w http.ResponseWriter, r *http.Request) {
	result, err := h.locationService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *adminHandlerImpl) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req location.UpsertLocationRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.locationService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Location created", result)
}

func (h *adminHandlerImpl) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req location.UpsertLocationRequest
	if !decode(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.locationService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Location updated", result)
}

func (h *adminHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	req := holiday.ListHolidayRequest{Year: r.URL.Query().Get("year")}
	result, err := h.holidayService.ListByYear(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *adminHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req holiday.CreateHolidayRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.holidayService.Create(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Company holiday created", result)
}

func (h *adminHandlerImpl) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.holidayService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Company holiday deleted", nil)
}
