package location

import (
	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/validator"
)

type UpsertLocationRequest struct {
	ID        string `json:"-"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *UpsertLocationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must be at most 100 characters")
	}
	if !validator.IsValidTimeOfDay(r.StartTime) {
		errs.Add("start_time", "start_time must be HH:MM")
	}
	if !validator.IsValidTimeOfDay(r.EndTime) {
		errs.Add("end_time", "end_time must be HH:MM")
	}

	return errs.Err()
}

type LocationResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Overnight     bool   `json:"overnight"`
	WindowMinutes int    `json:"window_minutes"`
}

func ToResponse(l Location) LocationResponse {
	return LocationResponse{
		ID:            l.ID,
		Name:          l.Name,
		StartTime:     l.StartTime.String(),
		EndTime:       l.EndTime.String(),
		Overnight:     l.IsOvernight(),
		WindowMinutes: l.WindowMinutes(),
	}
}
