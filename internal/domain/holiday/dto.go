package holiday

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`

	Day time.Time `json:"-"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	day, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "date must be YYYY-MM-DD")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 100 {
		errs.Add("name", "name must be at most 100 characters")
	}

	r.Day = day
	return errs.Err()
}

type ListHolidayRequest struct {
	Year string `json:"year"`

	YearValue int `json:"-"`
}

func (r *ListHolidayRequest) Validate() error {
	var errs validator.ValidationErrors
	y, err := strconv.Atoi(r.Year)
	if err != nil || y < 1970 || y > 9999 {
		errs.Add("year", "year must be a four digit year")
	}
	r.YearValue = y
	return errs.Err()
}

type HolidayResponse struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Name      string  `json:"name"`
	Weekday   string  `json:"weekday"`
	CreatedBy *string `json:"created_by,omitempty"`
}

func ToResponse(h CompanyHoliday) HolidayResponse {
	return HolidayResponse{
		ID:        h.ID,
		Date:      h.Date.Format("2006-01-02"),
		Name:      h.Name,
		Weekday:   h.Date.Weekday().String(),
		CreatedBy: h.CreatedBy,
	}
}
