package holiday

import "errors"

var (
	ErrHolidayNotFound   = errors.New("company holiday not found")
	ErrHolidayDateExists = errors.New("a company holiday already exists on this date")
)
