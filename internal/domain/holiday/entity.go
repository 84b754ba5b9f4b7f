package holiday

import "time"

// CompanyHoliday is a company-wide day off. It reduces business days in
// monthly aggregation.
type CompanyHoliday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedBy *string
	CreatedAt time.Time
}
