package holiday

import "context"

type HolidayService interface {
	Create(ctx context.Context, actorID string, req CreateHolidayRequest) (HolidayResponse, error)
	Delete(ctx context.Context, id string) error
	ListByYear(ctx context.Context, req ListHolidayRequest) ([]HolidayResponse, error)
}
