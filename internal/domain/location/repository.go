package location

import "context"

type LocationRepository interface {
	GetByID(ctx context.Context, id string) (Location, error)
	List(ctx context.Context) ([]Location, error)
	Create(ctx context.Context, loc Location) (Location, error)
	Update(ctx context.Context, loc Location) error
}
