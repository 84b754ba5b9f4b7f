package location

import "context"

type LocationService interface {
	List(ctx context.Context) ([]LocationResponse, error)
	Create(ctx context.Context, req UpsertLocationRequest) (LocationResponse, error)
	Update(ctx context.Context, req UpsertLocationRequest) (LocationResponse, error)
}
