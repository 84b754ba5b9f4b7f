package location

import "errors"

var (
	ErrLocationNotFound   = errors.New("location not found")
	ErrLocationNameExists = errors.New("location name already exists")
)
