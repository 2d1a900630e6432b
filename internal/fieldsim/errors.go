package fieldsim

import "errors"

// ErrInvalidArgument is returned (wrapped) when a caller passes parameters
// that cannot produce a well-formed result, such as a zero-width grid.
var ErrInvalidArgument = errors.New("invalid argument")
