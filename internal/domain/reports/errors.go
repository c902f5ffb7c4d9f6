package reports

import "errors"

var ErrInvalidRange = errors.New("from must not be after to")
