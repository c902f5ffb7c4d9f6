package imports

import "errors"

var (
	ErrDuplicateImport = errors.New("this file was already imported")
	ErrNoHeader        = errors.New("no header row with ticket, date and type columns found")
	ErrNoRows          = errors.New("file has no data rows")
	ErrUnreadableFile  = errors.New("file could not be read as a job sheet")
)
