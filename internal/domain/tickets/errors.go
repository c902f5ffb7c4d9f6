package tickets

import "errors"

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrDuplicateTicket     = errors.New("ticket already entered for this date and type")
	ErrMissingInstallDate  = errors.New("install date is required")
	ErrMissingInstallType  = errors.New("install type is required")
	ErrMissingTicketNumber = errors.New("ticket number is required for billable work")
)
