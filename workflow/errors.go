package workflow

import "errors"

// Errors returned by workflow operations. Handlers translate them to http statuses.
var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidStatus      = errors.New("unknown status")
	ErrForbidden          = errors.New("not allowed to act on this event")
	ErrNotFound           = errors.New("requirement not found on event")
	ErrNotReleased        = errors.New("requirement has not been released to the department")
	ErrUnknownDepartment  = errors.New("unknown department")
	ErrUnknownRequirement = errors.New("requirement is not in the department catalog")
	ErrNotEditable        = errors.New("event can no longer be edited")
	ErrUnknownReportSlot  = errors.New("unknown report slot")
)
