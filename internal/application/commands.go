package application

import "encoding/json"

// Features gates the optional refresh steps.
type Features struct {
	SchoolSchedule bool
	WeekPlans      bool
}

type SetPasswordCommand struct {
	Username string
	Password string
}

type CallCommand struct {
	Path string
	Body json.RawMessage
}
