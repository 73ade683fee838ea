package domain

type PresenceStatus int

const (
	PresenceNotArrived PresenceStatus = 0
	PresenceSick       PresenceStatus = 1
	PresenceHoliday    PresenceStatus = 2
	PresenceArrived    PresenceStatus = 3
	PresenceOnTrip     PresenceStatus = 4
	PresenceSleeping   PresenceStatus = 5
	PresencePickedUp   PresenceStatus = 8
	PresenceUnknown    PresenceStatus = -1
)

// ParsePresenceStatus maps a portal status code, folding unknown codes into
// PresenceUnknown.
func ParsePresenceStatus(code int) PresenceStatus {
	switch status := PresenceStatus(code); status {
	case PresenceNotArrived, PresenceSick, PresenceHoliday, PresenceArrived,
		PresenceOnTrip, PresenceSleeping, PresencePickedUp:
		return status
	default:
		return PresenceUnknown
	}
}

func (s PresenceStatus) Label() string {
	switch s {
	case PresenceNotArrived:
		return "Ikke kommet"
	case PresenceSick:
		return "Syg"
	case PresenceHoliday:
		return "Ferie/Fri"
	case PresenceArrived:
		return "Kommet/Til stede"
	case PresenceOnTrip:
		return "På tur"
	case PresenceSleeping:
		return "Sover"
	case PresencePickedUp:
		return "Hentet/Gået"
	default:
		return "Ukendt"
	}
}

// PresenceRecord is the daily overview of one child. Clock fields are
// formatted HH:MM; an empty string means the portal did not set them.
type PresenceRecord struct {
	Status               PresenceStatus
	CheckInTime          string
	CheckOutTime         string
	EntryTime            string
	ExitTime             string
	ExitWith             string
	Location             string
	Comment              string
	ActivityType         string
	SpareTimeActivity    string
	SelfDeciderStartTime string
	SelfDeciderEndTime   string
	InstitutionProfileID string
	ProfilePictureURL    *string
}

// Presence wraps a record. HasData is false when the portal returned no
// overview for the child, which is not the same as a child being idle.
type Presence struct {
	Record  PresenceRecord
	HasData bool
}

var NoPresenceData = Presence{}

func (p Presence) Label() string {
	if !p.HasData {
		return "n/a"
	}
	return p.Record.Status.Label()
}
