package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/aula-cli/internal/domain"
)

type envelope struct {
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
	Data json.RawMessage `json:"data"`
}

func (e envelope) decodeData(out any) error {
	if len(e.Data) == 0 || bytes.Equal(e.Data, []byte("null")) {
		return fmt.Errorf("%w: missing data", domain.ErrMalformedResponse)
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// flexString accepts both JSON strings and numbers. The portal is not
// consistent about which one it sends for ids.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

type profilesData struct {
	Profiles []profileRecord `json:"profiles"`
}

type profileRecord struct {
	InstitutionProfiles []struct {
		InstitutionCode flexString `json:"institutionCode"`
	} `json:"institutionProfiles"`
	Children []childRecord `json:"children"`
}

type childRecord struct {
	ID                 flexString `json:"id"`
	UserID             flexString `json:"userId"`
	Name               string     `json:"name"`
	InstitutionProfile struct {
		InstitutionCode flexString `json:"institutionCode"`
		InstitutionName string     `json:"institutionName"`
	} `json:"institutionProfile"`
}

func (d profilesData) toDomain() []domain.GuardianProfile {
	profiles := make([]domain.GuardianProfile, 0, len(d.Profiles))
	for _, p := range d.Profiles {
		profile := domain.GuardianProfile{}
		for _, ip := range p.InstitutionProfiles {
			profile.InstitutionCodes = append(profile.InstitutionCodes, domain.InstitutionCode(ip.InstitutionCode))
		}
		for _, c := range p.Children {
			profile.Children = append(profile.Children, domain.ProfileChild{
				ID:              domain.ChildID(c.ID),
				UserID:          domain.ChildUserID(c.UserID),
				Name:            c.Name,
				InstitutionCode: domain.InstitutionCode(c.InstitutionProfile.InstitutionCode),
				InstitutionName: c.InstitutionProfile.InstitutionName,
			})
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

type profileContextData struct {
	UserID             flexString `json:"userId"`
	InstitutionProfile struct {
		Relations json.RawMessage `json:"relations"`
	} `json:"institutionProfile"`
	PageConfiguration struct {
		WidgetConfigurations []struct {
			Widget struct {
				WidgetID flexString `json:"widgetId"`
				Name     string     `json:"name"`
			} `json:"widget"`
		} `json:"widgetConfigurations"`
	} `json:"pageConfiguration"`
}

func (d profileContextData) widgets() domain.WidgetSet {
	set := domain.WidgetSet{}
	for _, cfg := range d.PageConfiguration.WidgetConfigurations {
		if cfg.Widget.WidgetID == "" {
			continue
		}
		set[domain.WidgetID(cfg.Widget.WidgetID)] = cfg.Widget.Name
	}
	return set
}

type presenceRecord struct {
	Status               int             `json:"status"`
	CheckInTime          *string         `json:"checkInTime"`
	CheckOutTime         *string         `json:"checkOutTime"`
	EntryTime            *string         `json:"entryTime"`
	ExitTime             *string         `json:"exitTime"`
	ExitWith             *string         `json:"exitWith"`
	Location             json.RawMessage `json:"location"`
	Comment              *string         `json:"comment"`
	ActivityType         json.RawMessage `json:"activityType"`
	SpareTimeActivity    json.RawMessage `json:"spareTimeActivity"`
	SelfDeciderStartTime *string         `json:"selfDeciderStartTime"`
	SelfDeciderEndTime   *string         `json:"selfDeciderEndTime"`
	InstitutionProfile   struct {
		ID             flexString `json:"id"`
		ProfilePicture *struct {
			URL string `json:"url"`
		} `json:"profilePicture"`
	} `json:"institutionProfile"`
}

// noExitTime is what the portal sends when no pickup time was registered.
const noExitTime = "23:59:00"

func (r presenceRecord) toDomain() domain.PresenceRecord {
	record := domain.PresenceRecord{
		Status:               domain.ParsePresenceStatus(r.Status),
		CheckInTime:          clockField(r.CheckInTime),
		CheckOutTime:         clockField(r.CheckOutTime),
		EntryTime:            clockField(r.EntryTime),
		ExitWith:             deref(r.ExitWith),
		Location:             flattenField(r.Location),
		Comment:              deref(r.Comment),
		ActivityType:         flattenField(r.ActivityType),
		SpareTimeActivity:    flattenField(r.SpareTimeActivity),
		SelfDeciderStartTime: clockField(r.SelfDeciderStartTime),
		SelfDeciderEndTime:   clockField(r.SelfDeciderEndTime),
		InstitutionProfileID: string(r.InstitutionProfile.ID),
	}
	if r.ExitTime != nil && *r.ExitTime != noExitTime {
		record.ExitTime = clockField(r.ExitTime)
	}
	if pic := r.InstitutionProfile.ProfilePicture; pic != nil && pic.URL != "" {
		url := pic.URL
		record.ProfilePictureURL = &url
	}
	return record
}

// clockField trims HH:MM:SS to HH:MM and passes other values through.
func clockField(v *string) string {
	if v == nil {
		return ""
	}
	raw := strings.TrimSpace(*v)
	if len(raw) == len("15:04:05") && raw[2] == ':' && raw[5] == ':' {
		return raw[:5]
	}
	return raw
}

// flattenField renders a loosely typed field as text. Objects with a name
// collapse to that name.
func flattenField(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var named struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &named); err == nil && named.Name != "" {
		return named.Name
	}
	return string(raw)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

type threadsData struct {
	Threads []struct {
		ID      flexString `json:"id"`
		Read    bool       `json:"read"`
		Subject string     `json:"subject"`
	} `json:"threads"`
}

type threadData struct {
	Subject  *string `json:"subject"`
	Messages []struct {
		MessageType string      `json:"messageType"`
		Text        messageText `json:"text"`
		Sender      *struct {
			FullName string `json:"fullName"`
		} `json:"sender"`
	} `json:"messages"`
}

// messageText is either {"html": "..."} or a bare string.
type messageText struct {
	Value string
	Set   bool
}

func (m *messageText) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var rich struct {
		HTML *string `json:"html"`
	}
	if err := json.Unmarshal(b, &rich); err == nil {
		if rich.HTML != nil {
			m.Value, m.Set = *rich.HTML, true
		}
		return nil
	}
	var plain string
	if err := json.Unmarshal(b, &plain); err != nil {
		return fmt.Errorf("message text: unexpected shape %s", b)
	}
	m.Value, m.Set = plain, true
	return nil
}

func (d threadData) toDomain() domain.Thread {
	thread := domain.Thread{Subject: deref(d.Subject)}
	for _, msg := range d.Messages {
		text := domain.EmptyMessageText
		if msg.Text.Set {
			text = msg.Text.Value
		}
		sender := domain.UnknownSender
		if msg.Sender != nil && msg.Sender.FullName != "" {
			sender = msg.Sender.FullName
		}
		thread.Messages = append(thread.Messages, domain.ThreadMessage{
			Type:   msg.MessageType,
			Text:   text,
			Sender: sender,
		})
	}
	return thread
}
