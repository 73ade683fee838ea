package domain

const (
	UnknownSender       = "Ukendt afsender"
	EmptyMessageText    = "intet indhold..."
	sensitiveText       = "Log ind på Aula med MitID for at læse denne besked."
	sensitiveSubject    = "Følsom besked"
	MessageTypeStandard = "Message"
)

// MessageSummary holds at most the newest unread thread. Older unread
// threads are not tracked.
type MessageSummary struct {
	Unread  bool
	Subject string
	Sender  string
	Text    string
}

var NoUnreadMessages = MessageSummary{}

// SensitiveMessage stands in for a thread whose body requires MitID.
var SensitiveMessage = MessageSummary{
	Unread:  true,
	Subject: sensitiveSubject,
	Sender:  UnknownSender,
	Text:    sensitiveText,
}

type ThreadID string

type ThreadSummary struct {
	ID      ThreadID
	Subject string
	Read    bool
}

type ThreadMessage struct {
	Type   string
	Text   string
	Sender string
}

type Thread struct {
	Subject   string
	Sensitive bool
	Messages  []ThreadMessage
}
