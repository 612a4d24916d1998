package pkg

// Biography holds the short form a student fills in before the interview.
// Optional fields may be empty.  Phone is stored in normalized international
// form once the form is accepted.
type Biography struct {
	Name  string `json:"name" binding:"max=100"`
	Age   string `json:"age"`
	Grade string `json:"grade" binding:"omitempty,oneof=7 8 9"`
	Sex   string `json:"sex" binding:"omitempty,oneof=Laki-Laki Perempuan"`
	Email string `json:"email" binding:"max=254"`
	Phone string `json:"phone" binding:"max=32"`
}

// QAPair is one completed interview turn.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Speaker describes who authored a transcript message.
type Speaker string

const (
	SpeakerAssistant Speaker = "assistant"
	SpeakerUser      Speaker = "user"
)

// Message is a single chat transcript entry.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// NoticeLevel grades a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
)

// Notice channels.
const (
	ChannelBiography = "biography"
	ChannelDialogue  = "dialogue"
	ChannelEmail     = "email"
	ChannelSMS       = "sms"
)

// Notice is a non-fatal message surfaced to the user, such as a delivery
// warning or an informational "not sent" note.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Channel string      `json:"channel"`
	Text    string      `json:"text"`
}

// Disclaimer is shown with every result.
const Disclaimer = "Disclaimer: Ini bukan diagnosis resmi. Jika Anda mengalami tanda bahaya atau nyeri berat, segera cari pertolongan medis darurat."

// MessageRequest is the body of a user turn.
type MessageRequest struct {
	Content string `json:"content" binding:"max=4000"`
}
