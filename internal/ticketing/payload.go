package ticketing

import (
	"encoding/json"
	"time"
)

// RecognizedTicket is the self-contained snapshot embedded in a ticket's
// QR image at generation time.
type RecognizedTicket struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Generated string `json:"generated"`
	Status    string `json:"status"`
}

// GeneratedAt parses the embedded generation timestamp, zero when the
// field is missing or not RFC 3339.
func (r RecognizedTicket) GeneratedAt() time.Time {
	t, err := time.Parse(time.RFC3339, r.Generated)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DecodedPayload is decided once at decode time: either Ticket is set or
// the content is foreign and only Raw carries it.
type DecodedPayload struct {
	Ticket *RecognizedTicket
	Raw    string
}

func (d DecodedPayload) Recognized() bool {
	return d.Ticket != nil
}

func EncodePayload(ticketNumber, ticketType string, generatedAt time.Time) (string, error) {
	payload := RecognizedTicket{
		ID:        ticketNumber,
		Type:      ticketType,
		Generated: generatedAt.Format(time.RFC3339),
		Status:    "valid",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodePayload classifies raw QR content. Anything that is not a JSON
// object carrying both id and type is foreign content, not an error.
func DecodePayload(content string) DecodedPayload {
	var ticket RecognizedTicket
	if err := json.Unmarshal([]byte(content), &ticket); err != nil {
		return DecodedPayload{Raw: content}
	}
	if ticket.ID == "" || ticket.Type == "" {
		return DecodedPayload{Raw: content}
	}
	return DecodedPayload{Ticket: &ticket, Raw: content}
}
