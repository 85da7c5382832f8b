package mailgun

// SendMessageRequest is one outbound email.
type SendMessageRequest struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// SendMessageResponse is Mailgun's acceptance receipt. The ID is the
// vendor-assigned message identifier (angle-bracketed Message-Id).
type SendMessageResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
