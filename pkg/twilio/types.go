package twilio

// SendSMSRequest is one outbound SMS.
type SendSMSRequest struct {
	To   string
	From string
	Body string
}

// MessageResponse mirrors the Twilio message resource. Status is the
// vendor's delivery state (queued, sending, sent, failed, ...); anything
// other than "sent" means the vendor is still processing.
type MessageResponse struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	To           string  `json:"to"`
	From         string  `json:"from"`
	Body         string  `json:"body"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

// ErrorResponse is Twilio's error body for non-2xx responses.
type ErrorResponse struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}
