package highlevel

// ErrorResponse covers the two error body shapes the CRM returns:
// {"msg": "..."} on v1 endpoints and {"message": "..."} elsewhere.
type ErrorResponse struct {
	Msg        string `json:"msg,omitempty"`
	MessageStr string `json:"message,omitempty"`
}

// Message returns whichever error text the CRM populated.
func (e ErrorResponse) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.MessageStr
}
