package meta

// SendMessageRequest is the Graph messages payload shared by the
// Messenger and Instagram send endpoints.
type SendMessageRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// SendMessageResponse is the Graph messages receipt.
type SendMessageResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// Lead is one lead-gen form submission.
type Lead struct {
	ID          string      `json:"id"`
	CreatedTime string      `json:"created_time"`
	AdID        string      `json:"ad_id,omitempty"`
	FormID      string      `json:"form_id,omitempty"`
	FieldData   []LeadField `json:"field_data"`
}

// LeadField is one answered form field.
type LeadField struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// LeadsResponse is the paged leads listing.
type LeadsResponse struct {
	Data   []Lead  `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// Form is one lead-gen form.
type Form struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	CreatedTime string `json:"created_time"`
}

// FormsResponse is the paged forms listing.
type FormsResponse struct {
	Data   []Form  `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// Paging carries Graph cursors for result pages.
type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next,omitempty"`
}

// ErrorResponse is the Graph error body for non-2xx responses.
type ErrorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
