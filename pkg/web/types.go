package web

// CreateTicketRequest is the payload for submitting a new ticket.
type CreateTicketRequest struct {
	Title       string `json:"title"       validate:"required,min=3"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
	Priority    string `json:"priority"    validate:"required,oneof=low medium high urgent"`
	Requester   string `json:"requester"`
}

// FeedbackRequest is the payload for rating an automated resolution.
type FeedbackRequest struct {
	Effective bool   `json:"effective"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Text      string `json:"text"`
}
