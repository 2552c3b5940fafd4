package domain

// Customer is a registered buyer that orders and price overrides can be tied to.
type Customer struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Agent is a sales agent managed from the dashboard.
type Agent struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}
