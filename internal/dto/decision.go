package dto

import "time"

// SpinRequest is the wheel input. The minimum of two options is re-checked
// after trimming in the service; this tag only rejects the obvious case
// before any work happens.
type SpinRequest struct {
	Options []string `json:"options" validate:"required,min=2,dive,max=120"`
	// Shuffled asks for the options back in wheel display order.
	Shuffled bool `json:"shuffled"`
}

type DecisionResponse struct {
	ID        string    `json:"id"`
	Options   []string  `json:"options"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type SpinResponse struct {
	Decision DecisionResponse `json:"decision"`
	// Wheel is the shuffled display order when the request asked for it.
	Wheel []string `json:"wheel,omitempty"`
}

type ListDecisionsResponse struct {
	Items []DecisionResponse `json:"items"`
}
