package domain

import "time"

// Flow is an ordered email sequence used as enrollment-target metadata.
type Flow struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	Steps       []FlowStep `json:"steps"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// FlowStep is a single email in a flow. StepNumber is strictly increasing
// within a flow and determines ordering.
type FlowStep struct {
	ID           string `json:"id" db:"id"`
	FlowID       string `json:"flow_id" db:"flow_id"`
	StepNumber   int    `json:"step_number" db:"step_number"`
	EmailSubject string `json:"email_subject" db:"email_subject"`
	EmailContent string `json:"email_content" db:"email_content"`
	DelayDays    int    `json:"delay_days" db:"delay_days"`
}
