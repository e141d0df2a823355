package domain

import "time"

// Strategy is a named playbook that trades can be linked to.
type Strategy struct {
	ID             string    `json:"id" yaml:"id"`
	UserID         string    `json:"userId" yaml:"user_id"`
	Name           string    `json:"name" yaml:"name" validate:"required"`
	Description    string    `json:"description" yaml:"description"`
	Rules          string    `json:"rules" yaml:"rules"`
	RiskManagement string    `json:"riskManagement" yaml:"risk_management"`
	CreatedAt      time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" yaml:"updated_at"`
}
