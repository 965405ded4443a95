package models

import (
	"time"
)

type Session struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Identity           string    `json:"identity"`
	AgeRange           string    `json:"age_range"`
	RelationshipStatus string    `json:"relationship_status"`
	SupportType        string    `json:"support_type"`
	CommunicationType  string    `json:"communication_type"`
	SystemPrompt       string    `json:"system_prompt"`
	CreatedAt          time.Time `json:"created_at"`
}
