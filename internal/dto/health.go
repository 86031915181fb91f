package dto

import "time"

type HealthResponse struct {
	OK        bool      `json:"ok"`
	Timestamp time.Time `json:"timestamp"`
	DB        string    `json:"db"`
	DBMessage string    `json:"dbMessage,omitempty"`
}

type DBStatusResponse struct {
	DB      string `json:"db"`
	Message string `json:"message,omitempty"`
}
