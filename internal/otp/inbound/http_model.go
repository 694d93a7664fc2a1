package inbound

import (
	"net/http"
	"time"
)

type IssueRequest struct {
	OperationID    string `json:"operation_id"`
	Channel        string `json:"channel" example:"email"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	TelegramChatID string `json:"telegram_chat_id,omitempty"`
}

type RecordResponse struct {
	ID          string    `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	OperationID string    `json:"operation_id"`
	Channel     string    `json:"channel"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type IssueResponse struct {
	RecordResponse
	// Code is only returned for the file channel.
	Code      string `json:"code,omitempty"`
	Delivered bool   `json:"delivered"`
}

func (IssueResponse) StatusCode() int  { return http.StatusCreated }
func (IssueResponse) Message() string { return "OTP issued" }

type VerifyRequest struct {
	Code        string `json:"code" example:"123456"`
	OperationID string `json:"operation_id"`
}

type VerifyResponse struct {
	Outcome string `json:"outcome" example:"success"`
}

func (VerifyResponse) Message() string { return "OTP verified" }

type PolicyRequest struct {
	CodeLength      int `json:"code_length" example:"6"`
	LifetimeMinutes int `json:"lifetime_minutes" example:"5"`
}

type PolicyResponse struct {
	CodeLength      int       `json:"code_length"`
	LifetimeMinutes int       `json:"lifetime_minutes"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type RecordsResponse struct {
	Records []RecordResponse `json:"records"`
}

type DeleteOwnerResponse struct {
	Deleted int64 `json:"deleted"`
}
