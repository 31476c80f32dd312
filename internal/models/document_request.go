package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestType string

const (
	RequestIdentityVerification RequestType = "identity_verification"
)

type RequestChannel string

const (
	ChannelEmail RequestChannel = "email"
	ChannelSMS   RequestChannel = "sms"
)

type DocumentRequest struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	CandidateID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_requests_candidate_position" json:"candidate_id"`
	Position       int            `gorm:"not null;uniqueIndex:idx_requests_candidate_position" json:"position"`
	RequestType    RequestType    `gorm:"type:text;not null" json:"request_type"`
	Channel        RequestChannel `gorm:"type:text;not null" json:"channel"`
	RequestMessage string         `gorm:"type:text" json:"request_message"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (DocumentRequest) TableName() string {
	return "document_requests"
}
