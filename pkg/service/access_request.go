package service

import (
	"context"
	"net/http"
	"time"
)

// AccessRequestAPI delivers an access request to the approvers.
type AccessRequestAPI interface {
	SendAccessRequest(ctx context.Context, req AccessRequest) error
}

// ApproverNotifierAPI posts a short notice about an access request to a chat channel.
type ApproverNotifierAPI interface {
	InformNewAccessRequest(ctx context.Context, req AccessRequest) error
}

// AppTokenProvider acquires application-only tokens for the mail API.
type AppTokenProvider interface {
	AppToken(ctx context.Context) (string, error)
}

type AccessRequestService interface {
	RequestAccess(ctx context.Context, sess Session, input NewAccessRequestDTO) (*AccessRequestReceipt, error)
}

// AccessRequest is built only to render the notification and is not persisted.
type AccessRequest struct {
	Reference       string
	SenderMailbox   string
	RequesterEmail  string
	ApproverMailbox string
	RedirectURI     string
	Timestamp       time.Time
}

type NewAccessRequestDTO struct {
	SenderMailbox string `json:"senderMailbox"`
}

type AccessRequestReceipt struct {
	Reference     string    `json:"reference"`
	SenderMailbox string    `json:"senderMailbox"`
	Requester     string    `json:"requester"`
	SentAt        time.Time `json:"sentAt"`
	Message       string    `json:"message"`
}

func (r *AccessRequestReceipt) StatusCode() int {
	return http.StatusAccepted
}
