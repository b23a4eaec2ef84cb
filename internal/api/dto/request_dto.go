package dto

import (
	"github.com/spec-kit/farm-portal/internal/domain"
)

// OrderRequest payload for POST /me/orders. An empty item orders the daily
// supply.
type OrderRequest struct {
	Item string `json:"item"`
}

// HelpRequest payload for POST /help/ask.
type HelpRequest struct {
	Text string `json:"text"`
}

// RequestResponse is a SystemRequest as shown to clients. Passwords in the
// proposed and previous values are never echoed; PasswordChange flags them.
type RequestResponse struct {
	ID             string               `json:"id"`
	Type           domain.RequestType   `json:"type"`
	UserID         string               `json:"userId"`
	UserName       string               `json:"userName"`
	Date           string               `json:"date"`
	Status         domain.RequestStatus `json:"status"`
	Order          *domain.Order        `json:"order,omitempty"`
	Changes        *domain.UserPatch    `json:"changes,omitempty"`
	OldData        *domain.UserPatch    `json:"oldData,omitempty"`
	PasswordChange bool                 `json:"passwordChange,omitempty"`
}

// NewRequestResponse maps a domain request.
func NewRequestResponse(r domain.SystemRequest) RequestResponse {
	out := RequestResponse{
		ID:       r.ID,
		Type:     r.Type,
		UserID:   r.UserID,
		UserName: r.UserName,
		Date:     r.Date,
		Status:   r.Status,
	}
	if order, ok := r.OrderPayload(); ok {
		out.Order = &order
	}
	if patch, ok := r.PatchPayload(); ok {
		out.PasswordChange = patch.Password != nil
		patch.Password = nil
		out.Changes = &patch
	}
	if r.OldData != nil {
		old := *r.OldData
		old.Password = nil
		out.OldData = &old
	}
	return out
}

// NewRequestResponses maps a list of requests.
func NewRequestResponses(reqs []domain.SystemRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, NewRequestResponse(r))
	}
	return out
}
