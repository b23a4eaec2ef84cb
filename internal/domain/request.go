package domain

import (
	"encoding/json"
	"fmt"
)

// RequestType selects the payload variant of a SystemRequest.
type RequestType string

const (
	RequestTypeOrder         RequestType = "order"
	RequestTypeProfileUpdate RequestType = "profile_update"
	RequestTypeMilkUpdate    RequestType = "milk_update"
)

// RequestStatus enumerates approval lifecycle states. Completed and rejected
// are terminal.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusRejected  RequestStatus = "rejected"
)

// RequestPayload is implemented by Order and UserPatch.
type RequestPayload interface {
	isRequestPayload()
}

// SystemRequest is an action proposed by a customer awaiting admin approval.
type SystemRequest struct {
	ID       string
	Type     RequestType
	UserID   string
	UserName string
	Date     string
	Status   RequestStatus
	Payload  RequestPayload
	OldData  *UserPatch
}

// IsPending reports whether the request can still transition.
func (r SystemRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

// OrderPayload returns the order carried by an order request.
func (r SystemRequest) OrderPayload() (Order, bool) {
	switch p := r.Payload.(type) {
	case Order:
		return p, true
	case *Order:
		if p != nil {
			return *p, true
		}
	}
	return Order{}, false
}

// PatchPayload returns the proposed update carried by a profile or milk request.
func (r SystemRequest) PatchPayload() (UserPatch, bool) {
	switch p := r.Payload.(type) {
	case UserPatch:
		return p, true
	case *UserPatch:
		if p != nil {
			return *p, true
		}
	}
	return UserPatch{}, false
}

type systemRequestJSON struct {
	ID       string          `json:"id"`
	Type     RequestType     `json:"type"`
	UserID   string          `json:"userId"`
	UserName string          `json:"userName"`
	Date     string          `json:"date"`
	Status   RequestStatus   `json:"status"`
	Payload  json.RawMessage `json:"payload"`
	OldData  *UserPatch      `json:"oldData,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r SystemRequest) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(systemRequestJSON{
		ID:       r.ID,
		Type:     r.Type,
		UserID:   r.UserID,
		UserName: r.UserName,
		Date:     r.Date,
		Status:   r.Status,
		Payload:  payload,
		OldData:  r.OldData,
	})
}

// UnmarshalJSON decodes the payload according to the request type.
func (r *SystemRequest) UnmarshalJSON(data []byte) error {
	var raw systemRequestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var payload RequestPayload
	switch raw.Type {
	case RequestTypeOrder:
		var order Order
		if err := decodePayload(raw.Payload, &order); err != nil {
			return fmt.Errorf("order payload: %w", err)
		}
		payload = order
	case RequestTypeProfileUpdate, RequestTypeMilkUpdate:
		var patch UserPatch
		if err := decodePayload(raw.Payload, &patch); err != nil {
			return fmt.Errorf("%s payload: %w", raw.Type, err)
		}
		payload = patch
	default:
		return fmt.Errorf("unknown request type %q", raw.Type)
	}

	*r = SystemRequest{
		ID:       raw.ID,
		Type:     raw.Type,
		UserID:   raw.UserID,
		UserName: raw.UserName,
		Date:     raw.Date,
		Status:   raw.Status,
		Payload:  payload,
		OldData:  raw.OldData,
	}
	return nil
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
