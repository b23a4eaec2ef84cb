package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/farm-portal/internal/domain"
	"github.com/spec-kit/farm-portal/internal/events"
	"github.com/spec-kit/farm-portal/internal/repository"
)

// DefaultOrderItem is used when a customer orders without naming an item.
const DefaultOrderItem = "অতিরিক্ত দুধ (Daily Supply)"

const requestDateLayout = "2006-01-02 15:04"

// ApprovalService moves customer requests through pending, completed and
// rejected.
type ApprovalService struct {
	directory *repository.Directory
	publisher
}

// ApprovalDependencies wires the approval service.
type ApprovalDependencies struct {
	Directory  *repository.Directory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewApprovalService builds the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	return &ApprovalService{
		directory: deps.Directory,
		publisher: newPublisher(deps.Dispatcher, deps.Logger),
	}
}

// RequestFilter narrows List. Zero values match everything.
type RequestFilter struct {
	UserID string
	Status domain.RequestStatus
	Type   domain.RequestType
}

func (f RequestFilter) matches(r domain.SystemRequest) bool {
	return (f.UserID == "" || r.UserID == f.UserID) &&
		(f.Status == "" || r.Status == f.Status) &&
		(f.Type == "" || r.Type == f.Type)
}

// SubmitOrder records a pending extra-supply order and its approval request,
// which share one id.
func (s *ApprovalService) SubmitOrder(ctx context.Context, actor domain.User, item string) (domain.SystemRequest, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		item = DefaultOrderItem
	}

	var req domain.SystemRequest
	err := s.directory.Update(ctx, func(snap *repository.Snapshot) error {
		customer, err := requireCustomer(snap, actor)
		if err != nil {
			return err
		}
		date := snap.Now().Format(requestDateLayout)
		order := domain.Order{
			ID:           snap.NewOrderID(),
			CustomerID:   customer.ID,
			CustomerName: customer.Username,
			Item:         item,
			Date:         date,
			Status:       domain.OrderStatusPending,
		}
		req = domain.SystemRequest{
			ID:       order.ID,
			Type:     domain.RequestTypeOrder,
			UserID:   customer.ID,
			UserName: customer.Username,
			Date:     date,
			Status:   domain.RequestStatusPending,
			Payload:  order,
		}
		snap.Orders = append(snap.Orders, order)
		snap.Requests = append(snap.Requests, req)
		return nil
	})
	if err != nil {
		return domain.SystemRequest{}, err
	}

	s.submitted(ctx, actor, req)
	return req, nil
}

// SubmitProfileUpdate proposes patch for the actor's own account. A change to
// the daily milk quota is filed as a milk_update request.
func (s *ApprovalService) SubmitProfileUpdate(ctx context.Context, actor domain.User, patch domain.UserPatch) (domain.SystemRequest, error) {
	if patch.IsEmpty() {
		return domain.SystemRequest{}, fmt.Errorf("nothing to update: %w", domain.ErrInvalidInput)
	}
	if (patch.MilkLiter != nil && patch.MilkLiter.IsNegative()) || (patch.MilkPrice != nil && patch.MilkPrice.IsNegative()) {
		return domain.SystemRequest{}, fmt.Errorf("milk quota must not be negative: %w", domain.ErrInvalidAmount)
	}

	var req domain.SystemRequest
	err := s.directory.Update(ctx, func(snap *repository.Snapshot) error {
		customer, err := requireCustomer(snap, actor)
		if err != nil {
			return err
		}
		typ := domain.RequestTypeProfileUpdate
		if patch.ChangesMilkQuota(*customer) {
			typ = domain.RequestTypeMilkUpdate
		}
		old := patch.SnapshotOf(*customer)
		req = domain.SystemRequest{
			ID:       snap.NewRequestID(),
			Type:     typ,
			UserID:   customer.ID,
			UserName: customer.Username,
			Date:     snap.Now().Format(requestDateLayout),
			Status:   domain.RequestStatusPending,
			Payload:  patch,
			OldData:  &old,
		}
		snap.Requests = append(snap.Requests, req)
		return nil
	})
	if err != nil {
		return domain.SystemRequest{}, err
	}

	s.submitted(ctx, actor, req)
	return req, nil
}

func (s *ApprovalService) submitted(ctx context.Context, actor domain.User, req domain.SystemRequest) {
	s.logger.Info("request submitted",
		zap.String("request_id", req.ID),
		zap.String("type", string(req.Type)),
		zap.String("user_id", req.UserID))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventRequestSubmitted,
		UserID:  req.UserID,
		Actor:   actorOf(actor),
		Payload: events.RequestPayload{Request: req},
	})
}

// Approve applies a pending request: an order is marked completed, a profile
// or milk update is merged into the requester's account. The request, its
// order and the account change are persisted together.
func (s *ApprovalService) Approve(ctx context.Context, actor domain.User, requestID string) (domain.SystemRequest, error) {
	var (
		approved    domain.SystemRequest
		requester   domain.User
		userTouched bool
	)
	err := s.directory.Update(ctx, func(snap *repository.Snapshot) error {
		req, err := pendingRequest(snap, actor, requestID)
		if err != nil {
			return err
		}

		switch req.Type {
		case domain.RequestTypeOrder:
			if order, ok := snap.Order(req.ID); ok {
				order.Status = domain.OrderStatusCompleted
			}
		case domain.RequestTypeProfileUpdate, domain.RequestTypeMilkUpdate:
			patch, ok := req.PatchPayload()
			if !ok {
				return fmt.Errorf("request %s has no update: %w", req.ID, domain.ErrInvalidInput)
			}
			user, ok := snap.User(req.UserID)
			if !ok {
				return fmt.Errorf("user %s: %w", req.UserID, domain.ErrNotFound)
			}
			if patch.Email != nil {
				if other, exists := snap.UserByEmail(*patch.Email); exists && other.ID != user.ID {
					return fmt.Errorf("email %s: %w", *patch.Email, domain.ErrAlreadyExists)
				}
			}
			patch.ApplyTo(user)
			userTouched = true
		default:
			return fmt.Errorf("request type %q: %w", req.Type, domain.ErrInvalidInput)
		}

		req.Status = domain.RequestStatusCompleted
		if order, ok := req.OrderPayload(); ok {
			order.Status = domain.OrderStatusCompleted
			req.Payload = order
		}
		approved = *req
		if u, ok := snap.User(req.UserID); ok {
			requester = u.Clone()
		}
		return nil
	})
	if err != nil {
		return domain.SystemRequest{}, err
	}

	s.logger.Info("request approved", zap.String("request_id", approved.ID), zap.String("type", string(approved.Type)))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventRequestApproved,
		UserID:  approved.UserID,
		Actor:   actorOf(actor),
		Payload: events.RequestPayload{Request: approved, User: requester},
	})
	if userTouched {
		s.userChanged(ctx, actor, requester)
	}
	return approved, nil
}

// Reject closes a pending request without applying it. An order request
// takes its order to rejected with it.
func (s *ApprovalService) Reject(ctx context.Context, actor domain.User, requestID string) (domain.SystemRequest, error) {
	var rejected domain.SystemRequest
	err := s.directory.Update(ctx, func(snap *repository.Snapshot) error {
		req, err := pendingRequest(snap, actor, requestID)
		if err != nil {
			return err
		}
		if req.Type == domain.RequestTypeOrder {
			if order, ok := snap.Order(req.ID); ok {
				order.Status = domain.OrderStatusRejected
			}
			if order, ok := req.OrderPayload(); ok {
				order.Status = domain.OrderStatusRejected
				req.Payload = order
			}
		}
		req.Status = domain.RequestStatusRejected
		rejected = *req
		return nil
	})
	if err != nil {
		return domain.SystemRequest{}, err
	}

	s.logger.Info("request rejected", zap.String("request_id", rejected.ID), zap.String("type", string(rejected.Type)))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventRequestRejected,
		UserID:  rejected.UserID,
		Actor:   actorOf(actor),
		Payload: events.RequestPayload{Request: rejected},
	})
	return rejected, nil
}

func pendingRequest(snap *repository.Snapshot, actor domain.User, requestID string) (*domain.SystemRequest, error) {
	if err := requireAdmin(snap, actor); err != nil {
		return nil, err
	}
	req, ok := snap.Request(requestID)
	if !ok {
		return nil, fmt.Errorf("request %s: %w", requestID, domain.ErrNotFound)
	}
	if !req.IsPending() {
		return nil, fmt.Errorf("request %s is %s: %w", requestID, req.Status, domain.ErrNotPending)
	}
	return req, nil
}

// Pending returns the requests awaiting a decision, oldest first.
func (s *ApprovalService) Pending(ctx context.Context, actor domain.User) ([]domain.SystemRequest, error) {
	return s.List(ctx, actor, RequestFilter{Status: domain.RequestStatusPending})
}

// PendingCount is the number of requests awaiting a decision.
func (s *ApprovalService) PendingCount(ctx context.Context, actor domain.User) (int, error) {
	pending, err := s.Pending(ctx, actor)
	return len(pending), err
}

// List returns requests matching filter in submission order. Customers only
// ever see their own.
func (s *ApprovalService) List(ctx context.Context, actor domain.User, filter RequestFilter) ([]domain.SystemRequest, error) {
	if err := requireAdminView(s.directory, actor); err != nil {
		filter.UserID = actor.ID
	}
	out := make([]domain.SystemRequest, 0)
	for _, r := range s.directory.Requests() {
		if filter.matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Orders returns extra-supply orders in submission order. Customers only
// ever see their own.
func (s *ApprovalService) Orders(ctx context.Context, actor domain.User) ([]domain.Order, error) {
	all := s.directory.Orders()
	if err := requireAdminView(s.directory, actor); err == nil {
		return all, nil
	}
	out := make([]domain.Order, 0)
	for _, o := range all {
		if o.CustomerID == actor.ID {
			out = append(out, o)
		}
	}
	return out, nil
}
