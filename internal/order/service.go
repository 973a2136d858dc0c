package order

import "context"

// Service provides business logic for orders.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) ListForCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// GetForCustomer only returns orders owned by customerID; anything else is
// reported as not found.
func (s *Service) GetForCustomer(ctx context.Context, id, customerID int64) (Order, error) {
	return s.repo.GetForCustomer(ctx, id, customerID)
}

func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, f)
}

// UpdateStatus moves an order to `to` if the lifecycle allows it from the
// order's current status.
func (s *Service) UpdateStatus(ctx context.Context, id int64, to Status) (Order, error) {
	if !to.Valid() {
		return Order{}, ErrInvalidStatus
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(current.Status, to) {
		return Order{}, ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, id, current.Status, to)
}
