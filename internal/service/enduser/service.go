package enduser

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/duetap/duetap-backend-go/internal/domain/enduser"
)

type endUserService struct {
	endUserRepo enduser.Repository
}

func NewEndUserService(endUserRepo enduser.Repository) enduser.Service {
	return &endUserService{endUserRepo: endUserRepo}
}

func (s *endUserService) Create(ctx context.Context, clientID string, req enduser.CreateRequest) (enduser.EndUser, error) {
	if err := req.Validate(); err != nil {
		return enduser.EndUser{}, err
	}

	user := enduser.EndUser{
		ID:       uuid.New().String(),
		ClientID: clientID,
		Name:     req.Name,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	created, err := s.endUserRepo.Create(ctx, user)
	if err != nil {
		return enduser.EndUser{}, fmt.Errorf("create end user: %w", err)
	}
	return created, nil
}

func (s *endUserService) Get(ctx context.Context, clientID, id string) (enduser.EndUser, error) {
	return s.endUserRepo.GetByID(ctx, id, clientID)
}

func (s *endUserService) List(ctx context.Context, clientID string) ([]enduser.EndUser, error) {
	users, err := s.endUserRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list end users: %w", err)
	}
	return users, nil
}
