package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/duetap/duetap-backend-go/internal/domain/template"
)

type templateService struct {
	templateRepo template.Repository
}

func NewTemplateService(templateRepo template.Repository) template.Service {
	return &templateService{templateRepo: templateRepo}
}

func (s *templateService) Create(ctx context.Context, clientID string, req template.CreateRequest) (template.Template, error) {
	if err := req.Validate(); err != nil {
		return template.Template{}, err
	}

	tmpl := template.Template{
		ID:                 uuid.New().String(),
		ClientID:           clientID,
		Name:               req.Name,
		Title:              req.Title,
		Body:               req.Body,
		RecurringDuration:  req.RecurringDuration,
		DurationUnit:       req.DurationUnit,
		NotificationMethod: req.NotificationMethod,
		PaymentMethod:      req.PaymentMethod,
		DefaultAmount:      req.DefaultAmount,
		IsActive:           true,
	}

	created, err := s.templateRepo.Create(ctx, tmpl)
	if err != nil {
		return template.Template{}, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

func (s *templateService) Get(ctx context.Context, clientID, id string) (template.Template, error) {
	return s.templateRepo.GetByID(ctx, id, clientID)
}

func (s *templateService) List(ctx context.Context, clientID string) ([]template.Template, error) {
	templates, err := s.templateRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

func (s *templateService) SetActive(ctx context.Context, clientID, id string, active bool) error {
	tmpl, err := s.templateRepo.GetByID(ctx, id, clientID)
	if err != nil {
		return err
	}
	if tmpl.IsActive == active {
		return nil
	}

	// Deactivating a template under active subscriptions would orphan their
	// schedules.
	if !active {
		inUse, err := s.templateRepo.HasActiveSubscriptions(ctx, id)
		if err != nil {
			return fmt.Errorf("check template usage: %w", err)
		}
		if inUse {
			return template.ErrTemplateInUse
		}
	}

	return s.templateRepo.SetActive(ctx, id, clientID, active)
}
