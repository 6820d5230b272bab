package interfaces

import (
	"context"

	"arm_backoffice/internal/domain/entities"
)

// IEstimateRepository abstracts DynamoDB persistence for Estimate aggregates.
//
// Jobs and line items travel inside the estimate document, so Create/Replace
// swap the whole child collection atomically. Repositories return a zero-value
// entity (ID == "") for "not found"; use cases translate that into domain
// errors.
type IEstimateRepository interface {
	Create(ctx context.Context, e entities.Estimate) (entities.Estimate, error)
	Replace(ctx context.Context, e entities.Estimate) (entities.Estimate, error)
	GetByID(ctx context.Context, id string) (entities.Estimate, error)
	GetByToken(ctx context.Context, token string) (entities.Estimate, error)
	UpdateStatus(ctx context.Context, id string, status entities.EstimateStatus) (entities.Estimate, error)
}
