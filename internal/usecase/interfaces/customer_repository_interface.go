package interfaces

import (
	"context"

	"arm_backoffice/internal/domain/entities"
)

// ICustomerRepository abstracts DynamoDB persistence for Customer rows.
//
// Search is a contains-match over name/email/phone used by the estimate
// builder's customer picker.
type ICustomerRepository interface {
	Create(ctx context.Context, c entities.Customer) (entities.Customer, error)
	Update(ctx context.Context, c entities.Customer) (entities.Customer, error)
	GetByID(ctx context.Context, id string) (entities.Customer, error)
	Search(ctx context.Context, query string) ([]entities.Customer, error)
}
