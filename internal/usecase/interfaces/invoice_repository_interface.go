package interfaces

import (
	"context"

	"arm_backoffice/internal/domain/entities"
)

// IInvoiceRepository abstracts DynamoDB persistence for Invoice documents.
type IInvoiceRepository interface {
	Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error)
	Replace(ctx context.Context, inv entities.Invoice) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	GetByToken(ctx context.Context, token string) (entities.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status entities.InvoiceStatus) (entities.Invoice, error)
}
