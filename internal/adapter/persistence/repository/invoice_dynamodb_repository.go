package repository

import (
	"context"
	"errors"
	"time"

	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultInvoicesTableName = "invoices"

type invoiceItemItem struct {
	ItemType    string `dynamodbav:"item_type"`
	Description string `dynamodbav:"description"`
	Qty         string `dynamodbav:"qty"`
	UnitPrice   string `dynamodbav:"unit_price"`
	Taxable     bool   `dynamodbav:"taxable"`
	LineTotal   string `dynamodbav:"line_total"`
	SortOrder   int    `dynamodbav:"sort_order"`
}

type invoiceItem struct {
	ID         string `dynamodbav:"id"`
	EstimateID string `dynamodbav:"estimate_id,omitempty"`
	CustomerID string `dynamodbav:"customer_id"`
	InvoiceNo  string `dynamodbav:"invoice_no"`
	Status     string `dynamodbav:"status"`

	Subtotal  string `dynamodbav:"subtotal"`
	TaxRate   string `dynamodbav:"tax_rate"`
	TaxAmount string `dynamodbav:"tax_amount"`
	Total     string `dynamodbav:"total"`

	Notes string `dynamodbav:"notes,omitempty"`
	Token string `dynamodbav:"token"`

	Items []invoiceItemItem `dynamodbav:"items"`

	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// InvoiceDynamoRepository persists Invoice documents in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI "token-index": token (string)
type InvoiceDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IInvoiceRepository = (*InvoiceDynamoRepository)(nil)

func NewInvoiceDynamoRepository(ddb *dynamodb.Client) *InvoiceDynamoRepository {
	return &InvoiceDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("INVOICES_TABLE", defaultInvoicesTableName),
	}
}

func (r *InvoiceDynamoRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	av, err := attributevalue.MarshalMap(toInvoiceItem(inv))
	if err != nil {
		return entities.Invoice{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceDynamoRepository) Replace(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	av, err := attributevalue.MarshalMap(toInvoiceItem(inv))
	if err != nil {
		return entities.Invoice{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Invoice{}, nil
		}
		return entities.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceDynamoRepository) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	if len(out.Item) == 0 {
		return entities.Invoice{}, nil
	}

	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func (r *InvoiceDynamoRepository) GetByToken(ctx context.Context, token string) (entities.Invoice, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(tokenIndexName),
		KeyConditionExpression: aws.String("#token = :token"),
		ExpressionAttributeNames: map[string]string{
			"#token": "token",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: token},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	if len(out.Items) == 0 {
		return entities.Invoice{}, nil
	}

	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func (r *InvoiceDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.InvoiceStatus) (entities.Invoice, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(#id)"),
		UpdateExpression:    aws.String("SET #status = :status, #updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		},
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Invoice{}, nil
		}
		return entities.Invoice{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Invoice{}, nil
	}

	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func toInvoiceItem(inv entities.Invoice) invoiceItem {
	items := make([]invoiceItemItem, len(inv.Items))
	for i, li := range inv.Items {
		items[i] = invoiceItemItem{
			ItemType:    string(li.ItemType),
			Description: li.Description,
			Qty:         li.Qty.String(),
			UnitPrice:   li.UnitPrice.String(),
			Taxable:     li.Taxable,
			LineTotal:   li.LineTotal.String(),
			SortOrder:   li.SortOrder,
		}
	}

	return invoiceItem{
		ID:         inv.ID,
		EstimateID: inv.EstimateID,
		CustomerID: inv.CustomerID,
		InvoiceNo:  inv.InvoiceNo,
		Status:     string(inv.Status),
		Subtotal:   inv.Subtotal.String(),
		TaxRate:    inv.TaxRate.String(),
		TaxAmount:  inv.TaxAmount.String(),
		Total:      inv.Total.String(),
		Notes:      inv.Notes,
		Token:      inv.Token,
		Items:      items,
		CreatedAt:  inv.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  inv.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromInvoiceItem(it invoiceItem) entities.Invoice {
	items := make([]entities.InvoiceItem, len(it.Items))
	for i, li := range it.Items {
		items[i] = entities.InvoiceItem{
			ItemType:    entities.ItemType(li.ItemType),
			Description: li.Description,
			Qty:         decimalFromString(li.Qty),
			UnitPrice:   decimalFromString(li.UnitPrice),
			Taxable:     li.Taxable,
			LineTotal:   decimalFromString(li.LineTotal),
			SortOrder:   li.SortOrder,
		}
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)

	return entities.Invoice{
		ID:         it.ID,
		EstimateID: it.EstimateID,
		CustomerID: it.CustomerID,
		InvoiceNo:  it.InvoiceNo,
		Status:     entities.InvoiceStatus(it.Status),
		Subtotal:   decimalFromString(it.Subtotal),
		TaxRate:    decimalFromString(it.TaxRate),
		TaxAmount:  decimalFromString(it.TaxAmount),
		Total:      decimalFromString(it.Total),
		Notes:      it.Notes,
		Token:      it.Token,
		Items:      items,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}
