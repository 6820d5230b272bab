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
	"github.com/shopspring/decimal"
)

const (
	defaultEstimatesTableName = "estimates"
	tokenIndexName            = "token-index"
)

type jobItem struct {
	ID         string `dynamodbav:"id"`
	Title      string `dynamodbav:"title"`
	IsOptional bool   `dynamodbav:"is_optional"`
	Status     string `dynamodbav:"status"`
	SortOrder  int    `dynamodbav:"sort_order"`
}

type lineItemItem struct {
	ID          string `dynamodbav:"id"`
	JobID       string `dynamodbav:"job_id"`
	ItemType    string `dynamodbav:"item_type"`
	Description string `dynamodbav:"description"`
	Qty         string `dynamodbav:"qty"`
	UnitPrice   string `dynamodbav:"unit_price"`
	Taxable     bool   `dynamodbav:"taxable"`
	LineTotal   string `dynamodbav:"line_total"`
	SortOrder   int    `dynamodbav:"sort_order"`
}

type estimateItem struct {
	ID          string `dynamodbav:"id"`
	EstimateNo  string `dynamodbav:"estimate_no"`
	CustomerID  string `dynamodbav:"customer_id"`
	Status      string `dynamodbav:"status"`
	Version     int    `dynamodbav:"version"`
	ApprovedAt  string `dynamodbav:"approved_at,omitempty"`
	SignatureID string `dynamodbav:"signature_id,omitempty"`

	Subtotal  string `dynamodbav:"subtotal"`
	TaxRate   string `dynamodbav:"tax_rate"`
	TaxAmount string `dynamodbav:"tax_amount"`
	Total     string `dynamodbav:"total"`

	CalloutFee   string `dynamodbav:"callout_fee"`
	MileageMiles string `dynamodbav:"mileage_miles"`
	MileageRate  string `dynamodbav:"mileage_rate"`
	MileageTotal string `dynamodbav:"mileage_total"`

	Notes     string `dynamodbav:"notes,omitempty"`
	ExpiresAt string `dynamodbav:"expires_at,omitempty"`
	Token     string `dynamodbav:"token"`

	Jobs  []jobItem      `dynamodbav:"jobs"`
	Items []lineItemItem `dynamodbav:"items"`

	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// EstimateDynamoRepository persists Estimate aggregates in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI "token-index": token (string)
//
// Jobs and line items are embedded in the estimate document, so a save swaps
// the whole child collection in one atomic PutItem. A crash mid-save can never
// leave an estimate with half its items.
type EstimateDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IEstimateRepository = (*EstimateDynamoRepository)(nil)

func NewEstimateDynamoRepository(ddb *dynamodb.Client) *EstimateDynamoRepository {
	return &EstimateDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("ESTIMATES_TABLE", defaultEstimatesTableName),
	}
}

func (r *EstimateDynamoRepository) Create(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	av, err := attributevalue.MarshalMap(toEstimateItem(e))
	if err != nil {
		return entities.Estimate{}, err
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
		return entities.Estimate{}, err
	}
	return e, nil
}

func (r *EstimateDynamoRepository) Replace(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	av, err := attributevalue.MarshalMap(toEstimateItem(e))
	if err != nil {
		return entities.Estimate{}, err
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
			return entities.Estimate{}, nil
		}
		return entities.Estimate{}, err
	}
	return e, nil
}

func (r *EstimateDynamoRepository) GetByID(ctx context.Context, id string) (entities.Estimate, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Estimate{}, err
	}
	if len(out.Item) == 0 {
		return entities.Estimate{}, nil
	}

	var it estimateItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Estimate{}, err
	}
	return fromEstimateItem(it), nil
}

func (r *EstimateDynamoRepository) GetByToken(ctx context.Context, token string) (entities.Estimate, error) {
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
		return entities.Estimate{}, err
	}
	if len(out.Items) == 0 {
		return entities.Estimate{}, nil
	}

	var it estimateItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Estimate{}, err
	}
	return fromEstimateItem(it), nil
}

func (r *EstimateDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.EstimateStatus) (entities.Estimate, error) {
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
			return entities.Estimate{}, nil
		}
		return entities.Estimate{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Estimate{}, nil
	}

	var it estimateItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Estimate{}, err
	}
	return fromEstimateItem(it), nil
}

func toEstimateItem(e entities.Estimate) estimateItem {
	jobs := make([]jobItem, len(e.Jobs))
	for i, j := range e.Jobs {
		jobs[i] = jobItem{
			ID:         j.ID,
			Title:      j.Title,
			IsOptional: j.IsOptional,
			Status:     string(j.Status),
			SortOrder:  j.SortOrder,
		}
	}
	items := make([]lineItemItem, len(e.Items))
	for i, li := range e.Items {
		items[i] = lineItemItem{
			ID:          li.ID,
			JobID:       li.JobID,
			ItemType:    string(li.ItemType),
			Description: li.Description,
			Qty:         li.Qty.String(),
			UnitPrice:   li.UnitPrice.String(),
			Taxable:     li.Taxable,
			LineTotal:   li.LineTotal.String(),
			SortOrder:   li.SortOrder,
		}
	}

	it := estimateItem{
		ID:           e.ID,
		EstimateNo:   e.EstimateNo,
		CustomerID:   e.CustomerID,
		Status:       string(e.Status),
		Version:      e.Version,
		SignatureID:  e.SignatureID,
		Subtotal:     e.Subtotal.String(),
		TaxRate:      e.TaxRate.String(),
		TaxAmount:    e.TaxAmount.String(),
		Total:        e.Total.String(),
		CalloutFee:   e.CalloutFee.String(),
		MileageMiles: e.MileageMiles.String(),
		MileageRate:  e.MileageRate.String(),
		MileageTotal: e.MileageTotal.String(),
		Notes:        e.Notes,
		ExpiresAt:    e.ExpiresAt,
		Token:        e.Token,
		Jobs:         jobs,
		Items:        items,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.ApprovedAt != nil {
		it.ApprovedAt = e.ApprovedAt.UTC().Format(time.RFC3339Nano)
	}
	return it
}

func fromEstimateItem(it estimateItem) entities.Estimate {
	jobs := make([]entities.Job, len(it.Jobs))
	for i, j := range it.Jobs {
		jobs[i] = entities.Job{
			ID:         j.ID,
			Title:      j.Title,
			IsOptional: j.IsOptional,
			Status:     entities.JobStatus(j.Status),
			SortOrder:  j.SortOrder,
		}
	}
	items := make([]entities.LineItem, len(it.Items))
	for i, li := range it.Items {
		items[i] = entities.LineItem{
			ID:          li.ID,
			JobID:       li.JobID,
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

	e := entities.Estimate{
		ID:           it.ID,
		EstimateNo:   it.EstimateNo,
		CustomerID:   it.CustomerID,
		Status:       entities.EstimateStatus(it.Status),
		Version:      it.Version,
		SignatureID:  it.SignatureID,
		Subtotal:     decimalFromString(it.Subtotal),
		TaxRate:      decimalFromString(it.TaxRate),
		TaxAmount:    decimalFromString(it.TaxAmount),
		Total:        decimalFromString(it.Total),
		CalloutFee:   decimalFromString(it.CalloutFee),
		MileageMiles: decimalFromString(it.MileageMiles),
		MileageRate:  decimalFromString(it.MileageRate),
		MileageTotal: decimalFromString(it.MileageTotal),
		Notes:        it.Notes,
		ExpiresAt:    it.ExpiresAt,
		Token:        it.Token,
		Jobs:         jobs,
		Items:        items,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	if it.ApprovedAt != "" {
		if approvedAt, err := time.Parse(time.RFC3339Nano, it.ApprovedAt); err == nil {
			e.ApprovedAt = &approvedAt
		}
	}
	return e
}

func decimalFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
