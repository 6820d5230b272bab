package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"arm_backoffice/internal/domain/entities"
	"arm_backoffice/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultCustomersTableName = "customers"
	customerSearchLimit       = 20
)

type customerItem struct {
	ID        string `dynamodbav:"id"`
	FirstName string `dynamodbav:"first_name"`
	LastName  string `dynamodbav:"last_name"`
	Email     string `dynamodbav:"email,omitempty"`
	Phone     string `dynamodbav:"phone,omitempty"`
	Address   string `dynamodbav:"address,omitempty"`
	City      string `dynamodbav:"city,omitempty"`
	Zip       string `dynamodbav:"zip,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// CustomerDynamoRepository persists Customer rows in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Search scans with a contains filter over name/email/phone. The customer
// table is small (one row per shop customer) so a filtered scan stays cheap;
// revisit if the shop ever holds tens of thousands of customers.
type CustomerDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.ICustomerRepository = (*CustomerDynamoRepository)(nil)

func NewCustomerDynamoRepository(ddb *dynamodb.Client) *CustomerDynamoRepository {
	return &CustomerDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("CUSTOMERS_TABLE", defaultCustomersTableName),
	}
}

func (r *CustomerDynamoRepository) Create(ctx context.Context, c entities.Customer) (entities.Customer, error) {
	av, err := attributevalue.MarshalMap(toCustomerItem(c))
	if err != nil {
		return entities.Customer{}, err
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
		return entities.Customer{}, err
	}
	return c, nil
}

func (r *CustomerDynamoRepository) Update(ctx context.Context, c entities.Customer) (entities.Customer, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: c.ID},
		},
		ConditionExpression: aws.String("attribute_exists(#id)"),
		UpdateExpression: aws.String("SET #first_name = :first_name, #last_name = :last_name, #email = :email, " +
			"#phone = :phone, #address = :address, #city = :city, #zip = :zip, #updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":first_name": &types.AttributeValueMemberS{Value: c.FirstName},
			":last_name":  &types.AttributeValueMemberS{Value: c.LastName},
			":email":      &types.AttributeValueMemberS{Value: c.Email},
			":phone":      &types.AttributeValueMemberS{Value: c.Phone},
			":address":    &types.AttributeValueMemberS{Value: c.Address},
			":city":       &types.AttributeValueMemberS{Value: c.City},
			":zip":        &types.AttributeValueMemberS{Value: c.Zip},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		},
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#first_name": "first_name",
			"#last_name":  "last_name",
			"#email":      "email",
			"#phone":      "phone",
			"#address":    "address",
			"#city":       "city",
			"#zip":        "zip",
			"#updated_at": "updated_at",
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Customer{}, nil
		}
		return entities.Customer{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Customer{}, nil
	}

	var it customerItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Customer{}, err
	}
	return fromCustomerItem(it), nil
}

func (r *CustomerDynamoRepository) GetByID(ctx context.Context, id string) (entities.Customer, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Customer{}, err
	}
	if len(out.Item) == 0 {
		return entities.Customer{}, nil
	}

	var it customerItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Customer{}, err
	}
	return fromCustomerItem(it), nil
}

func (r *CustomerDynamoRepository) Search(ctx context.Context, query string) ([]entities.Customer, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []entities.Customer{}, nil
	}

	// DynamoDB contains() is case-sensitive, so match client-side on the
	// scanned page instead of filtering server-side.
	results := make([]entities.Customer, 0, customerSearchLimit)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}

		for _, raw := range out.Items {
			var it customerItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			if customerMatches(it, q) {
				results = append(results, fromCustomerItem(it))
				if len(results) == customerSearchLimit {
					sortCustomers(results)
					return results, nil
				}
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sortCustomers(results)
	return results, nil
}

func customerMatches(it customerItem, q string) bool {
	fields := []string{
		it.FirstName + " " + it.LastName,
		it.Email,
		it.Phone,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func sortCustomers(cs []entities.Customer) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].LastName != cs[j].LastName {
			return cs[i].LastName < cs[j].LastName
		}
		return cs[i].FirstName < cs[j].FirstName
	})
}

func toCustomerItem(c entities.Customer) customerItem {
	return customerItem{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		City:      c.City,
		Zip:       c.Zip,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromCustomerItem(it customerItem) entities.Customer {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Customer{
		ID:        it.ID,
		FirstName: it.FirstName,
		LastName:  it.LastName,
		Email:     it.Email,
		Phone:     it.Phone,
		Address:   it.Address,
		City:      it.City,
		Zip:       it.Zip,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
