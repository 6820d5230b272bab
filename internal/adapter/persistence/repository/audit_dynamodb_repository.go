package repository

import (
	"context"
	"encoding/json"
	"time"

	"arm_backoffice/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
)

const defaultAuditTableName = "audit_log"

type auditItem struct {
	ID        string `dynamodbav:"id"`
	Entity    string `dynamodbav:"entity"`
	EntityID  string `dynamodbav:"entity_id"`
	Action    string `dynamodbav:"action"`
	Actor     string `dynamodbav:"actor"`
	Meta      string `dynamodbav:"meta,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
}

// AuditDynamoRepository appends business events to an append-only DynamoDB
// table. Meta is stored as a JSON string so events with different shapes share
// one table.
type AuditDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IAuditSink = (*AuditDynamoRepository)(nil)

func NewAuditDynamoRepository(ddb *dynamodb.Client) *AuditDynamoRepository {
	return &AuditDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("AUDIT_TABLE", defaultAuditTableName),
	}
}

func (r *AuditDynamoRepository) Record(ctx context.Context, entity, entityID, action, actor string, meta map[string]any) error {
	it := auditItem{
		ID:        uuid.NewString(),
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Actor:     actor,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		it.Meta = string(raw)
	}

	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}
