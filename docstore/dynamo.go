package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/storefront"
)

// Single-table key layout.
const (
	catalogPK    = "CATALOG"
	orderSK      = "METADATA"
	gsi1         = "GSI1"
	prefixProd   = "PRODUCT#"
	prefixCat    = "CATEGORY#"
	prefixColor  = "COLOR#"
	prefixSize   = "SIZE#"
	settingsSK   = "SETTINGS"
	orderPKFmt   = "ORDER#%s"
	userPKFmt    = "USER#%s"
	createdAtFmt = "2006-01-02T15:04:05.000000000Z"
)

// DynamoAPI is the subset of *dynamodb.Client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// NewDynamoDBClient creates a client for region. A non-empty endpoint
// overrides the service URL, for DynamoDB Local.
func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Dynamo is a document store on a single DynamoDB table with a GSI1 index
// over (GSI1PK, GSI1SK). It satisfies catalog.Source and order.Repository.
type Dynamo struct {
	client DynamoAPI
	table  string
	newID  func() string
}

// NewDynamo creates a store on table.
func NewDynamo(client DynamoAPI, table string) *Dynamo {
	return &Dynamo{client: client, table: table, newID: storefront.NewOrderID}
}

type colorItem struct {
	FlowerType string              `dynamodbav:"flowerType"`
	Color      catalog.FlowerColor `dynamodbav:"color"`
}

type sizeItem struct {
	FlowerType string           `dynamodbav:"flowerType"`
	Size       catalog.StemSize `dynamodbav:"size"`
}

func keyOf(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

func seqKey(prefix, flowerType string, seq int) string {
	return fmt.Sprintf("%s%s#%04d", prefix, flowerType, seq)
}

func (d *Dynamo) put(ctx context.Context, pk, sk string, v interface{}) error {
	av, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	av["PK"] = &types.AttributeValueMemberS{Value: pk}
	av["SK"] = &types.AttributeValueMemberS{Value: sk}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// Seed writes every catalog document from src.
func (d *Dynamo) Seed(ctx context.Context, src catalog.Source) error {
	products, err := src.Products(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := d.PutProduct(ctx, p); err != nil {
			return err
		}
	}
	categories, err := src.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if err := d.put(ctx, catalogPK, prefixCat+c.ID, c); err != nil {
			return err
		}
	}
	colors, err := src.AllColors(ctx)
	if err != nil {
		return err
	}
	for flowerType, list := range colors {
		for i, c := range list {
			if err := d.put(ctx, catalogPK, seqKey(prefixColor, flowerType, i), colorItem{FlowerType: flowerType, Color: c}); err != nil {
				return err
			}
		}
	}
	sizes, err := src.StemSizes(ctx)
	if err != nil {
		return err
	}
	for flowerType, list := range sizes {
		for i, s := range list {
			if err := d.put(ctx, catalogPK, seqKey(prefixSize, flowerType, i), sizeItem{FlowerType: flowerType, Size: s}); err != nil {
				return err
			}
		}
	}
	settings, err := src.Settings(ctx)
	if err != nil {
		return err
	}
	if settings != nil {
		return d.put(ctx, catalogPK, settingsSK, settings)
	}
	return nil
}

// PutProduct inserts or replaces one product.
func (d *Dynamo) PutProduct(ctx context.Context, p catalog.Product) error {
	return d.put(ctx, catalogPK, prefixProd+p.ID, p)
}

// queryPrefix reads every item under pk whose sort key starts with prefix,
// following pagination.
func (d *Dynamo) queryPrefix(ctx context.Context, pk, prefix string) ([]map[string]types.AttributeValue, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
	}
	return d.queryAll(ctx, in)
}

func (d *Dynamo) queryAll(ctx context.Context, in *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		out, err := d.client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("failed to query: %w", err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (d *Dynamo) Products(ctx context.Context) ([]catalog.Product, error) {
	items, err := d.queryPrefix(ctx, catalogPK, prefixProd)
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *Dynamo) Categories(ctx context.Context) ([]catalog.Category, error) {
	items, err := d.queryPrefix(ctx, catalogPK, prefixCat)
	if err != nil {
		return nil, err
	}
	var out []catalog.Category
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (d *Dynamo) Colors(ctx context.Context, flowerType string) ([]catalog.FlowerColor, error) {
	items, err := d.queryPrefix(ctx, catalogPK, prefixColor+flowerType+"#")
	if err != nil {
		return nil, err
	}
	var recs []colorItem
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, err
	}
	out := make([]catalog.FlowerColor, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Color)
	}
	return out, nil
}

func (d *Dynamo) AllColors(ctx context.Context) (map[string][]catalog.FlowerColor, error) {
	items, err := d.queryPrefix(ctx, catalogPK, prefixColor)
	if err != nil {
		return nil, err
	}
	var recs []colorItem
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, err
	}
	out := make(map[string][]catalog.FlowerColor)
	for _, r := range recs {
		out[r.FlowerType] = append(out[r.FlowerType], r.Color)
	}
	return out, nil
}

func (d *Dynamo) StemSizes(ctx context.Context) (map[string][]catalog.StemSize, error) {
	items, err := d.queryPrefix(ctx, catalogPK, prefixSize)
	if err != nil {
		return nil, err
	}
	var recs []sizeItem
	if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
		return nil, err
	}
	out := make(map[string][]catalog.StemSize)
	for _, r := range recs {
		out[r.FlowerType] = append(out[r.FlowerType], r.Size)
	}
	return out, nil
}

func (d *Dynamo) Settings(ctx context.Context) (*catalog.Settings, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.table),
		Key:       keyOf(catalogPK, settingsSK),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var s catalog.Settings
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create stores a new order under a generated id.
func (d *Dynamo) Create(ctx context.Context, o order.Order) (string, error) {
	o.ID = d.newID()
	av, err := attributevalue.MarshalMap(o)
	if err != nil {
		return "", fmt.Errorf("failed to marshal order: %w", err)
	}
	av["PK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf(orderPKFmt, o.ID)}
	av["SK"] = &types.AttributeValueMemberS{Value: orderSK}
	av["GSI1PK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf(userPKFmt, o.UserID)}
	av["GSI1SK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf(orderPKFmt, o.CreatedAt.UTC().Format(createdAtFmt))}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put order: %w", err)
	}
	return o.ID, nil
}

func (d *Dynamo) Get(ctx context.Context, id string) (order.Order, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            keyOf(fmt.Sprintf(orderPKFmt, id), orderSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	if len(out.Item) == 0 {
		return order.Order{}, storefront.NewNotFound(order.ErrMsgOrderNotFound)
	}
	var o order.Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (d *Dynamo) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	items, err := d.queryAll(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		IndexName:              aws.String(gsi1),
		KeyConditionExpression: aws.String("GSI1PK = :pk AND begins_with(GSI1SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: fmt.Sprintf(userPKFmt, userID)},
			":prefix": &types.AttributeValueMemberS{Value: "ORDER#"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var out []order.Order
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus applies a status change guarded on the status it was
// validated against, so concurrent staff edits cannot skip a transition.
func (d *Dynamo) UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) error {
	current, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := order.CheckTransition(current.Status, status); err != nil {
		return err
	}
	atAV, err := attributevalue.Marshal(at)
	if err != nil {
		return err
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(d.table),
		Key:                 keyOf(fmt.Sprintf(orderPKFmt, id), orderSK),
		UpdateExpression:    aws.String("SET #status = :status, updatedAt = :at"),
		ConditionExpression: aws.String("#status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(status)},
			":from":   &types.AttributeValueMemberS{Value: string(current.Status)},
			":at":     atAV,
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return storefront.NewFailedPreconditionf("%s: status changed concurrently", order.ErrMsgStatusTransition)
	}
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

func (d *Dynamo) MarkMessageSent(ctx context.Context, id string, at time.Time) error {
	atAV, err := attributevalue.Marshal(at)
	if err != nil {
		return err
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(d.table),
		Key:                 keyOf(fmt.Sprintf(orderPKFmt, id), orderSK),
		UpdateExpression:    aws.String("SET whatsappSent = :sent, whatsappSentAt = :at, updatedAt = :at"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sent": &types.AttributeValueMemberBOOL{Value: true},
			":at":   atAV,
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return storefront.NewNotFound(order.ErrMsgOrderNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark order message sent: %w", err)
	}
	return nil
}

var (
	_ catalog.Source   = (*Dynamo)(nil)
	_ order.Repository = (*Dynamo)(nil)
)
