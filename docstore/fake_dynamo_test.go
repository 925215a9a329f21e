package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory table understanding the handful of key
// conditions and update expressions Dynamo issues.
type fakeDynamo struct {
	mu           sync.Mutex
	items        map[string]map[string]types.AttributeValue
	pageSize     int
	beforeUpdate func()
}

func newFakeDynamo(pageSize int) *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]types.AttributeValue), pageSize: pageSize}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if s, ok := item[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(pk, sk string) string { return pk + "|" + sk }

func copyItem(in map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (f *fakeDynamo) item(pk, sk string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[itemKey(pk, sk)]
}

func (f *fakeDynamo) setAttr(pk, sk, name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[itemKey(pk, sk)][name] = &types.AttributeValueMemberS{Value: value}
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := itemKey(stringAttr(in.Item, "PK"), stringAttr(in.Item, "SK"))
	if in.ConditionExpression != nil && *in.ConditionExpression == "attribute_not_exists(PK)" {
		if _, ok := f.items[key]; ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	f.items[key] = copyItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemKey(stringAttr(in.Key, "PK"), stringAttr(in.Key, "SK"))]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pkAttr, skAttr := "PK", "SK"
	if in.IndexName != nil && *in.IndexName == gsi1 {
		pkAttr, skAttr = "GSI1PK", "GSI1SK"
	}
	pk := stringAttr(in.ExpressionAttributeValues, ":pk")
	prefix := stringAttr(in.ExpressionAttributeValues, ":prefix")

	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if stringAttr(item, pkAttr) == pk && strings.HasPrefix(stringAttr(item, skAttr), prefix) {
			matched = append(matched, item)
		}
	}
	forward := in.ScanIndexForward == nil || *in.ScanIndexForward
	sort.Slice(matched, func(i, j int) bool {
		a, b := stringAttr(matched[i], skAttr), stringAttr(matched[j], skAttr)
		if forward {
			return a < b
		}
		return a > b
	})

	if start := in.ExclusiveStartKey; len(start) > 0 {
		last := itemKey(stringAttr(start, "PK"), stringAttr(start, "SK"))
		for i, item := range matched {
			if itemKey(stringAttr(item, "PK"), stringAttr(item, "SK")) == last {
				matched = matched[i+1:]
				break
			}
		}
	}

	out := &dynamodb.QueryOutput{}
	if f.pageSize > 0 && len(matched) > f.pageSize {
		matched = matched[:f.pageSize]
		last := matched[len(matched)-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": last["PK"], "SK": last["SK"]}
	}
	for _, item := range matched {
		out.Items = append(out.Items, copyItem(item))
	}
	return out, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[itemKey(stringAttr(in.Key, "PK"), stringAttr(in.Key, "SK"))]
	if !ok {
		return nil, &types.ConditionalCheckFailedException{}
	}
	values := in.ExpressionAttributeValues
	if from, ok := values[":from"]; ok {
		if stringAttr(item, "status") != from.(*types.AttributeValueMemberS).Value {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if v, ok := values[":status"]; ok {
		item["status"] = v
	}
	if v, ok := values[":sent"]; ok {
		item["whatsappSent"] = v
		item["whatsappSentAt"] = values[":at"]
	}
	if v, ok := values[":at"]; ok {
		item["updatedAt"] = v
	}
	return &dynamodb.UpdateItemOutput{}, nil
}
