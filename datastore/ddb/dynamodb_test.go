/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityfeed/bulk"
	"github.com/suparena/entityfeed/datastore"
	"github.com/suparena/entityfeed/datastore/testmodels"
	"github.com/suparena/entityfeed/errors"
	"github.com/suparena/entityfeed/feed"
	"github.com/suparena/entityfeed/registry"
	"github.com/suparena/entityfeed/storagemodels"
)

type Match struct {
	ClubID string
	ID     string
	Winner string
}

var _ datastore.DataStore[Match] = (*DynamodbDataStore[Match])(nil)

func init() {
	registry.RegisterIndexMap[testmodels.RatingSystem](map[string]string{
		"PK": "RS#{ID}",
		"SK": "RS#{ID}",
	})
}

// fakeClient serves canned query pages and records every call.
type fakeClient struct {
	mu      sync.Mutex
	pages   []*sdk.QueryOutput
	queries []sdk.QueryInput
	puts    []*sdk.PutItemInput
	putErr  func(item map[string]types.AttributeValue) error
}

func (f *fakeClient) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, *in)
	n := len(f.queries) - 1
	if n >= len(f.pages) {
		return nil, fmt.Errorf("unexpected query call %d", n+1)
	}
	return f.pages[n], nil
}

func (f *fakeClient) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	f.puts = append(f.puts, in)
	f.mu.Unlock()
	if f.putErr != nil {
		if err := f.putErr(in.Item); err != nil {
			return nil, err
		}
	}
	return &sdk.PutItemOutput{
		ConsumedCapacity: &types.ConsumedCapacity{CapacityUnits: aws.Float64(1)},
	}, nil
}

func matchPage(t *testing.T, last string, matches ...Match) *sdk.QueryOutput {
	t.Helper()
	out := &sdk.QueryOutput{}
	for _, m := range matches {
		av, err := attributevalue.MarshalMap(m)
		require.NoError(t, err)
		av[registry.EntityTypeAttribute] = &types.AttributeValueMemberS{Value: "Match"}
		out.Items = append(out.Items, av)
	}
	if last != "" {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: last},
		}
	}
	return out
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("IndexMapAndPartitionKey", func(t *testing.T) {
		client := &fakeClient{}
		store := New[testmodels.RatingSystem](client, "ratings")

		ct := strfmt.DateTime(time.Now())
		rs := testmodels.RatingSystem{
			ID:          aws.String("TTOakville"),
			Name:        aws.String("Oakville Table Tennis Ranking System (test)"),
			Description: aws.String("This is a test rating system for Oakville Table Tennis Club"),
			CreatedAt:   &ct,
			UpdatedAt:   &ct,
		}

		res, err := store.Upsert(ctx, rs, "", nil)
		require.NoError(t, err)
		assert.Equal(t, 1.0, res.RequestCharge)

		require.Len(t, client.puts, 1)
		item := client.puts[0].Item
		assert.Equal(t, "RS#TTOakville", item["PK"].(*types.AttributeValueMemberS).Value)
		assert.Equal(t, "RS#TTOakville", item["SK"].(*types.AttributeValueMemberS).Value)
		assert.Equal(t, "RatingSystem", item[registry.EntityTypeAttribute].(*types.AttributeValueMemberS).Value)
		assert.Equal(t, "ratings", *client.puts[0].TableName)

		// An explicit partition key overrides the index map
		_, err = store.Upsert(ctx, rs, "CLUB#oakville", nil)
		require.NoError(t, err)
		assert.Equal(t, "CLUB#oakville", client.puts[1].Item["PK"].(*types.AttributeValueMemberS).Value)
	})

	t.Run("CustomPartitionAttribute", func(t *testing.T) {
		client := &fakeClient{}
		store := New[Match](client, "matches", WithPartitionAttribute("ClubPK"))

		_, err := store.Upsert(ctx, Match{ClubID: "c1", ID: "m1"}, "CLUB#c1", nil)
		require.NoError(t, err)
		assert.Equal(t, "CLUB#c1", client.puts[0].Item["ClubPK"].(*types.AttributeValueMemberS).Value)
	})

	t.Run("MissingPartitionKey", func(t *testing.T) {
		client := &fakeClient{}
		store := New[Match](client, "matches")

		_, err := store.Upsert(ctx, Match{ID: "m1"}, "", nil)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, client.puts)
	})

	t.Run("ConditionFailed", func(t *testing.T) {
		client := &fakeClient{putErr: func(map[string]types.AttributeValue) error {
			return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
		}}
		store := New[Match](client, "matches")

		_, err := store.Upsert(ctx, Match{ID: "m1"}, "CLUB#c1", &storagemodels.WriteOptions{
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		})
		assert.True(t, errors.IsConditionFailed(err))
		assert.Equal(t, "attribute_not_exists(PK)", *client.puts[0].ConditionExpression)
	})

	t.Run("BulkThroughStore", func(t *testing.T) {
		client := &fakeClient{putErr: func(item map[string]types.AttributeValue) error {
			if item["ID"].(*types.AttributeValueMemberS).Value == "m4" {
				return fmt.Errorf("ProvisionedThroughputExceeded")
			}
			return nil
		}}
		store := New[Match](client, "matches")

		var matches []Match
		for i := 1; i <= 5; i++ {
			matches = append(matches, Match{ClubID: "c1", ID: fmt.Sprintf("m%d", i)})
		}

		_, err := bulk.UpsertItems(ctx, store, matches, "CLUB#c1")
		assert.True(t, errors.IsWriteFailed(err))
		assert.Len(t, client.puts, 5, "every write of the chunk is issued")
	})
}

func TestQueryPager(t *testing.T) {
	ctx := context.Background()

	t.Run("PagesUntilNoLastKey", func(t *testing.T) {
		client := &fakeClient{pages: []*sdk.QueryOutput{
			matchPage(t, "k1", Match{ID: "1"}, Match{ID: "2"}, Match{ID: "3"}),
			matchPage(t, "k2", Match{ID: "4"}, Match{ID: "5"}),
			matchPage(t, ""),
		}}
		store := New[Match](client, "matches")

		pager, err := store.Query(&storagemodels.QueryParams{
			KeyConditionExpression: "PK = :pk",
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: "CLUB#c1"},
			},
			PageSize: 3,
		})
		require.NoError(t, err)

		items, err := feed.ReadAll(ctx, pager)
		require.NoError(t, err)

		var ids []string
		for _, m := range items {
			ids = append(ids, m.ID)
		}
		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)

		require.Len(t, client.queries, 3)
		assert.Nil(t, client.queries[0].ExclusiveStartKey)
		assert.Equal(t, "k1", client.queries[1].ExclusiveStartKey["PK"].(*types.AttributeValueMemberS).Value)
		assert.Equal(t, "k2", client.queries[2].ExclusiveStartKey["PK"].(*types.AttributeValueMemberS).Value)
		assert.EqualValues(t, 3, *client.queries[0].Limit)
		assert.Equal(t, "matches", *client.queries[0].TableName)
	})

	t.Run("ResumeFromLastEvaluatedKey", func(t *testing.T) {
		client := &fakeClient{pages: []*sdk.QueryOutput{
			matchPage(t, "k1", Match{ID: "1"}),
			matchPage(t, "", Match{ID: "2"}),
		}}
		store := New[Match](client, "matches")
		params := &storagemodels.QueryParams{KeyConditionExpression: "PK = :pk"}

		pager, err := store.NewQueryPager(params)
		require.NoError(t, err)
		_, err = pager.NextPage(ctx)
		require.NoError(t, err)
		require.True(t, pager.More())

		params.ExclusiveStartKey = pager.LastEvaluatedKey()
		resumed, err := store.NewQueryPager(params)
		require.NoError(t, err)
		rest, err := feed.ReadAll(ctx, resumed)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, "2", rest[0].ID)
		assert.Equal(t, "k1", client.queries[1].ExclusiveStartKey["PK"].(*types.AttributeValueMemberS).Value)
		assert.Nil(t, resumed.LastEvaluatedKey())
	})

	t.Run("ChunkedTraversal", func(t *testing.T) {
		client := &fakeClient{pages: []*sdk.QueryOutput{
			matchPage(t, "k1", Match{ID: "1", Winner: "a"}, Match{ID: "2", Winner: "b"}, Match{ID: "3", Winner: "a"}),
			matchPage(t, "", Match{ID: "4", Winner: "a"}),
		}}
		store := New[Match](client, "matches")
		pager, err := store.Query(&storagemodels.QueryParams{KeyConditionExpression: "PK = :pk"})
		require.NoError(t, err)

		var mu sync.Mutex
		wins := map[string]int{}
		err = feed.ForEachChunked(ctx, pager, func(_ context.Context, m Match) error {
			mu.Lock()
			defer mu.Unlock()
			wins[m.Winner]++
			return nil
		}, feed.WithChunkSize(2))
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 3, "b": 1}, wins)
	})

	t.Run("FetchFailure", func(t *testing.T) {
		client := &fakeClient{}
		store := New[Match](client, "matches")
		pager, err := store.Query(&storagemodels.QueryParams{KeyConditionExpression: "PK = :pk"})
		require.NoError(t, err)

		_, err = feed.ReadAll(ctx, pager)
		assert.True(t, errors.IsFetchFailed(err))
	})

	t.Run("KeyConditionRequired", func(t *testing.T) {
		store := New[Match](&fakeClient{}, "matches")
		_, err := store.Query(&storagemodels.QueryParams{})
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestDecodeItem(t *testing.T) {
	raw := map[string]types.AttributeValue{
		"ID":                         &types.AttributeValueMemberS{Value: "e1"},
		"Email":                      &types.AttributeValueMemberS{Value: "x@y.z"},
		registry.EntityTypeAttribute: &types.AttributeValueMemberS{Value: "GSITestEntity"},
	}

	asMap, err := decodeItem[map[string]any](raw)
	require.NoError(t, err)
	assert.Equal(t, "e1", asMap["ID"])
	assert.NotContains(t, asMap, registry.EntityTypeAttribute)

	typed, err := decodeItem[GSITestEntity](raw)
	require.NoError(t, err)
	assert.Equal(t, "x@y.z", typed.Email)
}

func TestNewDynamodbDataStore(t *testing.T) {
	store, err := NewDynamodbDataStore[Match](context.Background(), Config{
		AccessKey: "test",
		SecretKey: "test",
		Region:    "us-east-1",
		TableName: "matches",
		Endpoint:  "http://localhost:8000",
	})
	require.NoError(t, err)
	assert.Equal(t, "matches", store.TableName())
}
