/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/entityfeed/config"
	"github.com/suparena/entityfeed/datastore"
	"github.com/suparena/entityfeed/datastore/mock"
)

const roster = `{"id":"p1","pk":"oakville","rating":1500}
{"id":"p2","pk":"oakville","rating":1620}

{"id":"p3","pk":"burlington","rating":1410}
`

// useMockStore routes every command to one in-memory store for the test.
func useMockStore(t *testing.T) *mock.DataStore[Document] {
	t.Helper()
	t.Setenv("ENTITYFEED_BACKEND", config.BackendRedis)
	t.Setenv("REDIS_ADDR", "localhost:6379")

	store := mock.New[Document]().WithGetKeyFunc(fieldString("id")).WithPageSize(2)
	prev := openStore
	openStore = func(context.Context, config.Config, string, zerolog.Logger) (datastore.DataStore[Document], error) {
		return store, nil
	}
	t.Cleanup(func() { openStore = prev })
	return store
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info["version"])
	assert.NotEmpty(t, info["goVersion"])
}

func TestLoad(t *testing.T) {
	store := useMockStore(t)

	out, err := run(t, roster, "load", "--chunk-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "upserted 3 items")

	data := store.GetData()
	assert.Len(t, data["oakville"], 2)
	assert.Len(t, data["burlington"], 1)
	assert.EqualValues(t, 1410, data["burlington"][0]["rating"])
}

func TestLoadMissingPartitionKey(t *testing.T) {
	store := useMockStore(t)

	_, err := run(t, `{"id":"p1"}`, "load", "--partition-key-field", "club")
	assert.ErrorContains(t, err, `missing partition key field "club"`)
	assert.Equal(t, 0, store.Puts())
}

func TestLoadInvalidConfig(t *testing.T) {
	t.Setenv("ENTITYFEED_BACKEND", "mongo")
	_, err := run(t, roster, "load")
	assert.ErrorContains(t, err, "unknown backend")
}

func TestDumpModes(t *testing.T) {
	for _, mode := range []string{"seq", "pooled", "chunked", "all", "drain"} {
		t.Run(mode, func(t *testing.T) {
			useMockStore(t)
			_, err := run(t, roster, "load")
			require.NoError(t, err)

			out, err := run(t, "", "dump", "--partition-key", "oakville", "--mode", mode, "--workers", "2", "--chunk-size", "2")
			require.NoError(t, err)

			var ids []string
			for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
				var doc Document
				require.NoError(t, json.Unmarshal([]byte(line), &doc))
				ids = append(ids, doc["id"].(string))
			}
			assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
			if mode != "pooled" && mode != "chunked" {
				assert.Equal(t, []string{"p1", "p2"}, ids)
			}
		})
	}
}

func TestDumpUnknownMode(t *testing.T) {
	useMockStore(t)
	_, err := run(t, "", "dump", "--mode", "parallel")
	assert.ErrorContains(t, err, `unknown mode "parallel"`)
}

func TestQueryParams(t *testing.T) {
	p := queryParams(config.BackendDynamoDB, "", "CLUB#1", "", 25)
	assert.Equal(t, "PK = :pk", p.KeyConditionExpression)
	assert.Contains(t, p.ExpressionAttributeValues, ":pk")
	assert.EqualValues(t, 25, p.PageSize)

	p = queryParams(config.BackendDynamoDB, "GSI1PK = :pk", "EMAIL#x", "", 0)
	assert.Equal(t, "GSI1PK = :pk", p.KeyConditionExpression)

	p = queryParams(config.BackendCosmos, "", "oakville", "", 0)
	assert.Equal(t, "SELECT * FROM c", p.Query)
	assert.Equal(t, "oakville", p.PartitionKey)

	p = queryParams(config.BackendRedis, "", "oakville", "p*", 0)
	assert.Equal(t, "p*", p.Match)
}

func TestReadDocuments(t *testing.T) {
	items, err := readDocuments(strings.NewReader(roster), "pk")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "burlington", items[2].PartitionKey)

	_, err = readDocuments(strings.NewReader("{not json}\n"), "pk")
	assert.ErrorContains(t, err, "line 1")
}
