package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
)

// countingRows records every call and answers with canned rows.
type countingRows struct {
	calls     int
	rows      []Row
	err       error
	lastBody  any
	returning Returning
}

func (c *countingRows) Select(context.Context, string, *SelectParams, ...RequestOption) ([]Row, error) {
	c.calls++
	return c.rows, c.err
}

func (c *countingRows) SelectOne(context.Context, string, *SelectParams, ...RequestOption) (Row, error) {
	c.calls++
	if c.err != nil || len(c.rows) == 0 {
		return nil, c.err
	}
	return c.rows[0], nil
}

func (c *countingRows) Insert(_ context.Context, _ string, item any, returning Returning, _ ...RequestOption) (*InsertResult, error) {
	c.calls++
	c.lastBody = item
	c.returning = returning
	if c.err != nil {
		return nil, c.err
	}
	if returning == ReturnRepresentation {
		return &InsertResult{Rows: c.rows}, nil
	}
	return &InsertResult{}, nil
}

func (c *countingRows) Update(_ context.Context, _ string, patch any, _ []filter.Member, _ Returning, _ ...RequestOption) ([]Row, error) {
	c.calls++
	c.lastBody = patch
	return c.rows, c.err
}

func (c *countingRows) Delete(context.Context, string, []filter.Member, ...RequestOption) error {
	c.calls++
	return c.err
}

var (
	ownerSchema = model.MustNewSchema("owners",
		model.Field{Name: "id", Type: model.Primitive{Kind: model.KindUUID}},
		model.Field{Name: "name", Type: model.Primitive{Kind: model.KindString}},
	)
	petSchema = model.MustNewSchema("pets",
		model.Field{Name: "id", Type: model.Primitive{Kind: model.KindInt}},
		model.Field{Name: "name", Type: model.Primitive{Kind: model.KindString}},
		model.Field{Name: "kind", Type: model.Enum{Name: "kind", Values: []string{"cat", "dog"}}},
		model.Field{Name: "owner", Type: model.Reference{Schema: ownerSchema, Field: "id"}},
	)
)

func newModelClient(t *testing.T, rows RowClient, opts ...ModelOption) *ModelClient {
	t.Helper()
	reg, err := model.NewRegistry(ownerSchema, petSchema)
	require.NoError(t, err)
	mc, err := NewModelClient(rows, reg, opts...)
	require.NoError(t, err)
	return mc
}

func TestModelClientUnknownEntityTypeMakesNoCall(t *testing.T) {
	stub := &countingRows{}
	mc := newModelClient(t, stub)
	ctx := context.Background()

	_, err := mc.Select(ctx, "cars", nil)
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)
	_, err = mc.SelectOne(ctx, "cars", nil)
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)
	_, err = mc.Update(ctx, "cars", map[string]any{}, nil, ReturnMinimal)
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)
	err = mc.Delete(ctx, "cars", nil)
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)
	_, err = mc.New("cars", nil)
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)
	_, err = mc.Create(ctx, "cars", map[string]any{})
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)

	assert.Zero(t, stub.calls)
}

func TestModelClientSelect(t *testing.T) {
	stub := &countingRows{rows: []Row{
		{"id": json.Number("1"), "name": "Tom", "kind": "cat", "owner": "6ba7b8109dad11d180b400c04fd430c8"},
		{"id": json.Number("2"), "name": "Rex", "kind": "dog", "owner": nil},
	}}
	mc := newModelClient(t, stub)

	recs, err := mc.Select(context.Background(), "pets", nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, stub.calls)

	id, _ := recs[0].Get("id")
	assert.Equal(t, int64(1), id)
	owner, _ := recs[0].Get("owner")
	require.IsType(t, &model.Record{}, owner)
	assert.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), recs[0].ShallowMap()["owner"])

	owner, ok := recs[1].Get("owner")
	assert.True(t, ok)
	assert.Nil(t, owner)
}

func TestModelClientSelectDecodeError(t *testing.T) {
	stub := &countingRows{rows: []Row{{"kind": "hamster"}}}
	mc := newModelClient(t, stub)

	_, err := mc.Select(context.Background(), "pets", nil)
	assert.ErrorIs(t, err, model.ErrInvalidEnumValue)

	_, err = mc.SelectOne(context.Background(), "pets", nil)
	assert.ErrorIs(t, err, model.ErrInvalidEnumValue)
}

func TestModelClientTransportError(t *testing.T) {
	remote := &RemoteError{Status: http.StatusUnauthorized, Message: "permission denied"}
	mc := newModelClient(t, &countingRows{err: remote})

	_, err := mc.Select(context.Background(), "pets", nil)
	var got *RemoteError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, http.StatusUnauthorized, got.Status)
}

func TestModelClientUpdate(t *testing.T) {
	stub := &countingRows{rows: []Row{{"id": json.Number("1"), "name": "Tom"}}}
	mc := newModelClient(t, stub)
	ctx := context.Background()

	owner, err := mc.New("owners", map[string]any{"id": uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")})
	require.NoError(t, err)

	recs, err := mc.Update(ctx, "pets", map[string]any{"owner": owner}, nil, ReturnRepresentation)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]any{"owner": uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")}, stub.lastBody)

	recs, err = mc.Update(ctx, "pets", map[string]any{"name": "Tom"}, nil, ReturnMinimal)
	require.NoError(t, err)
	assert.Nil(t, recs)

	calls := stub.calls
	_, err = mc.Update(ctx, "pets", map[string]any{"name": 5}, nil, ReturnMinimal)
	assert.ErrorIs(t, err, model.ErrTypeMismatch)
	_, err = mc.Update(ctx, "pets", owner, nil, ReturnMinimal)
	assert.ErrorIs(t, err, model.ErrTypeMismatch)
	_, err = mc.Update(ctx, "pets", "name=Tom", nil, ReturnMinimal)
	assert.ErrorIs(t, err, model.ErrTypeMismatch)
	assert.Equal(t, calls, stub.calls, "invalid patches are rejected before any call")
}

func TestModelClientRecordInsert(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		stub := &countingRows{}
		mc := newModelClient(t, stub)
		assert.False(t, mc.ReturnsRepresentation())

		pet, err := mc.New("pets", map[string]any{"name": "Tom", "kind": "cat"})
		require.NoError(t, err)
		require.NoError(t, pet.Insert(context.Background()))

		assert.Equal(t, ReturnMinimal, stub.returning)
		assert.Equal(t, map[string]any{"name": "Tom", "kind": "cat"}, stub.lastBody)
	})

	t.Run("representation", func(t *testing.T) {
		stub := &countingRows{rows: []Row{{"id": json.Number("7"), "name": "Tom", "kind": "cat"}}}
		mc := newModelClient(t, stub, WithReturning(ReturnRepresentation))
		assert.True(t, mc.ReturnsRepresentation())

		pet, err := mc.New("pets", map[string]any{"name": "Tom", "kind": "cat"})
		require.NoError(t, err)
		require.NoError(t, pet.Insert(context.Background()))

		id, _ := pet.Get("id")
		assert.Equal(t, int64(7), id)
	})
}

func TestNewModelClientErrors(t *testing.T) {
	reg, err := model.NewRegistry(ownerSchema)
	require.NoError(t, err)

	_, err = NewModelClient(nil, reg)
	assert.Error(t, err)
	_, err = NewModelClient(&countingRows{}, nil)
	assert.Error(t, err)
	_, err = NewModelClient(&countingRows{}, reg, WithReturning(ReturnURL))
	var invalid *InvalidReturningError
	assert.True(t, errors.As(err, &invalid))

	mc, err := NewModelClient(&countingRows{}, reg)
	require.NoError(t, err)
	assert.Same(t, reg, mc.Registry())
}
