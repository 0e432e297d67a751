package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
	"github.com/robert-malhotra/go-postgrest-client/pkg/query"
)

// InsertResult is what an insert returned, depending on its Returning.
type InsertResult struct {
	// Rows holds the created rows for ReturnRepresentation.
	Rows []Row
	// Location is the resolved URL of the created row for ReturnURL.
	Location *url.URL
}

// Select fetches the rows of entityType matching p.
func (c *Client) Select(ctx context.Context, entityType string, p *SelectParams, opts ...RequestOption) ([]Row, error) {
	target, err := c.TargetURL(entityType, p)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, target, nil, opts)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", mediaJSON)

	var rows []Row
	if _, err := c.doJSON(ctx, req, &rows, http.StatusOK); err != nil {
		return nil, err
	}
	return rows, nil
}

// SelectOne fetches exactly one row. The server answers with a RemoteError
// (406) when p matches zero or several rows.
func (c *Client) SelectOne(ctx context.Context, entityType string, p *SelectParams, opts ...RequestOption) (Row, error) {
	target, err := c.TargetURL(entityType, p)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, target, nil, opts)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", mediaSingleObject)

	var row Row
	if _, err := c.doJSON(ctx, req, &row, http.StatusOK); err != nil {
		return nil, err
	}
	return row, nil
}

// Insert creates one row, or one row per element when item is a slice.
func (c *Client) Insert(ctx context.Context, entityType string, item any, returning Returning, opts ...RequestOption) (*InsertResult, error) {
	if _, err := ParseReturning(string(returning)); err != nil {
		return nil, err
	}
	target, err := c.TargetURL(entityType, nil)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, target, item, opts)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", mediaJSON)
	req.Header.Set("Prefer", returning.prefer())

	result := &InsertResult{}
	var out any
	if returning == ReturnRepresentation {
		out = &result.Rows
	}
	resp, err := c.doJSON(ctx, req, out, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	if returning == ReturnURL {
		loc := resp.Header.Get("Location")
		if loc == "" {
			return nil, ErrMissingLocation
		}
		ref, err := url.Parse(loc)
		if err != nil {
			return nil, fmt.Errorf("invalid Location %q: %w", loc, err)
		}
		result.Location = c.baseURL.ResolveReference(ref)
	}
	return result, nil
}

// Update patches the rows matching filters. Nil filters update every row.
// With ReturnRepresentation the updated rows are returned.
func (c *Client) Update(ctx context.Context, entityType string, patch any, filters []filter.Member, returning Returning, opts ...RequestOption) ([]Row, error) {
	switch returning {
	case ReturnMinimal, "":
		returning = ReturnMinimal
	case ReturnRepresentation:
	default:
		return nil, &InvalidReturningError{Returning: returning}
	}

	target, err := c.TargetURL(entityType, &query.Params{Filters: filters})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, target, patch, opts)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", mediaJSON)
	req.Header.Set("Prefer", returning.prefer())

	if returning == ReturnMinimal {
		_, err := c.doJSON(ctx, req, nil, http.StatusNoContent)
		return nil, err
	}
	var rows []Row
	if _, err := c.doJSON(ctx, req, &rows, http.StatusOK); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the rows matching filters. Nil filters delete every row.
func (c *Client) Delete(ctx context.Context, entityType string, filters []filter.Member, opts ...RequestOption) error {
	target, err := c.TargetURL(entityType, &query.Params{Filters: filters})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodDelete, target, nil, opts)
	if err != nil {
		return err
	}
	_, err = c.doJSON(ctx, req, nil, http.StatusNoContent)
	return err
}
