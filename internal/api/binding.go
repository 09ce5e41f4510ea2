package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/simp-lee/shopadmin/internal/domain"
)

// Record is a schemaless backend record, used where the concrete type is
// not known (the CLI).
type Record = map[string]any

// Binding maps one resource to its list/get/create/update/delete endpoints.
// Inputs are forwarded as-is; validation belongs to the form layer.
type Binding[T any] struct {
	client   *Client
	endpoint Endpoint
}

// NewBinding creates a Binding for the endpoint.
func NewBinding[T any](client *Client, endpoint Endpoint) *Binding[T] {
	if client == nil {
		panic("api.NewBinding: client must not be nil")
	}
	return &Binding[T]{client: client, endpoint: endpoint}
}

// Endpoint returns the endpoint description.
func (b *Binding[T]) Endpoint() Endpoint {
	return b.endpoint
}

// List fetches one page: GET {path}.
func (b *Binding[T]) List(ctx context.Context, req domain.PageRequest) (*domain.Page[T], error) {
	payload, err := b.client.do(ctx, http.MethodGet, b.endpoint.Path, b.endpoint.listQuery(req), nil)
	if err != nil {
		return nil, err
	}
	page, err := decodeEnvelope[T](b.endpoint.Shape, payload, req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", b.endpoint.Name, err)
	}
	return page, nil
}

// GetByID fetches one record: GET {path}/{id}.
func (b *Binding[T]) GetByID(ctx context.Context, id string) (*T, error) {
	payload, err := b.client.do(ctx, http.MethodGet, b.endpoint.itemPath(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[T](payload, b.endpoint.Name)
}

// Create posts a new record: POST {path}.
func (b *Binding[T]) Create(ctx context.Context, body any) (*T, error) {
	payload, err := b.client.do(ctx, http.MethodPost, b.endpoint.Path, nil, body)
	if err != nil {
		return nil, err
	}
	return decode[T](payload, b.endpoint.Name)
}

// Update patches a record: PATCH {path}/{id}.
func (b *Binding[T]) Update(ctx context.Context, id string, body any) (*T, error) {
	payload, err := b.client.do(ctx, http.MethodPatch, b.endpoint.itemPath(id), nil, body)
	if err != nil {
		return nil, err
	}
	return decode[T](payload, b.endpoint.Name)
}

// Delete removes a record: DELETE {path}/{id}. Any response body is ignored.
func (b *Binding[T]) Delete(ctx context.Context, id string) error {
	_, err := b.client.do(ctx, http.MethodDelete, b.endpoint.itemPath(id), nil, nil)
	return err
}
