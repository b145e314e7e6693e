package cqrs

import (
	"context"
	"errors"
)

var (
	ErrQueryHandlerNotFound = errors.New("query handler not found")
	ErrQueryValidation      = errors.New("query validation failed")
)

// Query is a read-only request for data.
type Query interface {
	QueryName() string
	Validate() error
}

// QueryHandler executes one specific query type.
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryBus dispatches queries to their registered handler.
type QueryBus struct {
	handlers map[string]QueryHandler
}

func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[string]QueryHandler)}
}

func (b *QueryBus) RegisterHandler(queryName string, handler QueryHandler) {
	b.handlers[queryName] = handler
}

func (b *QueryBus) Dispatch(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, ErrQueryValidation
	}

	handler, ok := b.handlers[query.QueryName()]
	if !ok {
		return nil, ErrQueryHandlerNotFound
	}

	return handler.Handle(ctx, query)
}

// BaseQuery provides the default (always-pass) Validate implementation.
type BaseQuery struct{}

func (q *BaseQuery) Validate() error {
	return nil
}
