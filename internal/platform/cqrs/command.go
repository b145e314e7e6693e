package cqrs

import (
	"context"
	"errors"
)

var (
	ErrCommandHandlerNotFound = errors.New("command handler not found")
	ErrCommandValidation      = errors.New("command validation failed")
)

// Command is an intention to change the system's state.
type Command interface {
	CommandName() string
	Validate() error
}

// CommandHandler executes one specific command type.
type CommandHandler interface {
	Handle(ctx context.Context, command Command) error
}

// CommandBus dispatches commands to their registered handler.
type CommandBus struct {
	handlers map[string]CommandHandler
}

func NewCommandBus() *CommandBus {
	return &CommandBus{handlers: make(map[string]CommandHandler)}
}

func (b *CommandBus) RegisterHandler(commandName string, handler CommandHandler) {
	b.handlers[commandName] = handler
}

func (b *CommandBus) Dispatch(ctx context.Context, command Command) error {
	if err := command.Validate(); err != nil {
		return ErrCommandValidation
	}

	handler, ok := b.handlers[command.CommandName()]
	if !ok {
		return ErrCommandHandlerNotFound
	}

	return handler.Handle(ctx, command)
}

// BaseCommand carries the id of the aggregate a command targets.
type BaseCommand struct {
	AggregateID string `json:"aggregate_id"`
}

func (c *BaseCommand) GetAggregateID() string {
	return c.AggregateID
}
