package services

import (
	"context"

	"kalanmoney/internal/amqp"
	"kalanmoney/internal/core"
	"kalanmoney/internal/repository"
)

// EventPublisher announces committed transactions. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishTransactionAdded(ctx context.Context, msg amqp.TransactionAddedMessage) error
}

// Deps are the ports every use case draws from. IDs and Clock default to
// UUIDs and the wall clock; Publisher may be nil.
type Deps struct {
	Accounts   repository.AccountQueries
	Categories repository.CategoryQueries
	Commands   repository.AccountCommands
	IDs        core.IDGenerator
	Clock      func() core.TimeStamp
	Publisher  EventPublisher
}

func (d Deps) withDefaults() Deps {
	if d.IDs == nil {
		d.IDs = core.UUIDGenerator{}
	}
	if d.Clock == nil {
		d.Clock = core.Now
	}
	return d
}
