// Package delivery models the outbound private-message capability the host
// supplies. The core never assumes a send succeeds and always keeps a
// user-visible fallback for the undelivered case.
package delivery

import (
	"context"
	"errors"

	"giftd/internal/providers"
)

var ErrUndelivered = errors.New("message not delivered")

// Sender delivers a private text message to a single user.
type Sender interface {
	SendPrivate(ctx context.Context, userID, text string) error
}

// Chain tries an ordered list of senders until one succeeds. The host
// registers whatever channels its platform exposes; an empty chain reports
// every send as undelivered.
type Chain struct {
	senders []Sender
	logger  providers.Logger
}

func NewChain(logger providers.Logger, senders ...Sender) *Chain {
	return &Chain{senders: senders, logger: logger}
}

// NewDefaultChain builds an empty chain for the standalone daemon, where
// redemption replies carry the codes themselves. Embedding hosts call
// Register with their platform senders.
func NewDefaultChain(logger providers.Logger) *Chain {
	return NewChain(logger)
}

// Register appends a sender. Later registrations are later fallbacks.
func (c *Chain) Register(s Sender) {
	c.senders = append(c.senders, s)
}

func (c *Chain) SendPrivate(ctx context.Context, userID, text string) error {
	if len(c.senders) == 0 {
		return ErrUndelivered
	}
	var lastErr error
	for _, s := range c.senders {
		if err := s.SendPrivate(ctx, userID, text); err != nil {
			c.logger.Warnf(providers.TypeDelivery, "private send to %s failed: %s", userID, err)
			lastErr = err
			continue
		}
		return nil
	}
	return errors.Join(ErrUndelivered, lastErr)
}
