package services

import (
	"context"
	"fmt"

	"giftd/internal/models"
	"giftd/internal/providers"
	"giftd/internal/structures"
)

type RedeemResult struct {
	GiftID   string `json:"gift_id"`
	GiftName string `json:"gift_name"`
	Count    int    `json:"count"`
	Cost     int    `json:"cost"`
	Points   int    `json:"points"`
	// Codes holds the issued secret codes for code-backed gifts. When
	// Delivered is false the caller is expected to reveal them through its
	// own fallback channel.
	Codes     []string `json:"codes,omitempty"`
	Delivered bool     `json:"delivered"`
	// Pending marks a manual gift awaiting out-of-band fulfillment.
	Pending bool `json:"pending,omitempty"`
}

// Redeem is the critical transaction: ordered fail-fast validation, then an
// atomic debit/decrement/issue commit, then persistence. Any failed check or
// a failed save leaves user and gift untouched.
func (ls *LedgerService) Redeem(ctx context.Context, contextID, userID, username, giftID string, count int) (*RedeemResult, error) {
	if count < 1 {
		return nil, InvalidArgument("count must be at least 1")
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	g, ok := c.Gifts[giftID]
	if !ok {
		return nil, GiftNotFound(giftID)
	}
	if g.Quantity < count {
		return nil, InsufficientStock()
	}

	u := ls.ensureUser(c, userID, username)
	cost := g.PointsRequired * count
	if u.Points < cost {
		return nil, InsufficientPoints(cost, u.Points)
	}
	if g.PerUserLimit > 0 && u.Purchases[giftID]+count > g.PerUserLimit {
		return nil, OverPersonalLimit(g.PerUserLimit)
	}
	// Stock and code pool can diverge when an operator edits one without the
	// other; both are gated independently.
	if g.Type == models.GiftTypeCode && len(g.Codes) < count {
		return nil, InsufficientCodes()
	}

	var codes []string
	if g.Type == models.GiftTypeCode {
		codes = append([]string(nil), g.Codes[:count]...)
	}

	delivered := false
	strict := ls.conf.Ledger.DeliveryPolicy == structures.DeliveryPolicyStrict
	if strict && g.Type == models.GiftTypeCode {
		// Strict policy: the drawn codes must reach the user privately
		// before anything is committed.
		if err := ls.sender.SendPrivate(ctx, userID, codeMessage(g.Name, codes)); err != nil {
			ls.logger.Warnf(providers.TypeDelivery, "redeem aborted, delivery to %s failed: %s", userID, err)
			return nil, DeliveryRequired()
		}
		delivered = true
	}

	prevUser := u.Clone()
	prevGift := g.Clone()
	undo := func() {
		c.Users[userID] = prevUser
		c.Gifts[giftID] = prevGift
	}

	u.Points -= cost
	g.Quantity -= count
	u.Purchases[giftID] += count
	if g.Type == models.GiftTypeCode {
		g.Codes = g.Codes[count:]
		if g.DeliveredCodes == nil {
			g.DeliveredCodes = make(map[string][]string)
		}
		g.DeliveredCodes[userID] = append(g.DeliveredCodes[userID], codes...)
	}

	if err := ls.commit(undo); err != nil {
		return nil, err
	}

	result := &RedeemResult{
		GiftID:    giftID,
		GiftName:  g.Name,
		Count:     count,
		Cost:      cost,
		Points:    u.Points,
		Codes:     codes,
		Delivered: delivered,
	}

	switch {
	case g.Type == models.GiftTypeCode && !strict:
		// Relaxed policy: the redemption stands regardless of delivery; the
		// caller falls back to an in-reply reveal when undelivered.
		if err := ls.sender.SendPrivate(ctx, userID, codeMessage(g.Name, codes)); err == nil {
			result.Delivered = true
		}
	case g.Type == models.GiftTypeManual:
		result.Pending = true
		ls.notifyAdmins(ctx, c, fmt.Sprintf("%s (%s) redeemed %d x %s, manual fulfillment needed", u.Username, userID, count, g.Name))
	}

	ls.logger.Infof(providers.TypeCommand, "redeem ctx=%s user=%s gift=%s count=%d cost=%d", contextID, userID, giftID, count, cost)
	return result, nil
}

// notifyAdmins sends a best-effort private note to every admin of the
// context. Failures are ignored; fulfillment happens out-of-band anyway.
func (ls *LedgerService) notifyAdmins(ctx context.Context, c *models.Context, text string) {
	for adminID := range c.Admins {
		if err := ls.sender.SendPrivate(ctx, adminID, text); err != nil {
			ls.logger.Debugf(providers.TypeDelivery, "admin notice to %s not delivered: %s", adminID, err)
		}
	}
}

func codeMessage(giftName string, codes []string) string {
	msg := fmt.Sprintf("Your codes for %q:", giftName)
	for _, code := range codes {
		msg += "\n" + code
	}
	return msg + "\nKeep them safe."
}
