package services

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"giftd/internal/models"
	"giftd/internal/providers"
)

type GiftSpec struct {
	Name           string   `json:"name" validate:"required"`
	PointsRequired int      `json:"points_required" validate:"min:0"`
	Quantity       int      `json:"quantity" validate:"min:0"`
	PerUserLimit   int      `json:"per_user_limit" validate:"min:0"`
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	Codes          []string `json:"codes"`
}

// GiftPatch applies only the fields that are set. Replacing Codes wholesale
// overwrites the pool without touching Quantity; AddCodes is the path that
// keeps the two in lockstep.
type GiftPatch struct {
	Name           *string   `json:"name"`
	PointsRequired *int      `json:"points_required"`
	Quantity       *int      `json:"quantity"`
	PerUserLimit   *int      `json:"per_user_limit"`
	Description    *string   `json:"description"`
	Codes          *[]string `json:"codes"`
}

type GiftListEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PointsRequired int    `json:"points_required"`
	Quantity       int    `json:"quantity"`
	PerUserLimit   int    `json:"per_user_limit"`
	Type           string `json:"type"`
	Description    string `json:"description,omitempty"`
	Redeemed       int    `json:"redeemed"`
}

// GiftInfoView is the admin view, including the unissued-code count that
// ordinary users never see.
type GiftInfoView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PointsRequired int    `json:"points_required"`
	Quantity       int    `json:"quantity"`
	PerUserLimit   int    `json:"per_user_limit"`
	Type           string `json:"type"`
	Description    string `json:"description,omitempty"`
	CodesLeft      int    `json:"codes_left"`
	CodesIssued    int    `json:"codes_issued"`
}

func (ls *LedgerService) AddGift(contextID, callerID string, spec GiftSpec) (string, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return "", err
	}
	if strings.TrimSpace(spec.Name) == "" {
		return "", InvalidArgument("gift name must not be empty")
	}
	if spec.PointsRequired < 0 || spec.Quantity < 0 || spec.PerUserLimit < 0 {
		return "", InvalidArgument("price, quantity and limit must not be negative")
	}
	giftType := spec.Type
	switch giftType {
	case "":
		giftType = models.GiftTypeManual
	case models.GiftTypeManual, models.GiftTypeCode:
	default:
		return "", InvalidArgument("gift type must be manual or code")
	}
	if giftType == models.GiftTypeManual && len(spec.Codes) > 0 {
		return "", InvalidArgument("manual gifts cannot carry codes")
	}

	id := newGiftID(c)
	gift := &models.Gift{
		Name:           strings.TrimSpace(spec.Name),
		PointsRequired: spec.PointsRequired,
		Quantity:       spec.Quantity,
		PerUserLimit:   spec.PerUserLimit,
		Type:           giftType,
		Description:    spec.Description,
		Codes:          append([]string(nil), spec.Codes...),
	}
	c.Gifts[id] = gift

	if err := ls.commit(func() { delete(c.Gifts, id) }); err != nil {
		return "", err
	}
	ls.logger.Infof(providers.TypeCommand, "gift add ctx=%s id=%s name=%q qty=%d", contextID, id, gift.Name, gift.Quantity)
	return id, nil
}

func (ls *LedgerService) EditGift(contextID, callerID, giftID string, patch GiftPatch) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return err
	}
	g, ok := c.Gifts[giftID]
	if !ok {
		return GiftNotFound(giftID)
	}

	// Validate the whole patch before touching the gift, so a rejected
	// field never leaves an earlier one applied.
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return InvalidArgument("gift name must not be empty")
	}
	if patch.PointsRequired != nil && *patch.PointsRequired < 0 {
		return InvalidArgument("price must not be negative")
	}
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return InvalidArgument("quantity must not be negative")
	}
	if patch.PerUserLimit != nil && *patch.PerUserLimit < 0 {
		return InvalidArgument("limit must not be negative")
	}
	if patch.Codes != nil && g.Type != models.GiftTypeCode {
		return WrongGiftType(giftID)
	}

	prev := g.Clone()
	undo := func() { c.Gifts[giftID] = prev }

	if patch.Name != nil {
		g.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.PointsRequired != nil {
		g.PointsRequired = *patch.PointsRequired
	}
	if patch.Quantity != nil {
		g.Quantity = *patch.Quantity
	}
	if patch.PerUserLimit != nil {
		g.PerUserLimit = *patch.PerUserLimit
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.Codes != nil {
		g.Codes = append([]string(nil), (*patch.Codes)...)
	}

	if err := ls.commit(undo); err != nil {
		return err
	}
	ls.logger.Infof(providers.TypeCommand, "gift edit ctx=%s id=%s", contextID, giftID)
	return nil
}

func (ls *LedgerService) AddCodes(contextID, callerID, giftID string, codes []string) (int, error) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		if c := strings.TrimSpace(code); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) == 0 {
		return 0, InvalidArgument("no codes supplied")
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return 0, err
	}
	g, ok := c.Gifts[giftID]
	if !ok {
		return 0, GiftNotFound(giftID)
	}
	if g.Type != models.GiftTypeCode {
		return 0, WrongGiftType(giftID)
	}

	prev := g.Clone()
	g.Codes = append(g.Codes, cleaned...)
	g.Quantity += len(cleaned)

	if err := ls.commit(func() { c.Gifts[giftID] = prev }); err != nil {
		return 0, err
	}
	ls.logger.Infof(providers.TypeCommand, "gift addcodes ctx=%s id=%s added=%d", contextID, giftID, len(cleaned))
	return len(cleaned), nil
}

func (ls *LedgerService) RemoveGift(contextID, callerID, giftID string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return err
	}
	g, ok := c.Gifts[giftID]
	if !ok {
		return GiftNotFound(giftID)
	}

	delete(c.Gifts, giftID)
	if err := ls.commit(func() { c.Gifts[giftID] = g }); err != nil {
		return err
	}
	ls.logger.Infof(providers.TypeCommand, "gift del ctx=%s id=%s", contextID, giftID)
	return nil
}

// ListGifts returns read-only copies sorted by name. Redeemed counts are
// resolved against the requesting user when one is supplied.
func (ls *LedgerService) ListGifts(contextID, userID string) []GiftListEntry {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c, ok := ls.doc.Contexts[contextID]
	if !ok {
		return nil
	}

	var redeemed map[string]int
	if u, ok := c.Users[userID]; ok {
		redeemed = u.Purchases
	}

	entries := make([]GiftListEntry, 0, len(c.Gifts))
	for id, g := range c.Gifts {
		entries = append(entries, GiftListEntry{
			ID:             id,
			Name:           g.Name,
			PointsRequired: g.PointsRequired,
			Quantity:       g.Quantity,
			PerUserLimit:   g.PerUserLimit,
			Type:           g.Type,
			Description:    g.Description,
			Redeemed:       redeemed[id],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

func (ls *LedgerService) GiftInfo(contextID, callerID, giftID string) (*GiftInfoView, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return nil, err
	}
	g, ok := c.Gifts[giftID]
	if !ok {
		return nil, GiftNotFound(giftID)
	}

	issued := 0
	for _, codes := range g.DeliveredCodes {
		issued += len(codes)
	}
	return &GiftInfoView{
		ID:             giftID,
		Name:           g.Name,
		PointsRequired: g.PointsRequired,
		Quantity:       g.Quantity,
		PerUserLimit:   g.PerUserLimit,
		Type:           g.Type,
		Description:    g.Description,
		CodesLeft:      len(g.Codes),
		CodesIssued:    issued,
	}, nil
}

func (ls *LedgerService) SetCheckinPoints(contextID, callerID string, points int) error {
	if points < 0 {
		return InvalidArgument("check-in points must not be negative")
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return err
	}

	prevPoints := c.Config.PointsPerCheckin
	c.Config.PointsPerCheckin = points
	if err := ls.commit(func() { c.Config.PointsPerCheckin = prevPoints }); err != nil {
		return err
	}
	ls.logger.Infof(providers.TypeCommand, "setcheckin ctx=%s points=%d", contextID, points)
	return nil
}

// newGiftID derives a short identifier from a UUID, retrying on the unlikely
// collision within the context.
func newGiftID(c *models.Context) string {
	for {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		if _, exists := c.Gifts[id]; !exists {
			return id
		}
	}
}
