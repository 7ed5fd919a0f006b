package services

import (
	"context"
	"sync"
	"time"

	"giftd/internal/delivery"
	"giftd/internal/models"
	"giftd/internal/providers"
	"giftd/internal/structures"
)

type StoreInterface interface {
	Load() *models.Document
	Save(doc *models.Document) error
}

type LedgerServiceInterface interface {
	// lifecycle
	Restore() error
	Persist() error

	// user ledger
	CheckIn(contextID, userID, username string, today time.Time) (*CheckInResult, error)
	GetUser(contextID, userID string) (*models.UserAccount, error)
	GrantPoints(contextID, callerID, userID string, points int) (int, error)
	DeductPoints(contextID, callerID, userID string, points int) (int, error)

	// gift catalog
	AddGift(contextID, callerID string, spec GiftSpec) (string, error)
	EditGift(contextID, callerID, giftID string, patch GiftPatch) error
	AddCodes(contextID, callerID, giftID string, codes []string) (int, error)
	RemoveGift(contextID, callerID, giftID string) error
	ListGifts(contextID, userID string) []GiftListEntry
	GiftInfo(contextID, callerID, giftID string) (*GiftInfoView, error)
	SetCheckinPoints(contextID, callerID string, points int) error

	// redemption
	Redeem(ctx context.Context, contextID, userID, username, giftID string, count int) (*RedeemResult, error)

	// admin gate
	IsAdmin(contextID, userID string) bool
	BindFirstAdmin(contextID, userID string) error
	AddAdmin(contextID, callerID, userID string) error
	RemoveAdmin(contextID, callerID, userID string) error

	// introspection for health/metrics
	CountContexts() int
	CountUsers() int
}

// LedgerService owns the in-memory document. One process-wide mutex guards
// every read-modify-write together with the synchronous save, which is the
// whole concurrency model: no redemption or check-in can interleave with
// another mutation of the same context.
type LedgerService struct {
	mu     sync.Mutex
	doc    *models.Document
	store  StoreInterface
	sender delivery.Sender
	conf   *structures.Config
	logger providers.Logger
}

func NewLedgerService(conf *structures.Config, store StoreInterface, sender delivery.Sender, logger providers.Logger) LedgerServiceInterface {
	return &LedgerService{
		doc:    models.NewDocument(),
		store:  store,
		sender: sender,
		conf:   conf,
		logger: logger,
	}
}

func (ls *LedgerService) Restore() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.doc = ls.store.Load()
	ls.logger.Infof(providers.TypeStore, "Restored %d contexts", len(ls.doc.Contexts))
	return nil
}

func (ls *LedgerService) Persist() error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.store.Save(ls.doc)
}

// resolve returns the context for contextID, creating a fully populated one
// on first reference. Contexts are never deleted.
func (ls *LedgerService) resolve(contextID string) *models.Context {
	if c, ok := ls.doc.Contexts[contextID]; ok {
		return c
	}
	points := ls.conf.Ledger.DefaultCheckinPoints
	if points <= 0 {
		points = models.DefaultCheckinPoints
	}
	c := models.NewContext(points)
	ls.doc.Contexts[contextID] = c
	return c
}

// ensureUser lazily creates the account and refreshes the last-seen display
// name when one is supplied.
func (ls *LedgerService) ensureUser(c *models.Context, userID, username string) *models.UserAccount {
	u, ok := c.Users[userID]
	if !ok {
		u = models.NewUserAccount(username)
		c.Users[userID] = u
	}
	if username != "" {
		u.Username = username
	}
	return u
}

// commit persists the whole document after an in-memory mutation. If the
// save fails every undo runs in reverse order, so memory and disk never
// diverge and the caller can report "nothing was applied" truthfully.
func (ls *LedgerService) commit(undo ...func()) error {
	if err := ls.store.Save(ls.doc); err != nil {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		ls.logger.Errorf(providers.TypeStore, "Persist failed, mutation rolled back: %s", err)
		return SaveFailed(err)
	}
	return nil
}

func (ls *LedgerService) GetUser(contextID, userID string) (*models.UserAccount, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c, ok := ls.doc.Contexts[contextID]
	if !ok {
		return nil, UserNotFound(userID)
	}
	u, ok := c.Users[userID]
	if !ok {
		return nil, UserNotFound(userID)
	}
	return u.Clone(), nil
}

func (ls *LedgerService) CountContexts() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.doc.Contexts)
}

func (ls *LedgerService) CountUsers() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	n := 0
	for _, c := range ls.doc.Contexts {
		n += len(c.Users)
	}
	return n
}
