package services

import (
	"giftd/internal/models"
	"giftd/internal/providers"
)

func (ls *LedgerService) requireAdmin(c *models.Context, userID string) error {
	if !c.Admins[userID] {
		return NotAuthorized()
	}
	return nil
}

func (ls *LedgerService) IsAdmin(contextID, userID string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c, ok := ls.doc.Contexts[contextID]
	if !ok {
		return false
	}
	return c.Admins[userID]
}

// BindFirstAdmin is the bootstrap escape hatch: it populates an empty admin
// set and is permanently closed for the context once any admin exists.
func (ls *LedgerService) BindFirstAdmin(contextID, userID string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if len(c.Admins) > 0 {
		return AlreadyHasAdmins()
	}

	c.Admins[userID] = true
	if err := ls.commit(func() { delete(c.Admins, userID) }); err != nil {
		return err
	}
	ls.logger.Infof(providers.TypeCommand, "first admin bound ctx=%s user=%s", contextID, userID)
	return nil
}

func (ls *LedgerService) AddAdmin(contextID, callerID, userID string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return err
	}
	if c.Admins[userID] {
		return nil
	}

	c.Admins[userID] = true
	if err := ls.commit(func() { delete(c.Admins, userID) }); err != nil {
		return err
	}
	ls.logger.Infof(providers.TypeCommand, "admin added ctx=%s user=%s by=%s", contextID, userID, callerID)
	return nil
}

func (ls *LedgerService) RemoveAdmin(contextID, callerID, userID string) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return err
	}
	if !c.Admins[userID] {
		return UserNotFound(userID)
	}

	delete(c.Admins, userID)
	if err := ls.commit(func() { c.Admins[userID] = true }); err != nil {
		return err
	}
	ls.logger.Infof(providers.TypeCommand, "admin removed ctx=%s user=%s by=%s", contextID, userID, callerID)
	return nil
}

// GrantPoints credits a user, creating the account lazily. The delta must
// not be negative; DeductPoints is the debit path.
func (ls *LedgerService) GrantPoints(contextID, callerID, userID string, points int) (int, error) {
	if points < 0 {
		return 0, InvalidArgument("points must not be negative")
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return 0, err
	}

	u := ls.ensureUser(c, userID, "")
	u.Points += points
	if err := ls.commit(func() { u.Points -= points }); err != nil {
		return 0, err
	}
	ls.logger.Infof(providers.TypeCommand, "grant ctx=%s user=%s points=%d by=%s", contextID, userID, points, callerID)
	return u.Points, nil
}

// DeductPoints debits a user, flooring the balance at zero rather than
// failing when the delta exceeds it.
func (ls *LedgerService) DeductPoints(contextID, callerID, userID string, points int) (int, error) {
	if points < 0 {
		return 0, InvalidArgument("points must not be negative")
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	if err := ls.requireAdmin(c, callerID); err != nil {
		return 0, err
	}

	u := ls.ensureUser(c, userID, "")
	prevPoints := u.Points
	u.Points = max(0, u.Points-points)
	if err := ls.commit(func() { u.Points = prevPoints }); err != nil {
		return 0, err
	}
	ls.logger.Infof(providers.TypeCommand, "deduct ctx=%s user=%s points=%d by=%s", contextID, userID, points, callerID)
	return u.Points, nil
}
