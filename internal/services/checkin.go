package services

import (
	"time"

	"giftd/internal/models"
	"giftd/internal/providers"
	"giftd/internal/structures"
)

type CheckInResult struct {
	Awarded        int    `json:"awarded"`
	Points         int    `json:"points"`
	ContinuousDays int    `json:"continuous_days"`
	TotalDays      int    `json:"total_days"`
	MonthDays      int    `json:"month_days"`
	Username       string `json:"username"`
}

// CheckIn runs the daily check-in state machine. A second check-in on the
// same calendar date is rejected without touching any state.
func (ls *LedgerService) CheckIn(contextID, userID, username string, today time.Time) (*CheckInResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	c := ls.resolve(contextID)
	todayStr := today.Format(models.DateLayout)
	// Gate before ensureUser so a rejected repeat leaves the account
	// untouched, including the display-name refresh.
	if u, ok := c.Users[userID]; ok && u.LastCheckin == todayStr {
		return nil, AlreadyCheckedIn()
	}
	u := ls.ensureUser(c, userID, username)

	prev := u.Clone()
	undo := func() { c.Users[userID] = prev }

	if consecutiveDays(u.LastCheckin, today) {
		u.ContinuousDays++
	} else {
		u.ContinuousDays = 1
	}
	if !sameMonth(u.LastCheckin, today) {
		u.MonthDays = 0
	}

	awarded := ls.awardFor(c, u.ContinuousDays)
	u.Points += awarded
	u.TotalDays++
	u.MonthDays++
	u.LastCheckin = todayStr

	if err := ls.commit(undo); err != nil {
		return nil, err
	}

	ls.logger.Infof(providers.TypeCommand, "checkin ctx=%s user=%s awarded=%d streak=%d", contextID, userID, awarded, u.ContinuousDays)
	return &CheckInResult{
		Awarded:        awarded,
		Points:         u.Points,
		ContinuousDays: u.ContinuousDays,
		TotalDays:      u.TotalDays,
		MonthDays:      u.MonthDays,
		Username:       u.Username,
	}, nil
}

func (ls *LedgerService) awardFor(c *models.Context, streak int) int {
	base := c.Config.PointsPerCheckin
	if ls.conf.Ledger.BonusMode == structures.BonusModeStreakSquared {
		return base + streak*streak
	}
	return base
}

func consecutiveDays(last string, today time.Time) bool {
	if last == "" {
		return false
	}
	prev, err := time.Parse(models.DateLayout, last)
	if err != nil {
		return false
	}
	y, m, d := today.Date()
	return prev.AddDate(0, 0, 1).Equal(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func sameMonth(last string, today time.Time) bool {
	if last == "" {
		return false
	}
	prev, err := time.Parse(models.DateLayout, last)
	if err != nil {
		return false
	}
	return prev.Year() == today.Year() && prev.Month() == today.Month()
}
