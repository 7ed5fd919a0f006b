package services

import (
	"testing"
	"time"

	"giftd/internal/structures"
	"giftd/internal/testutil"
)

func testConfig() *structures.Config {
	return &structures.Config{
		Ledger: structures.LedgerConfig{
			DefaultCheckinPoints: 10,
			BonusMode:            structures.BonusModeFlat,
			DeliveryPolicy:       structures.DeliveryPolicyRelaxed,
		},
	}
}

func newTestService(conf *structures.Config) (*LedgerService, *testutil.MockStore, *testutil.MockSender) {
	store := &testutil.MockStore{}
	sender := &testutil.MockSender{}
	svc := NewLedgerService(conf, store, sender, &testutil.MockLogger{}).(*LedgerService)
	return svc, store, sender
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("bad date %q: %s", value, err)
	}
	return parsed
}
