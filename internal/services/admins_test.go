package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFirstAdmin_OnlyOnce(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	require.NoError(t, svc.BindFirstAdmin("g", "u1"))
	assert.True(t, svc.IsAdmin("g", "u1"))

	err := svc.BindFirstAdmin("g", "u2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, svc.IsAdmin("g", "u2"))
}

func TestBindFirstAdmin_IndependentPerContext(t *testing.T) {
	svc, _, _ := newTestService(testConfig())

	require.NoError(t, svc.BindFirstAdmin("g1", "u1"))
	require.NoError(t, svc.BindFirstAdmin("g2", "u2"))

	assert.True(t, svc.IsAdmin("g1", "u1"))
	assert.False(t, svc.IsAdmin("g2", "u1"))
}

func TestAddRemoveAdmin_RequireAdminCaller(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))

	err := svc.AddAdmin("g", "intruder", "crony")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	require.NoError(t, svc.AddAdmin("g", "boss", "helper"))
	assert.True(t, svc.IsAdmin("g", "helper"))

	require.NoError(t, svc.RemoveAdmin("g", "boss", "helper"))
	assert.False(t, svc.IsAdmin("g", "helper"))

	err = svc.RemoveAdmin("g", "boss", "helper")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestIsAdmin_UnknownContext(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	assert.False(t, svc.IsAdmin("nowhere", "u1"))
}

func TestGrantPoints(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))

	balance, err := svc.GrantPoints("g", "boss", "u1", 40)
	require.NoError(t, err)
	assert.Equal(t, 40, balance)

	// lazily created account is persistent
	u, err := svc.GetUser("g", "u1")
	require.NoError(t, err)
	assert.Equal(t, 40, u.Points)

	_, err = svc.GrantPoints("g", "boss", "u1", -1)
	require.Error(t, err)

	_, err = svc.GrantPoints("g", "nobody", "u1", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestDeductPoints_FloorsAtZero(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	require.NoError(t, svc.BindFirstAdmin("g", "boss"))

	_, err := svc.GrantPoints("g", "boss", "u1", 30)
	require.NoError(t, err)

	balance, err := svc.DeductPoints("g", "boss", "u1", 100)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	_, err := svc.GetUser("g", "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCountContextsAndUsers(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	require.NoError(t, svc.BindFirstAdmin("g1", "boss"))
	require.NoError(t, svc.BindFirstAdmin("g2", "boss"))
	seedUser(svc, "g1", "u1", 0)
	seedUser(svc, "g1", "u2", 0)
	seedUser(svc, "g2", "u1", 0)

	assert.Equal(t, 2, svc.CountContexts())
	assert.Equal(t, 3, svc.CountUsers())
}
