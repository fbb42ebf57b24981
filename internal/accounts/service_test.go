package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shekelsync/shekelsync/internal/model"
)

func TestNewService(t *testing.T) {
	svc := NewService(sampleAccounts())
	assert.Len(t, svc.All(), 3)
	assert.Len(t, svc.Open(), 2)
}

func TestGetExists(t *testing.T) {
	svc := NewService(sampleAccounts())

	acct, ok := svc.Get("a2")
	assert.True(t, ok)
	assert.Equal(t, "Max", acct.Name)

	_, ok = svc.Get("zz")
	assert.False(t, ok)

	assert.True(t, svc.Exists("a1"))
	assert.False(t, svc.Exists("zz"))
}

func TestResolve(t *testing.T) {
	svc := NewService(sampleAccounts())

	acct, ok := svc.Resolve("a1")
	require.True(t, ok)
	assert.Equal(t, model.AccountTypeChecking, acct.Type)

	acct, ok = svc.Resolve("max")
	require.True(t, ok)
	assert.Equal(t, "a2", acct.ID)

	_, ok = svc.Resolve("Cal")
	assert.False(t, ok)
}

func TestByType(t *testing.T) {
	svc := NewService(sampleAccounts())
	cards := svc.ByType(model.AccountTypeCreditCard)
	require.Len(t, cards, 1)
	assert.Equal(t, "a2", cards[0].ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewService(sampleAccounts()).Save(dir))

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, sampleAccounts(), svc.All())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "opening account snapshot")
}
