package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shekelsync/shekelsync/internal/model"
)

func sampleAccounts() []model.LedgerAccount {
	return []model.LedgerAccount{
		{ID: "a1", Name: `עו"ש הפועלים`, Type: model.AccountTypeChecking, Balance: 14600000, ClearedBalance: 14500000},
		{ID: "a2", Name: "Max", Type: model.AccountTypeCreditCard, Balance: -400640, ClearedBalance: -300000},
		{ID: "a3", Name: "Old savings", Type: model.AccountTypeSavings, Closed: true},
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, sampleAccounts()))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleAccounts(), got)
}

func TestWriteAccounts_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, nil))
	assert.Equal(t, "account_id,account_name,account_type,balance,cleared_balance,closed\n", buf.String())
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	bad := [][]string{
		{"a1", "x", "checking", "1"},
		{"", "x", "checking", "1", "1", "false"},
		{"a1", "x", "checking", "1.5", "1", "false"},
		{"a1", "x", "checking", "1", "abc", "false"},
		{"a1", "x", "checking", "1", "1", "maybe"},
	}
	for _, rec := range bad {
		_, err := UnmarshalAccount(rec)
		assert.Error(t, err, "record %v", rec)
	}
}

func TestReadAccounts_BadRow(t *testing.T) {
	in := "account_id,account_name,account_type,balance,cleared_balance,closed\na1,x,checking,oops,0,false\n"
	_, err := ReadAccounts(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
