package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// newDryRunDB builds a gorm handle that renders SQL without executing it
// and captures every query for inspection.
func newDryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()

	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)

	var queries []string
	err = db.Callback().Query().After("gorm:query").Register("capture_sql", func(tx *gorm.DB) {
		queries = append(queries, tx.Statement.SQL.String())
	})
	require.NoError(t, err)

	return db, &queries
}

func TestTransactionReadsLockRows(t *testing.T) {
	db, queries := newDryRunDB(t)
	repo := &ledgerRepository{db: db, inTx: true}

	_, _ = repo.GetAccount("aa")
	_, _ = repo.GetAccountByOwner(1)
	_, _ = repo.GetBet("bb")

	require.Len(t, *queries, 3)
	for _, q := range *queries {
		assert.Contains(t, q, "FOR UPDATE",
			"transaction-scoped balance reads must hold the row until commit")
	}
}

func TestTransactionConfigReadTakesShareLock(t *testing.T) {
	db, queries := newDryRunDB(t)
	repo := &ledgerRepository{db: db, inTx: true}

	_, _ = repo.GetConfig()

	require.Len(t, *queries, 1)
	assert.Contains(t, (*queries)[0], "FOR SHARE",
		"config reads must serialize against a concurrent admin update without serializing each other")
}

func TestPlainReadsDoNotLock(t *testing.T) {
	db, queries := newDryRunDB(t)
	repo := &ledgerRepository{db: db}

	_, _ = repo.GetAccount("aa")
	_, _ = repo.GetBet("bb")
	_, _ = repo.GetConfig()

	require.Len(t, *queries, 3)
	for _, q := range *queries {
		assert.NotContains(t, q, "FOR UPDATE")
		assert.NotContains(t, q, "FOR SHARE")
	}
}
