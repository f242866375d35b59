package services_test

import (
	"net/http"
	"testing"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionImport(t *testing.T) {
	f := newFixture(t)
	rows := [][]string{
		{"Student ID", "Category", "Amount", "Date", "Remarks"},
		{"2021-00001", "CS-MEM", "60", "2024-08-01", "batch 1"},
		{"2021-00001", "Membership", "50", "2024-08-02", ""},
		{"2022-00002", "CS-MEM", "10", "", ""},
		{"9999-99999", "SC-FUND", "10", "", ""},
		{"2022-00002", "SC-FUND", "abc", "", ""},
		{"2022-00002", "sc-fund", "20", "", ""},
	}

	preview, err := f.transactions.PreviewTransactionImport(f.ctx, testTerm, f.admin, rows)
	require.NoError(t, err)
	require.Len(t, preview.Rows, 6)
	assert.Equal(t, 2, preview.Valid)
	assert.Equal(t, 4, preview.Invalid)
	assert.Empty(t, preview.Rows[0].Errors)
	assert.NotEmpty(t, preview.Rows[1].Errors, "earlier rows count toward the balance")
	assert.Empty(t, preview.Rows[5].Errors)

	result, err := f.transactions.CommitTransactionImport(f.ctx, testTerm, f.admin, preview.Rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Len(t, result.Errors, 4)

	page, err := f.transactions.GetTransactions(f.ctx, testTerm, f.admin, models.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestTransactionImportIsScopedForOfficers(t *testing.T) {
	f := newFixture(t)
	rows := [][]string{
		{"Student ID", "Category", "Amount"},
		{"2021-00001", "CS-MEM", "10"},
		{"2021-00001", "SC-FUND", "10"},
	}

	preview, err := f.transactions.PreviewTransactionImport(f.ctx, testTerm, f.officer, rows)
	require.NoError(t, err)
	assert.NotEmpty(t, preview.Rows[0].Errors)
	assert.Empty(t, preview.Rows[1].Errors)
}

func TestTransactionImportRequiresColumns(t *testing.T) {
	f := newFixture(t)
	_, err := f.transactions.PreviewTransactionImport(f.ctx, testTerm, f.admin, [][]string{{"Student ID", "Notes"}, {"2021-00001", "x"}})
	requireStatus(t, err, http.StatusBadRequest)
}
