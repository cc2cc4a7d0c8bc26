package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybooks/tallybooks/internal/domain"
)

func TestNormalBalanceFor(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.BalanceSide
	}{
		{domain.AccountTypeAsset, domain.SideDebit},
		{domain.AccountTypeExpense, domain.SideDebit},
		{domain.AccountTypeLiability, domain.SideCredit},
		{domain.AccountTypeEquity, domain.SideCredit},
		{domain.AccountTypeRevenue, domain.SideCredit},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalBalanceFor(tt.accountType))
		})
	}
}

func TestAccountPostingDelta(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	tests := []struct {
		name          string
		normalBalance domain.BalanceSide
		side          domain.BalanceSide
		want          string
	}{
		{"debit posting to debit-normal account increases", domain.SideDebit, domain.SideDebit, "100"},
		{"credit posting to debit-normal account decreases", domain.SideDebit, domain.SideCredit, "-100"},
		{"credit posting to credit-normal account increases", domain.SideCredit, domain.SideCredit, "100"},
		{"debit posting to credit-normal account decreases", domain.SideCredit, domain.SideDebit, "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &domain.Account{NormalBalance: tt.normalBalance}

			delta := account.PostingDelta(hundred, tt.side)

			assert.Equal(t, tt.want, delta.String())
		})
	}
}

func TestAccountApplyPosting(t *testing.T) {
	account := &domain.Account{
		NormalBalance:  domain.SideDebit,
		CurrentBalance: decimal.NewFromInt(250),
	}

	got := account.ApplyPosting(decimal.NewFromInt(100), domain.SideCredit)

	assert.Equal(t, "150", got.String())
}

func strPtr(s string) *string { return &s }

func TestBuildHierarchy(t *testing.T) {
	accounts := []*domain.Account{
		{ID: "a3", Code: "1200", Name: "Accounts Receivable", ParentID: strPtr("a1")},
		{ID: "a1", Code: "1000", Name: "Current Assets"},
		{ID: "a2", Code: "1010", Name: "Cash", ParentID: strPtr("a1")},
		{ID: "a4", Code: "4010", Name: "Sales Revenue"},
	}

	roots := domain.BuildHierarchy(accounts)

	require.Len(t, roots, 2)
	assert.Equal(t, "1000", roots[0].Account.Code)
	assert.Equal(t, "4010", roots[1].Account.Code)

	require.Len(t, roots[0].Children, 2)
	// Siblings ordered by code regardless of input order.
	assert.Equal(t, "1010", roots[0].Children[0].Account.Code)
	assert.Equal(t, "1200", roots[0].Children[1].Account.Code)
}

func TestBuildHierarchyOrderIndependent(t *testing.T) {
	forward := []*domain.Account{
		{ID: "p", Code: "1000"},
		{ID: "c", Code: "1010", ParentID: strPtr("p")},
	}
	backward := []*domain.Account{
		{ID: "c", Code: "1010", ParentID: strPtr("p")},
		{ID: "p", Code: "1000"},
	}

	a := domain.BuildHierarchy(forward)
	b := domain.BuildHierarchy(backward)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].Account.ID, b[0].Account.ID)
	require.Len(t, a[0].Children, 1)
	require.Len(t, b[0].Children, 1)
	assert.Equal(t, a[0].Children[0].Account.ID, b[0].Children[0].Account.ID)
}

func TestBuildHierarchyMissingParentBecomesRoot(t *testing.T) {
	accounts := []*domain.Account{
		{ID: "orphan", Code: "2100", ParentID: strPtr("gone")},
	}

	roots := domain.BuildHierarchy(accounts)

	require.Len(t, roots, 1)
	assert.Equal(t, "orphan", roots[0].Account.ID)
}

func TestSubtreeBalance(t *testing.T) {
	accounts := []*domain.Account{
		{ID: "p", Code: "1000", CurrentBalance: decimal.NewFromInt(10)},
		{ID: "c1", Code: "1010", ParentID: strPtr("p"), CurrentBalance: decimal.NewFromInt(20)},
		{ID: "c2", Code: "1020", ParentID: strPtr("p"), CurrentBalance: decimal.NewFromInt(30)},
		{ID: "g", Code: "1021", ParentID: strPtr("c2"), CurrentBalance: decimal.NewFromInt(5)},
	}

	roots := domain.BuildHierarchy(accounts)

	require.Len(t, roots, 1)
	assert.Equal(t, "65", roots[0].SubtreeBalance().String())
}
