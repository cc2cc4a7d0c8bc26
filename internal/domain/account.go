package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies an account within the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeAsset:     true,
	AccountTypeLiability: true,
	AccountTypeEquity:    true,
	AccountTypeRevenue:   true,
	AccountTypeExpense:   true,
}

// IsValid reports whether the account type is one of the five ledger types.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// BalanceSide is the side of a journal line or an account's normal balance.
type BalanceSide string

const (
	SideDebit  BalanceSide = "DEBIT"
	SideCredit BalanceSide = "CREDIT"
)

// IsValid reports whether the side is DEBIT or CREDIT.
func (s BalanceSide) IsValid() bool {
	return s == SideDebit || s == SideCredit
}

// NormalBalanceFor returns the side on which an account type's balance
// naturally increases.
func NormalBalanceFor(t AccountType) BalanceSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// Account is a node in a tenant's chart of accounts.
type Account struct {
	ID             string
	TenantID       string
	Code           string
	Name           string
	Type           AccountType
	Category       string
	ParentID       *string
	NormalBalance  BalanceSide
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	IsActive       bool
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PostingDelta returns the signed balance change for a posting of amount on
// side. A posting on the account's normal side increases the balance, the
// opposite side decreases it. The same rule applies to seeding, reversals,
// and opening-balance postings.
func (a *Account) PostingDelta(amount decimal.Decimal, side BalanceSide) decimal.Decimal {
	if side == a.NormalBalance {
		return amount
	}

	return amount.Neg()
}

// ApplyPosting returns the balance after posting amount on side.
func (a *Account) ApplyPosting(amount decimal.Decimal, side BalanceSide) decimal.Decimal {
	return a.CurrentBalance.Add(a.PostingDelta(amount, side))
}

// AccountNode is an account with its resolved children.
type AccountNode struct {
	Account  *Account
	Children []*AccountNode
}

// BuildHierarchy arranges a flat account list into parent/child trees by
// matching ParentID. Accounts whose parent is absent from the input are
// treated as roots. Siblings are ordered by code so the result is
// independent of input order. Pure in-memory transform.
func BuildHierarchy(accounts []*Account) []*AccountNode {
	nodes := make(map[string]*AccountNode, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &AccountNode{Account: a}
	}

	var roots []*AccountNode
	for _, a := range accounts {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}

		roots = append(roots, node)
	}

	sortNodes(roots)

	return roots
}

func sortNodes(nodes []*AccountNode) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Account.Code < nodes[j].Account.Code
	})

	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// SubtreeBalance aggregates the node's balance with all descendant balances
// for reporting rollups.
func (n *AccountNode) SubtreeBalance() decimal.Decimal {
	total := n.Account.CurrentBalance
	for _, child := range n.Children {
		total = total.Add(child.SubtreeBalance())
	}

	return total
}
