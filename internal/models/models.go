package models

import (
	"errors"
	"strings"
	"time"
)

// Client-side mirrors of the remote GraphQL types. JSON tags follow the wire
// schema exactly; note that the upstream schema spells "describtion" with a b.

var (
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyShort       = errors.New("empty short code")
	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyDescribtion = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type SavingDepot struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Short        string              `json:"short"`
	Currency     string              `json:"currency,omitempty"`
	Savinggoal   float64             `json:"savinggoal,omitempty"`
	Sum          float64             `json:"sum"`
	Transactions []SavingTransaction `json:"transactions"`
}

// SavingTransaction amounts are signed: positive deposits, negative withdrawals.
type SavingTransaction struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Describtion string    `json:"describtion"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Expense struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	Currency          string               `json:"currency,omitempty"`
	Archived          bool                 `json:"archived"`
	MonthlyRecurring  bool                 `json:"monthlyRecurring,omitempty"`
	SpendingLimit     float64              `json:"spendingLimit,omitempty"`
	Sum               float64              `json:"sum"`
	Transactions      []ExpenseTransaction `json:"transactions"`
	ExpenseByCategory []CategorySum        `json:"expenseByCategory,omitempty"`
}

type ExpenseTransaction struct {
	ID          string           `json:"id"`
	Amount      float64          `json:"amount"`
	Describtion string           `json:"describtion"`
	CreatedAt   time.Time        `json:"createdAt"`
	Category    *ExpenseCategory `json:"category,omitempty"`
}

type ExpenseCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// ExpenseTransactionTemplate prefills repeated transactions.
type ExpenseTransactionTemplate struct {
	ID          string           `json:"id"`
	Describtion string           `json:"describtion"`
	Amount      float64          `json:"amount"`
	Category    *ExpenseCategory `json:"category,omitempty"`
}

type CategorySum struct {
	Category ExpenseCategory `json:"category"`
	Sum      float64         `json:"sum"`
}

// Summary is the server-computed aggregate shown on the dashboard. Partial
// updates are possible, so the cache shallow-merges incoming summaries. The
// fields must not carry omitempty: a full refetch has to serialize explicit
// zeros so a value that dropped back to zero overwrites the cached one.
type Summary struct {
	SavingSum    float64 `json:"savingSum"`
	ExpenseTotal float64 `json:"expenseTotal"`
	SpendToday   float64 `json:"spendToday"`
	NetWorth     float64 `json:"netWorth"`
}

func (d SavingDepot) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Short) == "" {
		return ErrEmptyShort
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

func (t SavingTransaction) Validate() error {
	if strings.TrimSpace(t.Describtion) == "" {
		return ErrEmptyDescribtion
	}
	if t.Amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t ExpenseTransaction) Validate() error {
	if strings.TrimSpace(t.Describtion) == "" {
		return ErrEmptyDescribtion
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c ExpenseCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
