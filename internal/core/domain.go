package core

import (
	"errors"
	"strings"
	"time"
)

const (
	SourceBank Source = "bank"
	SourceCard Source = "card"

	Debit  TxnType = "debit"
	Credit TxnType = "credit"

	// AllPeople is the person filter value that matches every person.
	AllPeople = "all"
)

type (
	// Source tells which statement sheet a transaction came from.
	Source string

	TxnType string

	// Transaction is one row of the bank or credit card sheet.
	Transaction struct {
		Source       Source
		Position     int // 0-based data row position in its sheet
		Timestamp    time.Time
		Instant      time.Time // Timestamp converted to UTC when it had an offset
		Amount       Money
		Type         TxnType
		Category     string // provided by the bank
		UserCategory string // my_category, assigned by hand
		Person       string
		Account      string // account number or card number
		Institution  string // bank name or card name
		Merchant     string
		Notes        string
		Balance      Money
		HasBalance   bool
	}

	IncomeEntry struct {
		Month    Month
		Person   string
		Category string
		Amount   Money
	}

	BudgetEntry struct {
		Month    Month
		Person   string
		Category string
		Amount   Money
	}

	// SavingsAllocation is one row of the savings ledger.
	SavingsAllocation struct {
		Timestamp   time.Time
		Description string
		Amount      Money
		Goal        string
	}

	// Filter selects rows by person and month. An empty or "all" person
	// matches everyone; a zero month matches every month.
	Filter struct {
		Person string
		Month  Month
	}
)

var (
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownGoal      = errors.New("unknown savings goal")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyPerson      = errors.New("empty person")
	ErrEmptyCategory    = errors.New("empty category")
	ErrAlreadyAllocated = errors.New("transaction already allocated")
)

// CategoryOptions are the categories offered for manual assignment.
var CategoryOptions = []string{
	"EMI", "Food", "Home Expenses", "Leisure", "Personal Care", "Rent",
	"Savings", "Shopping", "Transport - External", "Transport - Internal",
	"Subscriptions", "Other",
}

// BudgetCategories are the expense lines of the budget planner.
var BudgetCategories = []string{
	"Rent", "Food", "Transport - Internal", "Transport - External",
	"Home Expenses", "EMI", "Personal Care", "Savings", "Shopping",
	"Leisure", "Subscriptions",
}

var IncomeCategories = []string{"Freelancing", "Salary"}

// SavingsGoals are the allowed targets of a savings allocation.
var SavingsGoals = []string{
	"Wedding Plan", "Gold Plan", "IITM Course", "CFA", "General Savings",
	"Emergency Fund",
}

var DefaultPeople = []string{"Divyaraj", "Nithya"}

// SavingsCategory is the user category that marks a bank transaction as
// money moved to savings.
const SavingsCategory = "savings"

// NormalizeKey folds a category or person for comparison.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameKey reports whether a and b are equal after trimming and case
// folding.
func SameKey(a, b string) bool {
	return NormalizeKey(a) == NormalizeKey(b)
}

// EffectiveCategory is the user category when set, else the bank one.
func (t Transaction) EffectiveCategory() string {
	if strings.TrimSpace(t.UserCategory) != "" {
		return strings.TrimSpace(t.UserCategory)
	}
	return strings.TrimSpace(t.Category)
}

func (t Transaction) IsDebit() bool {
	return SameKey(string(t.Type), string(Debit))
}

// MatchesPerson reports whether person passes the filter.
func (f Filter) MatchesPerson(person string) bool {
	p := NormalizeKey(f.Person)
	return p == "" || p == AllPeople || p == NormalizeKey(person)
}

// MatchesMonth reports whether m passes the filter.
func (f Filter) MatchesMonth(m Month) bool {
	return f.Month.IsZero() || f.Month == m
}

func (e IncomeEntry) Validate() error {
	return validateEntry(e.Month, e.Person, e.Category, e.Amount)
}

func (e BudgetEntry) Validate() error {
	return validateEntry(e.Month, e.Person, e.Category, e.Amount)
}

func validateEntry(m Month, person, category string, amount Money) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(person) == "" {
		return ErrEmptyPerson
	}
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	return amount.Validate()
}

func (a SavingsAllocation) Validate() error {
	if a.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if _, ok := lookup(SavingsGoals, a.Goal); !ok {
		return ErrUnknownGoal
	}
	return nil
}

// CanonicalGoal returns the goal spelled as in SavingsGoals.
func CanonicalGoal(goal string) (string, error) {
	g, ok := lookup(SavingsGoals, goal)
	if !ok {
		return "", ErrUnknownGoal
	}
	return g, nil
}

func lookup(list []string, v string) (string, bool) {
	for _, s := range list {
		if SameKey(s, v) {
			return s, true
		}
	}
	return "", false
}
