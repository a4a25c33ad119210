// Package accounting keeps the restaurant's income and expense records and
// its invoices.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/enum"
)

const dateLayout = "2006-01-02"

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidEntry  = errors.New("invalid entry")
)

// Entry is one income or expense record. Amount is signed: expenses are
// stored negative so a plain sum is the balance.
type Entry struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func (e Entry) GetID() string { return e.ID }

func (e Entry) WithID(id string) Entry {
	e.ID = id
	return e
}

// EntryFields is an entry as typed in. Amount is the unsigned magnitude;
// Type decides the sign. An empty Date means today.
type EntryFields struct {
	Date        string
	Type        string
	Description string
	Amount      string
}

func (f EntryFields) entry(today time.Time) (Entry, error) {
	e := Entry{
		Date:        strings.TrimSpace(f.Date),
		Type:        strings.ToUpper(strings.TrimSpace(f.Type)),
		Description: strings.TrimSpace(f.Description),
	}
	if e.Date == "" {
		e.Date = today.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return Entry{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEntry)
	}
	if e.Type != enum.EntryTypeIncome && e.Type != enum.EntryTypeExpense {
		return Entry{}, fmt.Errorf("%w: type must be INCOME or EXPENSE", ErrInvalidEntry)
	}
	if e.Description == "" {
		return Entry{}, fmt.Errorf("%w: description is required", ErrInvalidEntry)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(f.Amount))
	if err != nil || !amount.IsPositive() {
		return Entry{}, fmt.Errorf("%w: amount must be a positive number", ErrInvalidEntry)
	}
	if e.Type == enum.EntryTypeExpense {
		amount = amount.Neg()
	}
	e.Amount = amount
	return e, nil
}

// MatchEntries keeps the entries whose description or type contains term,
// ignoring case. An empty term keeps everything.
func MatchEntries(entries []Entry, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Description), term) ||
			strings.Contains(strings.ToLower(e.Type), term) {
			out = append(out, e)
		}
	}
	return out
}

// Totals sums a set of entries. Expense is reported as a magnitude.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

func Summarize(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		switch e.Type {
		case enum.EntryTypeIncome:
			t.Income = t.Income.Add(e.Amount)
		case enum.EntryTypeExpense:
			t.Expense = t.Expense.Add(e.Amount.Abs())
		}
	}
	t.Balance = t.Income.Sub(t.Expense)
	return t
}

// Journal is the accounting screen: entries over a collection store.
type Journal struct {
	store collection.Store[Entry]
	now   func() time.Time
}

func NewJournal(store collection.Store[Entry]) *Journal {
	return &Journal{store: store, now: time.Now}
}

// List returns entries matching term, newest first.
func (j *Journal) List(term string) []Entry {
	return MatchEntries(j.store.Documents(), term)
}

// Totals covers every entry regardless of any search.
func (j *Journal) Totals() Totals {
	return Summarize(j.store.Documents())
}

func (j *Journal) Get(id string) (Entry, error) {
	for _, e := range j.store.Documents() {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrEntryNotFound
}

func (j *Journal) Add(ctx context.Context, f EntryFields) (Entry, error) {
	e, err := f.entry(j.now())
	if err != nil {
		return Entry{}, err
	}
	e.ID = uuid.NewString()
	return j.store.Add(ctx, e)
}

func (j *Journal) Update(ctx context.Context, id string, f EntryFields) (Entry, error) {
	if _, err := j.Get(id); err != nil {
		return Entry{}, err
	}
	e, err := f.entry(j.now())
	if err != nil {
		return Entry{}, err
	}
	e.ID = id
	if err := j.store.Update(ctx, id, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Delete removes the entry. Unknown ids are ignored.
func (j *Journal) Delete(ctx context.Context, id string) error {
	return j.store.Remove(ctx, id)
}
