package accounting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/database"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/order"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var fixedDay = time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

func newJournal() *Journal {
	j := NewJournal(collection.NewLocal[Entry](nil))
	j.now = func() time.Time { return fixedDay }
	return j
}

func newBilling() *Billing {
	b := NewBilling(collection.NewLocal[Invoice](nil))
	b.now = func() time.Time { return fixedDay }
	return b
}

// --- Entries ---

func TestEntryFields_Validation(t *testing.T) {
	tests := []struct {
		name    string
		fields  EntryFields
		wantErr bool
		amount  string
		date    string
	}{
		{"income", EntryFields{Date: "2024-01-02", Type: "INCOME", Description: "Catering", Amount: "120.50"}, false, "120.50", "2024-01-02"},
		{"expense is negative", EntryFields{Date: "2024-01-02", Type: "EXPENSE", Description: "Gas", Amount: "40"}, false, "-40", "2024-01-02"},
		{"lowercase type", EntryFields{Type: "expense", Description: "Gas", Amount: "1"}, false, "-1", "2024-03-09"},
		{"empty date is today", EntryFields{Type: "INCOME", Description: "Tips", Amount: "5"}, false, "5", "2024-03-09"},
		{"bad date", EntryFields{Date: "09/03/2024", Type: "INCOME", Description: "x", Amount: "5"}, true, "", ""},
		{"unknown type", EntryFields{Type: "LOAN", Description: "x", Amount: "5"}, true, "", ""},
		{"missing description", EntryFields{Type: "INCOME", Description: "  ", Amount: "5"}, true, "", ""},
		{"zero amount", EntryFields{Type: "INCOME", Description: "x", Amount: "0"}, true, "", ""},
		{"negative amount", EntryFields{Type: "EXPENSE", Description: "x", Amount: "-3"}, true, "", ""},
		{"not a number", EntryFields{Type: "INCOME", Description: "x", Amount: "ten"}, true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.fields.entry(fixedDay)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEntry) {
					t.Fatalf("expected ErrInvalidEntry, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !e.Amount.Equal(dec(tt.amount)) {
				t.Errorf("amount: got %s, want %s", e.Amount, tt.amount)
			}
			if e.Date != tt.date {
				t.Errorf("date: got %s, want %s", e.Date, tt.date)
			}
		})
	}
}

func TestMatchEntries(t *testing.T) {
	entries := []Entry{
		{ID: "1", Type: enum.EntryTypeIncome, Description: "Weekend catering"},
		{ID: "2", Type: enum.EntryTypeExpense, Description: "Gas bill"},
		{ID: "3", Type: enum.EntryTypeExpense, Description: "Fish market"},
	}

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"CATER", []string{"1"}},
		{"expense", []string{"2", "3"}},
		{"bill", []string{"2"}},
		{"rent", nil},
	}
	for _, tt := range tests {
		got := MatchEntries(entries, tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %d entries, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i, e := range got {
			if e.ID != tt.want[i] {
				t.Errorf("%q: entry %d is %s, want %s", tt.term, i, e.ID, tt.want[i])
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	totals := Summarize([]Entry{
		{Type: enum.EntryTypeIncome, Amount: dec("500")},
		{Type: enum.EntryTypeIncome, Amount: dec("250.25")},
		{Type: enum.EntryTypeExpense, Amount: dec("-300")},
		{Type: enum.EntryTypeExpense, Amount: dec("-100.50")},
	})

	if !totals.Income.Equal(dec("750.25")) {
		t.Errorf("income: got %s", totals.Income)
	}
	if !totals.Expense.Equal(dec("400.50")) {
		t.Errorf("expense: got %s", totals.Expense)
	}
	if !totals.Balance.Equal(dec("349.75")) {
		t.Errorf("balance: got %s", totals.Balance)
	}
}

func TestSummarize_Empty(t *testing.T) {
	totals := Summarize(nil)
	if !totals.Balance.IsZero() || !totals.Income.IsZero() || !totals.Expense.IsZero() {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}

func TestJournal_AddUpdateDelete(t *testing.T) {
	ctx := context.Background()
	j := newJournal()

	e, err := j.Add(ctx, EntryFields{Type: "EXPENSE", Description: "Flour", Amount: "80"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected generated id")
	}

	updated, err := j.Update(ctx, e.ID, EntryFields{Date: "2024-03-01", Type: "INCOME", Description: "Refund", Amount: "80"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != e.ID || !updated.Amount.Equal(dec("80")) || updated.Date != "2024-03-01" {
		t.Errorf("unexpected update result: %+v", updated)
	}
	got, _ := j.Get(e.ID)
	if got.Description != "Refund" {
		t.Errorf("stored description: got %q", got.Description)
	}
	if !j.Totals().Balance.Equal(dec("80")) {
		t.Errorf("balance after update: got %s", j.Totals().Balance)
	}

	if err := j.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := j.Get(e.ID); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestJournal_UpdateMissing(t *testing.T) {
	j := newJournal()
	_, err := j.Update(context.Background(), "nope", EntryFields{Type: "INCOME", Description: "x", Amount: "1"})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestJournal_InvalidAddStoresNothing(t *testing.T) {
	j := newJournal()
	if _, err := j.Add(context.Background(), EntryFields{Type: "INCOME", Amount: "1"}); err == nil {
		t.Fatal("expected error")
	}
	if len(j.List("")) != 0 {
		t.Error("invalid entry was stored")
	}
}

func TestJournal_TotalsIgnoreSearch(t *testing.T) {
	ctx := context.Background()
	j := newJournal()
	j.Add(ctx, EntryFields{Type: "INCOME", Description: "Lunch service", Amount: "100"})
	j.Add(ctx, EntryFields{Type: "EXPENSE", Description: "Napkins", Amount: "10"})

	if n := len(j.List("napkins")); n != 1 {
		t.Errorf("search: got %d entries", n)
	}
	if !j.Totals().Balance.Equal(dec("90")) {
		t.Errorf("balance: got %s", j.Totals().Balance)
	}
}

func TestJournal_OverRemoteStore(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	j := NewJournal(collection.NewRemote[Entry](ctx, store, enum.CollectionEntries))

	e, err := j.Add(ctx, EntryFields{Date: "2024-02-02", Type: "EXPENSE", Description: "Rent", Amount: "900"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	docs, err := store.ListAll(ctx, enum.CollectionEntries)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != e.ID {
		t.Fatalf("expected the entry stored under its store id, got %+v", docs)
	}
	var stored map[string]interface{}
	if err := json.Unmarshal(docs[0].Data, &stored); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stored["amount"] != "-900" {
		t.Errorf("stored amount: got %v", stored["amount"])
	}
	if !j.Totals().Expense.Equal(dec("900")) {
		t.Errorf("expense: got %s", j.Totals().Expense)
	}
}

// --- Invoices ---

func TestInvoiceFields_Validation(t *testing.T) {
	tests := []struct {
		name    string
		fields  InvoiceFields
		wantErr bool
		status  string
	}{
		{"defaults to pending", InvoiceFields{CustomerName: "ACME", Total: "10"}, false, enum.InvoiceStatusPending},
		{"explicit status", InvoiceFields{CustomerName: "ACME", Status: "overdue", Total: "10"}, false, enum.InvoiceStatusOverdue},
		{"zero total", InvoiceFields{CustomerName: "ACME", Total: "0"}, false, enum.InvoiceStatusPending},
		{"missing customer", InvoiceFields{Total: "10"}, true, ""},
		{"unknown status", InvoiceFields{CustomerName: "ACME", Status: "VOID", Total: "10"}, true, ""},
		{"negative total", InvoiceFields{CustomerName: "ACME", Total: "-1"}, true, ""},
		{"bad date", InvoiceFields{CustomerName: "ACME", Date: "yesterday", Total: "1"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := tt.fields.invoice(fixedDay)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInvoice) {
					t.Fatalf("expected ErrInvalidInvoice, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if inv.Status != tt.status {
				t.Errorf("status: got %s, want %s", inv.Status, tt.status)
			}
		})
	}
}

func TestMatchInvoices(t *testing.T) {
	invoices := []Invoice{
		{ID: "INV-001", CustomerName: "Sakura Catering"},
		{ID: "INV-002", CustomerName: "Blue Fin Ltd"},
	}
	if got := MatchInvoices(invoices, "inv-002"); len(got) != 1 || got[0].ID != "INV-002" {
		t.Errorf("by id: got %+v", got)
	}
	if got := MatchInvoices(invoices, "sakura"); len(got) != 1 || got[0].ID != "INV-001" {
		t.Errorf("by customer: got %+v", got)
	}
	if got := MatchInvoices(invoices, " "); len(got) != 2 {
		t.Errorf("blank term: got %d", len(got))
	}
}

func placedOrder(paid, total string) order.Order {
	return order.Order{
		ID:           "order-1",
		CustomerName: "Table guest",
		AmountPaid:   dec(paid),
		Total:        dec(total),
		CreatedAt:    time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC),
		Status:       enum.OrderStatusPending,
	}
}

func TestBilling_InvoiceOrderStatusFromPayment(t *testing.T) {
	tests := []struct {
		name string
		paid string
		want string
	}{
		{"paid in full", "30.00", enum.InvoiceStatusPaid},
		{"overpaid", "50.00", enum.InvoiceStatusPaid},
		{"underpaid", "10.00", enum.InvoiceStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBilling()
			inv, err := b.InvoiceOrder(context.Background(), placedOrder(tt.paid, "30.00"))
			if err != nil {
				t.Fatalf("invoice: %v", err)
			}
			if inv.Status != tt.want {
				t.Errorf("status: got %s, want %s", inv.Status, tt.want)
			}
			if inv.Date != "2024-03-01" || inv.OrderID != "order-1" || !inv.Total.Equal(dec("30")) {
				t.Errorf("unexpected invoice: %+v", inv)
			}
		})
	}
}

func TestBilling_InvoiceOrderOnce(t *testing.T) {
	ctx := context.Background()
	b := newBilling()
	o := placedOrder("30", "30")

	first, err := b.InvoiceOrder(ctx, o)
	if err != nil {
		t.Fatalf("invoice: %v", err)
	}
	second, err := b.InvoiceOrder(ctx, o)
	if err != nil {
		t.Fatalf("invoice again: %v", err)
	}
	if first.ID != second.ID || len(b.List("")) != 1 {
		t.Errorf("expected one invoice, got %d", len(b.List("")))
	}
}

func TestBilling_NotifyInvoicesCreatedOrdersOnly(t *testing.T) {
	ctx := context.Background()
	b := newBilling()
	o := placedOrder("30", "30")

	b.Notify(ctx, enum.EventOrderUpdated, o)
	b.Notify(ctx, enum.EventOrderDeleted, o)
	if len(b.List("")) != 0 {
		t.Fatal("non-creation events must not invoice")
	}

	b.Notify(ctx, enum.EventOrderCreated, o)
	if len(b.List("")) != 1 {
		t.Errorf("expected one invoice, got %d", len(b.List("")))
	}
}

func TestBilling_PlacedOrderIsInvoiced(t *testing.T) {
	ctx := context.Background()
	b := newBilling()
	book := order.NewBook(collection.NewLocal[order.Order](nil), order.Notifiers{b})

	placed, err := book.Place(ctx, placedOrder("12", "12"))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	all := b.List("")
	if len(all) != 1 || all[0].OrderID != placed.ID {
		t.Fatalf("expected invoice for %s, got %+v", placed.ID, all)
	}
}

func TestBilling_SetStatus(t *testing.T) {
	ctx := context.Background()
	b := newBilling()
	inv, err := b.Create(ctx, InvoiceFields{CustomerName: "ACME", Total: "99.90"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := b.SetStatus(ctx, inv.ID, "paid")
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if got.Status != enum.InvoiceStatusPaid {
		t.Errorf("status: got %s", got.Status)
	}
	stored, _ := b.Get(inv.ID)
	if stored.Status != enum.InvoiceStatusPaid {
		t.Errorf("stored status: got %s", stored.Status)
	}

	if _, err := b.SetStatus(ctx, inv.ID, "VOID"); !errors.Is(err, ErrInvalidInvoice) {
		t.Errorf("expected ErrInvalidInvoice, got %v", err)
	}
	if _, err := b.SetStatus(ctx, "missing", enum.InvoiceStatusPaid); !errors.Is(err, ErrInvoiceNotFound) {
		t.Errorf("expected ErrInvoiceNotFound, got %v", err)
	}
}
