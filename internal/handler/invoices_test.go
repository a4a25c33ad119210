package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/accounting"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/database"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/handler"
	"github.com/umami-pos/api/internal/order"
)

func setupInvoiceRouter(t *testing.T, store database.DocumentStore) (*chi.Mux, *accounting.Billing) {
	t.Helper()
	invoices := collection.NewRemote[accounting.Invoice](context.Background(), store, enum.CollectionInvoices)
	billing := accounting.NewBilling(invoices)
	r := chi.NewRouter()
	r.Route("/invoices", handler.NewInvoiceHandler(billing).RegisterRoutes)
	return r, billing
}

func postInvoice(t *testing.T, router http.Handler, body map[string]string) map[string]interface{} {
	t.Helper()
	rr := doRequest(t, router, "POST", "/invoices", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create invoice: got %d; body: %s", rr.Code, rr.Body.String())
	}
	return decodeObject(t, rr)
}

func TestInvoiceCreate(t *testing.T) {
	router, _ := setupInvoiceRouter(t, database.NewMemoryStore())

	resp := postInvoice(t, router, map[string]string{"customer_name": "Harbor Hotel", "total": "1250", "date": "2024-06-01"})

	if resp["status"] != enum.InvoiceStatusPending {
		t.Errorf("status: got %v", resp["status"])
	}
	if resp["total"] != "1250.00" || resp["date"] != "2024-06-01" {
		t.Errorf("unexpected invoice: %v", resp)
	}
	if _, ok := resp["order_id"]; ok {
		t.Error("manual invoice must not carry an order id")
	}
}

func TestInvoiceCreate_Invalid(t *testing.T) {
	router, _ := setupInvoiceRouter(t, database.NewMemoryStore())

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing customer", map[string]string{"total": "10"}},
		{"unknown status", map[string]string{"customer_name": "A", "total": "10", "status": "VOID"}},
		{"negative total", map[string]string{"customer_name": "A", "total": "-10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := doRequest(t, router, "POST", "/invoices", tt.body); rr.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestInvoiceList_SearchAndStatus(t *testing.T) {
	router, _ := setupInvoiceRouter(t, database.NewMemoryStore())
	first := postInvoice(t, router, map[string]string{"customer_name": "Harbor Hotel", "total": "100"})
	postInvoice(t, router, map[string]string{"customer_name": "Lotus Events", "total": "200", "status": "PAID"})
	postInvoice(t, router, map[string]string{"customer_name": "Harbor Marina", "total": "300", "status": "OVERDUE"})

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?search=harbor", 2},
		{"?search=lotus", 1},
		{"?status=PAID", 1},
		{"?search=harbor&status=OVERDUE", 1},
		{"?search=" + first["id"].(string), 1},
	}
	for _, tt := range tests {
		rr := doRequest(t, router, "GET", "/invoices"+tt.query, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", tt.query, rr.Code)
		}
		if got := len(decodeList(t, rr)); got != tt.want {
			t.Errorf("%s: got %d invoices, want %d", tt.query, got, tt.want)
		}
	}

	if rr := doRequest(t, router, "GET", "/invoices?status=VOID", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown status filter: got %d", rr.Code)
	}
}

func TestInvoiceUpdateStatus(t *testing.T) {
	router, _ := setupInvoiceRouter(t, database.NewMemoryStore())
	created := postInvoice(t, router, map[string]string{"customer_name": "Harbor Hotel", "total": "100"})
	id := created["id"].(string)

	rr := doRequest(t, router, "PATCH", "/invoices/"+id+"/status", map[string]string{"status": "PAID"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	resp := decodeObject(t, doRequest(t, router, "GET", "/invoices/"+id, nil))
	if resp["status"] != enum.InvoiceStatusPaid {
		t.Errorf("stored status: got %v", resp["status"])
	}
}

func TestInvoiceUpdateStatus_Errors(t *testing.T) {
	router, _ := setupInvoiceRouter(t, database.NewMemoryStore())
	created := postInvoice(t, router, map[string]string{"customer_name": "Harbor Hotel", "total": "100"})
	id := created["id"].(string)

	tests := []struct {
		name string
		path string
		body map[string]string
		want int
	}{
		{"missing status", "/invoices/" + id + "/status", map[string]string{}, http.StatusBadRequest},
		{"unknown status", "/invoices/" + id + "/status", map[string]string{"status": "VOID"}, http.StatusBadRequest},
		{"unknown invoice", "/invoices/missing/status", map[string]string{"status": "PAID"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := doRequest(t, router, "PATCH", tt.path, tt.body); rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestInvoiceGet_NotFound(t *testing.T) {
	router, _ := setupInvoiceRouter(t, database.NewMemoryStore())

	if rr := doRequest(t, router, "GET", "/invoices/missing", nil); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestInvoiceList_ShowsInvoicedOrder(t *testing.T) {
	router, billing := setupInvoiceRouter(t, database.NewMemoryStore())
	book := order.NewBook(collection.NewLocal[order.Order](nil), order.Notifiers{billing})

	o, err := order.New(order.Details{
		CustomerName: "Walk-in",
		AmountPaid:   decimal.RequireFromString("15"),
		Destination:  order.Destination{Takeaway: true},
	}, nil, decimal.RequireFromString("15"), time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	placed, err := book.Place(context.Background(), o)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	resp := decodeList(t, doRequest(t, router, "GET", "/invoices?search=walk-in", nil))
	if len(resp) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(resp))
	}
	if resp[0]["order_id"] != placed.ID || resp[0]["status"] != enum.InvoiceStatusPaid || resp[0]["date"] != "2024-06-03" {
		t.Errorf("unexpected invoice: %v", resp[0])
	}
}
