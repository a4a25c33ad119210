package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/catalog"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/database"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/handler"
)

func setupCategoryRouter(t *testing.T, store database.DocumentStore) (*chi.Mux, *collection.Remote[catalog.Category]) {
	t.Helper()
	categories := collection.NewRemote[catalog.Category](context.Background(), store, enum.CollectionCategories)
	h := handler.NewCategoryHandler(categories)
	r := chi.NewRouter()
	r.Route("/categories", h.RegisterRoutes)
	return r, categories
}

func TestCategoryList_Empty(t *testing.T) {
	router, _ := setupCategoryRouter(t, database.NewMemoryStore())

	rr := doRequest(t, router, "GET", "/categories", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := decodeList(t, rr); len(resp) != 0 {
		t.Errorf("expected empty list, got %d items", len(resp))
	}
}

func TestCategoryCreateAndList(t *testing.T) {
	router, _ := setupCategoryRouter(t, database.NewMemoryStore())

	rr := doRequest(t, router, "POST", "/categories", map[string]string{"name": "Drinks", "description": "Cold and hot"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	doRequest(t, router, "POST", "/categories", map[string]string{"name": "Desserts"})

	rr = doRequest(t, router, "GET", "/categories", nil)
	resp := decodeList(t, rr)
	if len(resp) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(resp))
	}
	if resp[0]["name"] != "Desserts" {
		t.Errorf("expected newest first, got %v", resp[0]["name"])
	}
}

func TestCategoryCreate_MissingName(t *testing.T) {
	router, _ := setupCategoryRouter(t, database.NewMemoryStore())

	rr := doRequest(t, router, "POST", "/categories", map[string]string{"description": "no name"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCategoryUpdate(t *testing.T) {
	router, categories := setupCategoryRouter(t, database.NewMemoryStore())
	created, _ := categories.Add(context.Background(), catalog.Category{Name: "Drinks"})

	rr := doRequest(t, router, "PUT", "/categories/"+created.ID, map[string]string{"name": "Beverages"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got := categories.Documents()[0].Name; got != "Beverages" {
		t.Errorf("name: got %s", got)
	}

	rr = doRequest(t, router, "PUT", "/categories/missing", map[string]string{"name": "X"})
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCategoryUpdate_OmittedDescriptionClearsIt(t *testing.T) {
	router, categories := setupCategoryRouter(t, database.NewMemoryStore())
	created, _ := categories.Add(context.Background(), catalog.Category{Name: "Drinks", Description: "Cold drinks"})

	rr := doRequest(t, router, "PUT", "/categories/"+created.ID, map[string]string{"name": "Drinks"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if got := categories.Documents()[0].Description; got != "" {
		t.Errorf("description: got %q, want empty", got)
	}
}

func TestCategoryDelete_StoreDown(t *testing.T) {
	router, categories := setupCategoryRouter(t, failingStore{database.NewMemoryStore()})

	rr := doRequest(t, router, "DELETE", "/categories/any", nil)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadGateway)
	}
	if categories.Err() == nil {
		t.Error("collection error flag not set")
	}
}
