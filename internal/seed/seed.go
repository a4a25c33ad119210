// Package seed loads the initial admin account and the starter catalog.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/catalog"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/database"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/user"
)

// SnapshotKey is the kv entry recording a completed seed.
const SnapshotKey = "seed.snapshot"

// Admin is the first back-office account.
type Admin struct {
	Username string
	Name     string
	Email    string
	Password string
}

// Snapshot is what a completed seed wrote.
type Snapshot struct {
	SeededAt   time.Time `json:"seeded_at"`
	AdminID    string    `json:"admin_id"`
	Products   int       `json:"products"`
	Categories int       `json:"categories"`
	Warehouse  int       `json:"warehouse"`
}

var categories = []catalog.Category{
	{Name: "Hamburguesas", Description: "Hamburguesas a la parrilla"},
	{Name: "Pizzas", Description: "Pizzas al horno"},
	{Name: "Ensaladas"},
	{Name: "Bebidas"},
}

var products = []struct {
	name, price, category string
}{
	{"Hamburguesa Clásica", "12.50", "Hamburguesas"},
	{"Pizza Pepperoni", "15.00", "Pizzas"},
	{"Ensalada César", "9.75", "Ensaladas"},
	{"Refresco de Cola", "2.50", "Bebidas"},
	{"Agua Mineral", "1.50", "Bebidas"},
}

var warehouse = []catalog.WarehouseItem{
	{Name: "Carne de Hamburguesa (kg)", Stock: 20, MinStock: 5, Category: "Carnes"},
	{Name: "Pan de Hamburguesa (unidades)", Stock: 100, MinStock: 20, Category: "Panadería"},
	{Name: "Queso Cheddar (kg)", Stock: 15, MinStock: 4, Category: "Lácteos"},
	{Name: "Lechuga (unidades)", Stock: 30, MinStock: 10, Category: "Vegetales"},
	{Name: "Tomate (kg)", Stock: 25, MinStock: 8, Category: "Vegetales"},
	{Name: "Masa de Pizza (unidades)", Stock: 50, MinStock: 15, Category: "Panadería"},
	{Name: "Salsa de Tomate (litros)", Stock: 40, MinStock: 10, Category: "Salsas"},
	{Name: "Pepperoni (kg)", Stock: 10, MinStock: 3, Category: "Carnes"},
	{Name: "Refresco de Cola (latas)", Stock: 200, MinStock: 50, Category: "Bebidas"},
	{Name: "Patatas (kg)", Stock: 80, MinStock: 20, Category: "Vegetales"},
}

// Run seeds store once. A second run finds the snapshot in kv and returns
// it with seeded=false.
func Run(ctx context.Context, store database.DocumentStore, kv database.KVStore, admin Admin) (snap Snapshot, seeded bool, err error) {
	raw, err := kv.Get(ctx, SnapshotKey)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &snap); err != nil {
			return Snapshot{}, false, fmt.Errorf("decode seed snapshot: %w", err)
		}
		return snap, false, nil
	case !errors.Is(err, database.ErrNotFound):
		return Snapshot{}, false, fmt.Errorf("read seed snapshot: %w", err)
	}

	dir := user.NewDirectory(collection.NewRemote[user.User](ctx, store, enum.CollectionUsers))
	u, err := dir.Create(ctx, user.Fields{
		Username:       admin.Username,
		Name:           admin.Name,
		Email:          admin.Email,
		Role:           enum.UserRoleAdmin,
		RestaurantRole: "Gerente",
		Password:       admin.Password,
	})
	if err != nil && !errors.Is(err, user.ErrDuplicate) {
		return Snapshot{}, false, fmt.Errorf("seed admin: %w", err)
	}
	if err == nil {
		log.Printf("Created admin user '%s' (ID: %s)", u.Username, u.ID)
	} else {
		log.Printf("User '%s' already exists, skipping", admin.Username)
	}
	snap.AdminID = u.ID

	cats := collection.NewRemote[catalog.Category](ctx, store, enum.CollectionCategories)
	for _, c := range categories {
		if _, err := cats.Add(ctx, c); err != nil {
			return Snapshot{}, false, fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		snap.Categories++
	}

	prods := collection.NewRemote[catalog.Product](ctx, store, enum.CollectionProducts)
	for _, p := range products {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return Snapshot{}, false, fmt.Errorf("seed product %s: %w", p.name, err)
		}
		if _, err := prods.Add(ctx, catalog.Product{Name: p.name, Price: price, Category: p.category}); err != nil {
			return Snapshot{}, false, fmt.Errorf("seed product %s: %w", p.name, err)
		}
		snap.Products++
	}

	items := collection.NewRemote[catalog.WarehouseItem](ctx, store, enum.CollectionWarehouse)
	for _, it := range warehouse {
		if _, err := items.Add(ctx, it); err != nil {
			return Snapshot{}, false, fmt.Errorf("seed warehouse item %s: %w", it.Name, err)
		}
		snap.Warehouse++
	}

	snap.SeededAt = time.Now().UTC()
	b, err := json.Marshal(snap)
	if err != nil {
		return Snapshot{}, false, err
	}
	if err := kv.Put(ctx, SnapshotKey, b); err != nil {
		return Snapshot{}, false, fmt.Errorf("write seed snapshot: %w", err)
	}
	return snap, true, nil
}
