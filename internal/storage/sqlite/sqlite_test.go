package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ninjatab/internal/models"
	"github.com/mmynk/ninjatab/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestTab(t *testing.T, store *SQLiteStore, names ...string) *models.Tab {
	t.Helper()

	tab := &models.Tab{Name: "Trip", DefaultCurrency: models.GBP}
	for _, n := range names {
		tab.People = append(tab.People, models.Person{Name: n})
	}
	if err := store.CreateTab(context.Background(), tab); err != nil {
		t.Fatalf("CreateTab failed: %v", err)
	}
	return tab
}

func TestTabs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateTab generates IDs", func(t *testing.T) {
		tab := &models.Tab{
			Name:            "Flat",
			DefaultCurrency: models.EUR,
			People: []models.Person{
				{Name: "Alice", Email: "alice@example.com"},
				{Name: "Bob"},
			},
		}
		if err := store.CreateTab(ctx, tab); err != nil {
			t.Fatalf("CreateTab failed: %v", err)
		}
		if tab.ID == "" || tab.CreatedAt == 0 {
			t.Error("Expected tab ID and CreatedAt to be set")
		}
		for _, p := range tab.People {
			if p.ID == "" || p.TabID != tab.ID {
				t.Errorf("person %s not linked: %+v", p.Name, p)
			}
		}

		got, err := store.GetTab(ctx, tab.ID)
		if err != nil {
			t.Fatalf("GetTab failed: %v", err)
		}
		if got.Name != "Flat" || got.DefaultCurrency != models.EUR {
			t.Errorf("unexpected tab: %+v", got)
		}
		if len(got.People) != 2 || got.People[0].Email != "alice@example.com" || got.People[1].Email != "" {
			t.Errorf("unexpected people: %+v", got.People)
		}
	})

	t.Run("duplicate email within a tab is rejected", func(t *testing.T) {
		tab := &models.Tab{
			Name:            "Dupes",
			DefaultCurrency: models.GBP,
			People: []models.Person{
				{Name: "A", Email: "same@example.com"},
				{Name: "B", Email: "same@example.com"},
			},
		}
		if err := store.CreateTab(ctx, tab); err == nil {
			t.Error("Expected unique constraint error")
		}
	})

	t.Run("GetTab returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetTab(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListTabs and DeleteTab", func(t *testing.T) {
		tab := createTestTab(t, store, "Zed")
		tabs, err := store.ListTabs(ctx)
		if err != nil {
			t.Fatalf("ListTabs failed: %v", err)
		}
		found := false
		for _, tb := range tabs {
			if tb.ID == tab.ID {
				found = true
			}
		}
		if !found {
			t.Error("created tab missing from ListTabs")
		}

		if err := store.DeleteTab(ctx, tab.ID); err != nil {
			t.Fatalf("DeleteTab failed: %v", err)
		}
		if err := store.DeleteTab(ctx, tab.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteTab: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SetTabSettled", func(t *testing.T) {
		tab := createTestTab(t, store, "Yan")
		if err := store.SetTabSettled(ctx, tab.ID, true); err != nil {
			t.Fatalf("SetTabSettled failed: %v", err)
		}
		got, _ := store.GetTab(ctx, tab.ID)
		if !got.IsSettled {
			t.Error("Expected tab to be settled")
		}
	})
}

func TestBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tab := createTestTab(t, store, "Alice", "Bob")
	alice, bob := tab.People[0].ID, tab.People[1].ID

	bill := &models.Bill{
		TabID:       tab.ID,
		Description: "Dinner",
		Currency:    models.GBP,
		CreatorID:   alice,
		PaidByID:    alice,
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		LineItems: []models.LineItem{
			{
				Description: "Pizza",
				Value:       decimal.RequireFromString("30.00"),
				SplitType:   models.SplitTypeShares,
				Claims: []models.PersonClaim{
					{PersonID: alice, SplitValue: decimal.NewNullDecimal(decimal.NewFromInt(1)), CalculatedAmount: decimal.NewNullDecimal(decimal.RequireFromString("10.00"))},
					{PersonID: bob, SplitValue: decimal.NewNullDecimal(decimal.NewFromInt(2)), CalculatedAmount: decimal.NewNullDecimal(decimal.RequireFromString("20.00"))},
				},
			},
			{
				Description: "Wine",
				Value:       decimal.RequireFromString("12.50"),
				SplitType:   models.SplitTypeValue,
				Claims: []models.PersonClaim{
					{PersonID: bob},
				},
			},
		},
	}

	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.ID == "" || bill.Status != models.BillStatusOpen {
		t.Fatalf("Expected ID and default status, got %+v", bill)
	}

	t.Run("GetBill retrieves complete bill", func(t *testing.T) {
		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.PaidByID != alice || got.Currency != models.GBP || !got.Date.Equal(bill.Date) {
			t.Errorf("unexpected bill: %+v", got)
		}
		if len(got.LineItems) != 2 || got.LineItems[0].Description != "Pizza" {
			t.Fatalf("unexpected line items: %+v", got.LineItems)
		}
		if !got.TotalAmount().Equal(decimal.RequireFromString("42.50")) {
			t.Errorf("TotalAmount = %s, want 42.50", got.TotalAmount())
		}
		pizza := got.LineItems[0]
		if len(pizza.Claims) != 2 || pizza.Claims[1].PersonID != bob {
			t.Fatalf("unexpected claims: %+v", pizza.Claims)
		}
		if !pizza.Claims[1].CalculatedAmount.Valid || !pizza.Claims[1].CalculatedAmount.Decimal.Equal(decimal.NewFromInt(20)) {
			t.Errorf("bob amount = %+v, want 20", pizza.Claims[1].CalculatedAmount)
		}
		wine := got.LineItems[1]
		if len(wine.Claims) != 1 || wine.Claims[0].SplitValue.Valid || wine.Claims[0].CalculatedAmount.Valid {
			t.Errorf("expected null split values on wine claim, got %+v", wine.Claims)
		}
	})

	t.Run("ReplaceClaims discards previous claims", func(t *testing.T) {
		pizzaID := bill.LineItems[0].ID
		err := store.ReplaceClaims(ctx, map[string][]models.PersonClaim{
			pizzaID: {{PersonID: bob, SplitValue: decimal.NewNullDecimal(decimal.NewFromInt(1)), CalculatedAmount: decimal.NewNullDecimal(decimal.NewFromInt(30))}},
		})
		if err != nil {
			t.Fatalf("ReplaceClaims failed: %v", err)
		}
		got, _ := store.GetBill(ctx, bill.ID)
		claims := got.LineItems[0].Claims
		if len(claims) != 1 || claims[0].PersonID != bob {
			t.Errorf("expected only bob's claim, got %+v", claims)
		}
	})

	t.Run("duplicate claim is rejected and rolled back", func(t *testing.T) {
		wineID := bill.LineItems[1].ID
		err := store.ReplaceClaims(ctx, map[string][]models.PersonClaim{
			wineID: {{PersonID: alice}, {PersonID: alice}},
		})
		if err == nil {
			t.Fatal("Expected unique constraint error")
		}
		got, _ := store.GetBill(ctx, bill.ID)
		if len(got.LineItems[1].Claims) != 1 || got.LineItems[1].Claims[0].PersonID != bob {
			t.Errorf("claims changed despite failure: %+v", got.LineItems[1].Claims)
		}
	})

	t.Run("ListBills and UpdateBillStatus", func(t *testing.T) {
		if err := store.UpdateBillStatus(ctx, bill.ID, models.BillStatusArchived); err != nil {
			t.Fatalf("UpdateBillStatus failed: %v", err)
		}
		bills, err := store.ListBills(ctx, tab.ID)
		if err != nil {
			t.Fatalf("ListBills failed: %v", err)
		}
		if len(bills) != 1 || bills[0].Status != models.BillStatusArchived || len(bills[0].LineItems) != 2 {
			t.Errorf("unexpected bills: %+v", bills)
		}
		if err := store.UpdateBillStatus(ctx, "missing", models.BillStatusOpen); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetBill returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetBill(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestExchangeRates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range []*models.ExchangeRate{
		{From: models.USD, To: models.GBP, Rate: decimal.RequireFromString("0.812345"), EffectiveDate: jan},
		{From: models.USD, To: models.GBP, Rate: decimal.RequireFromString("0.790000"), EffectiveDate: feb},
	} {
		if err := store.CreateExchangeRate(ctx, r); err != nil {
			t.Fatalf("CreateExchangeRate failed: %v", err)
		}
	}

	tests := []struct {
		name string
		asOf time.Time
		want string
	}{
		{"before any rate", jan.Add(-time.Second), ""},
		{"exactly on effective date", jan, "0.812345"},
		{"between rates", feb.Add(-time.Hour), "0.812345"},
		{"after latest", feb.AddDate(0, 1, 0), "0.79"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := store.FindRate(ctx, models.USD, models.GBP, tt.asOf)
			if err != nil {
				t.Fatalf("FindRate failed: %v", err)
			}
			if tt.want == "" {
				if rate != nil {
					t.Errorf("Expected no rate, got %s", rate.Rate)
				}
				return
			}
			if rate == nil || !rate.Rate.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("FindRate = %+v, want %s", rate, tt.want)
			}
		})
	}

	t.Run("inverse pair is not returned", func(t *testing.T) {
		rate, err := store.FindRate(ctx, models.GBP, models.USD, feb)
		if err != nil || rate != nil {
			t.Errorf("Expected nil rate, got %+v, %v", rate, err)
		}
	})

	t.Run("ListExchangeRates newest first", func(t *testing.T) {
		rates, err := store.ListExchangeRates(ctx)
		if err != nil {
			t.Fatalf("ListExchangeRates failed: %v", err)
		}
		if len(rates) != 2 || !rates[0].EffectiveDate.Equal(feb) {
			t.Errorf("unexpected rates: %+v", rates)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tab := createTestTab(t, store, "Alice", "Bob", "Carol")
	alice, bob, carol := tab.People[0].ID, tab.People[1].ID, tab.People[2].ID

	first := []models.Settlement{
		{FromPersonID: bob, ToPersonID: alice, Amount: decimal.RequireFromString("10.00"), Currency: models.GBP},
	}
	if err := store.ReplaceSettlements(ctx, tab.ID, first); err != nil {
		t.Fatalf("ReplaceSettlements failed: %v", err)
	}
	if err := store.SetSettlementPaid(ctx, first[0].ID, true); err != nil {
		t.Fatalf("SetSettlementPaid failed: %v", err)
	}

	second := []models.Settlement{
		{FromPersonID: carol, ToPersonID: alice, Amount: decimal.RequireFromString("20.00"), Currency: models.GBP},
		{FromPersonID: bob, ToPersonID: alice, Amount: decimal.RequireFromString("5.55"), Currency: models.GBP},
	}
	if err := store.ReplaceSettlements(ctx, tab.ID, second); err != nil {
		t.Fatalf("ReplaceSettlements failed: %v", err)
	}

	got, err := store.ListSettlements(ctx, tab.ID)
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected previous set to be replaced, got %d settlements", len(got))
	}
	if got[0].FromPersonID != carol || got[1].FromPersonID != bob {
		t.Errorf("order not preserved: %+v", got)
	}
	if !got[1].Amount.Equal(decimal.RequireFromString("5.55")) || got[1].Paid {
		t.Errorf("unexpected settlement: %+v", got[1])
	}

	if err := store.SetSettlementPaid(ctx, first[0].ID, true); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("replaced settlement should be gone, got %v", err)
	}
}
