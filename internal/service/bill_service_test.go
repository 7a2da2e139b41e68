package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
)

func createTestBill(t *testing.T, client *TabServiceClient, req *CreateBillRequest) *Bill {
	t.Helper()

	resp, err := client.CreateBill(context.Background(), connect.NewRequest(req))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	return resp.Msg.Bill
}

func claimAmounts(item LineItem) map[string]decimal.Decimal {
	amounts := make(map[string]decimal.Decimal, len(item.Claims))
	for _, c := range item.Claims {
		if c.CalculatedAmount.Valid {
			amounts[c.PersonID] = c.CalculatedAmount.Decimal
		}
	}
	return amounts
}

func TestCreateBill_CalculatesClaims(t *testing.T) {
	client := setupTestServer(t)
	tab, ids := createTestTab(t, client, &CreateTabRequest{Name: "Dinner", DefaultCurrency: "USD", People: peopleInput("Alice", "Bob", "Carol")})

	bill := createTestBill(t, client, &CreateBillRequest{
		TabID:       tab.ID,
		Description: "Pizza night",
		CreatorID:   ids["Alice"],
		PaidByID:    ids["Alice"],
		Date:        "2024-05-01",
		LineItems: []LineItemInput{
			{
				Description: "Pizza",
				Value:       d("30"),
				SplitType:   "shares",
				PersonSplits: []PersonSplit{
					{PersonID: ids["Alice"], SplitValue: nd("1")},
					{PersonID: ids["Bob"], SplitValue: nd("2")},
				},
			},
			{
				Description: "Wine",
				Value:       d("25"),
				SplitType:   "value",
				PersonSplits: []PersonSplit{
					{PersonID: ids["Bob"], SplitValue: nd("10")},
					{PersonID: ids["Carol"], SplitValue: nd("15")},
					{PersonID: ids["Alice"]},
				},
			},
		},
	})

	if bill.Currency != "USD" {
		t.Errorf("expected bill to default to tab currency USD, got %s", bill.Currency)
	}
	if bill.Status != "open" {
		t.Errorf("expected open bill, got %s", bill.Status)
	}
	if bill.Date != "2024-05-01" {
		t.Errorf("unexpected date %s", bill.Date)
	}
	if !bill.TotalAmount.Equal(d("55")) {
		t.Errorf("expected total 55, got %s", bill.TotalAmount)
	}
	if len(bill.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(bill.LineItems))
	}

	pizza := claimAmounts(bill.LineItems[0])
	if !pizza[ids["Alice"]].Equal(d("10")) || !pizza[ids["Bob"]].Equal(d("20")) {
		t.Errorf("unexpected pizza claims: %v", pizza)
	}

	wine := bill.LineItems[1]
	if len(wine.Claims) != 3 {
		t.Fatalf("expected 3 wine claims, got %d", len(wine.Claims))
	}
	amounts := claimAmounts(wine)
	if !amounts[ids["Bob"]].Equal(d("10")) || !amounts[ids["Carol"]].Equal(d("15")) {
		t.Errorf("unexpected wine claims: %v", amounts)
	}
	if _, ok := amounts[ids["Alice"]]; ok {
		t.Error("a claim without split value should have no calculated amount")
	}

	got, err := client.GetBill(context.Background(), connect.NewRequest(&GetBillRequest{BillID: bill.ID}))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Msg.Bill.PaidByID != ids["Alice"] || len(got.Msg.Bill.LineItems) != 2 {
		t.Errorf("unexpected stored bill: %+v", got.Msg.Bill)
	}
	if stored := claimAmounts(got.Msg.Bill.LineItems[0]); !stored[ids["Bob"]].Equal(d("20")) {
		t.Errorf("claims not persisted: %v", stored)
	}
}

func TestCreateBill_Validation(t *testing.T) {
	client := setupTestServer(t)
	tab, ids := createTestTab(t, client, &CreateTabRequest{Name: "Trip", People: peopleInput("Alice", "Bob")})
	_, otherIDs := createTestTab(t, client, &CreateTabRequest{Name: "Other", People: peopleInput("Mallory")})

	valid := func() *CreateBillRequest {
		return &CreateBillRequest{
			TabID:       tab.ID,
			Description: "Taxi",
			Currency:    "GBP",
			CreatorID:   ids["Alice"],
			PaidByID:    ids["Alice"],
			LineItems: []LineItemInput{{
				Description:  "Ride",
				Value:        d("20"),
				SplitType:    "value",
				PersonSplits: []PersonSplit{{PersonID: ids["Bob"], SplitValue: nd("20")}},
			}},
		}
	}

	tests := []struct {
		name   string
		mutate func(r *CreateBillRequest)
		code   connect.Code
	}{
		{"unknown tab", func(r *CreateBillRequest) { r.TabID = "missing" }, connect.CodeNotFound},
		{"missing description", func(r *CreateBillRequest) { r.Description = "" }, connect.CodeInvalidArgument},
		{"bad currency", func(r *CreateBillRequest) { r.Currency = "BTC" }, connect.CodeInvalidArgument},
		{"creator not on tab", func(r *CreateBillRequest) { r.CreatorID = otherIDs["Mallory"] }, connect.CodeInvalidArgument},
		{"payer not on tab", func(r *CreateBillRequest) { r.PaidByID = otherIDs["Mallory"] }, connect.CodeInvalidArgument},
		{"bad date", func(r *CreateBillRequest) { r.Date = "01/05/2024" }, connect.CodeInvalidArgument},
		{"value split exceeds line item", func(r *CreateBillRequest) {
			r.LineItems[0].PersonSplits = []PersonSplit{
				{PersonID: ids["Alice"], SplitValue: nd("15")},
				{PersonID: ids["Bob"], SplitValue: nd("5.01")},
			}
		}, connect.CodeInvalidArgument},
		{"negative split value", func(r *CreateBillRequest) {
			r.LineItems[0].PersonSplits[0].SplitValue = nd("-1")
		}, connect.CodeInvalidArgument},
		{"claimant not on tab", func(r *CreateBillRequest) {
			r.LineItems[0].PersonSplits[0].PersonID = otherIDs["Mallory"]
		}, connect.CodeInvalidArgument},
		{"duplicate claimant", func(r *CreateBillRequest) {
			r.LineItems[0].PersonSplits = []PersonSplit{
				{PersonID: ids["Bob"], SplitValue: nd("5")},
				{PersonID: ids["Bob"], SplitValue: nd("5")},
			}
		}, connect.CodeInvalidArgument},
		{"zero line item value", func(r *CreateBillRequest) { r.LineItems[0].Value = decimal.Zero }, connect.CodeInvalidArgument},
		{"unknown split type", func(r *CreateBillRequest) { r.LineItems[0].SplitType = "percent" }, connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			_, err := client.CreateBill(context.Background(), connect.NewRequest(req))
			wantCode(t, err, tt.code)
		})
	}

	t.Run("valid request succeeds", func(t *testing.T) {
		createTestBill(t, client, valid())
	})
}

func TestSubmitBillSplits_ReplacesClaims(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	tab, ids := createTestTab(t, client, &CreateTabRequest{Name: "Groceries", People: peopleInput("Alice", "Bob", "Carol")})

	bill := createTestBill(t, client, &CreateBillRequest{
		TabID:       tab.ID,
		Description: "Market",
		CreatorID:   ids["Alice"],
		PaidByID:    ids["Alice"],
		LineItems: []LineItemInput{
			{Description: "Fruit", Value: d("12"), PersonSplits: []PersonSplit{{PersonID: ids["Bob"], SplitValue: nd("1")}}},
			{Description: "Bread", Value: d("4"), PersonSplits: []PersonSplit{{PersonID: ids["Carol"], SplitValue: nd("1")}}},
		},
	})
	fruit, bread := bill.LineItems[0], bill.LineItems[1]

	resp, err := client.SubmitBillSplits(ctx, connect.NewRequest(&SubmitBillSplitsRequest{
		BillID: bill.ID,
		LineItemSplits: []LineItemSplits{{
			LineItemID: fruit.ID,
			PersonSplits: []PersonSplit{
				{PersonID: ids["Bob"], SplitValue: nd("1")},
				{PersonID: ids["Carol"], SplitValue: nd("2")},
			},
		}},
	}))
	if err != nil {
		t.Fatalf("SubmitBillSplits failed: %v", err)
	}

	updated := resp.Msg.Bill
	fruitClaims := claimAmounts(updated.LineItems[0])
	if len(updated.LineItems[0].Claims) != 2 {
		t.Fatalf("expected old fruit claims to be replaced, got %d claims", len(updated.LineItems[0].Claims))
	}
	if !fruitClaims[ids["Bob"]].Equal(d("4")) || !fruitClaims[ids["Carol"]].Equal(d("8")) {
		t.Errorf("unexpected fruit claims: %v", fruitClaims)
	}

	breadClaims := claimAmounts(updated.LineItems[1])
	if updated.LineItems[1].ID != bread.ID || !breadClaims[ids["Carol"]].Equal(d("4")) {
		t.Errorf("untouched line item changed: %v", breadClaims)
	}

	t.Run("unknown line item", func(t *testing.T) {
		_, err := client.SubmitBillSplits(ctx, connect.NewRequest(&SubmitBillSplitsRequest{
			BillID:         bill.ID,
			LineItemSplits: []LineItemSplits{{LineItemID: "nope"}},
		}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("invalid split leaves claims alone", func(t *testing.T) {
		_, err := client.SubmitBillSplits(ctx, connect.NewRequest(&SubmitBillSplitsRequest{
			BillID: bill.ID,
			LineItemSplits: []LineItemSplits{
				{LineItemID: bread.ID, PersonSplits: []PersonSplit{{PersonID: ids["Alice"], SplitValue: nd("1")}}},
				{LineItemID: fruit.ID, PersonSplits: []PersonSplit{{PersonID: ids["Bob"], SplitValue: nd("-3")}}},
			},
		}))
		wantCode(t, err, connect.CodeInvalidArgument)

		got, err := client.GetBill(ctx, connect.NewRequest(&GetBillRequest{BillID: bill.ID}))
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if claims := claimAmounts(got.Msg.Bill.LineItems[1]); !claims[ids["Carol"]].Equal(d("4")) || len(claims) != 1 {
			t.Errorf("bread claims changed by rejected request: %v", claims)
		}
	})

	t.Run("unknown bill", func(t *testing.T) {
		_, err := client.SubmitBillSplits(ctx, connect.NewRequest(&SubmitBillSplitsRequest{BillID: "missing"}))
		wantCode(t, err, connect.CodeNotFound)
	})
}

func TestUpdateBillStatus(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	tab, ids := createTestTab(t, client, &CreateTabRequest{Name: "Trip", People: peopleInput("Alice")})
	bill := createTestBill(t, client, &CreateBillRequest{TabID: tab.ID, Description: "Hotel", CreatorID: ids["Alice"]})

	resp, err := client.UpdateBillStatus(ctx, connect.NewRequest(&UpdateBillStatusRequest{BillID: bill.ID, Status: "all_paid"}))
	if err != nil {
		t.Fatalf("UpdateBillStatus failed: %v", err)
	}
	if resp.Msg.Bill.Status != "all_paid" {
		t.Errorf("expected all_paid, got %s", resp.Msg.Bill.Status)
	}

	_, err = client.UpdateBillStatus(ctx, connect.NewRequest(&UpdateBillStatusRequest{BillID: bill.ID, Status: "closed"}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = client.UpdateBillStatus(ctx, connect.NewRequest(&UpdateBillStatusRequest{BillID: "missing", Status: "archived"}))
	wantCode(t, err, connect.CodeNotFound)
}

func TestListBills(t *testing.T) {
	client := setupTestServer(t)
	first, firstIDs := createTestTab(t, client, &CreateTabRequest{Name: "A", People: peopleInput("Alice")})
	second, secondIDs := createTestTab(t, client, &CreateTabRequest{Name: "B", People: peopleInput("Bob")})

	createTestBill(t, client, &CreateBillRequest{TabID: first.ID, Description: "One", CreatorID: firstIDs["Alice"]})
	createTestBill(t, client, &CreateBillRequest{TabID: first.ID, Description: "Two", CreatorID: firstIDs["Alice"]})
	createTestBill(t, client, &CreateBillRequest{TabID: second.ID, Description: "Three", CreatorID: secondIDs["Bob"]})

	tests := []struct {
		tabID string
		want  int
	}{
		{first.ID, 2},
		{second.ID, 1},
		{"", 3},
	}
	for _, tt := range tests {
		resp, err := client.ListBills(context.Background(), connect.NewRequest(&ListBillsRequest{TabID: tt.tabID}))
		if err != nil {
			t.Fatalf("ListBills(%q) failed: %v", tt.tabID, err)
		}
		if len(resp.Msg.Bills) != tt.want {
			t.Errorf("ListBills(%q) = %d bills, want %d", tt.tabID, len(resp.Msg.Bills), tt.want)
		}
	}
}
