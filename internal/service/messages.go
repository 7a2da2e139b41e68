package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ninjatab/internal/calculator"
	"github.com/mmynk/ninjatab/internal/models"
)

// Request and response messages of TabService. Amounts travel as decimal
// strings and dates as YYYY-MM-DD.

const dateLayout = "2006-01-02"

type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Tab struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	DefaultCurrency    string   `json:"default_currency"`
	SettlementCurrency string   `json:"settlement_currency,omitempty"`
	IsSettled          bool     `json:"is_settled"`
	People             []Person `json:"people"`
	CreatedAt          int64    `json:"created_at"`
	UpdatedAt          int64    `json:"updated_at"`
}

type PersonInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type CreateTabRequest struct {
	Name               string        `json:"name"`
	Description        string        `json:"description,omitempty"`
	DefaultCurrency    string        `json:"default_currency"`
	SettlementCurrency string        `json:"settlement_currency,omitempty"`
	People             []PersonInput `json:"people"`
}

type CreateTabResponse struct {
	Tab *Tab `json:"tab"`
}

type GetTabRequest struct {
	TabID string `json:"tab_id"`
}

type GetTabResponse struct {
	Tab *Tab `json:"tab"`
}

type ListTabsRequest struct{}

type ListTabsResponse struct {
	Tabs []*Tab `json:"tabs"`
}

type DeleteTabRequest struct {
	TabID string `json:"tab_id"`
}

type DeleteTabResponse struct{}

type Claim struct {
	ID               string              `json:"id"`
	PersonID         string              `json:"person_id"`
	SplitValue       decimal.NullDecimal `json:"split_value"`
	CalculatedAmount decimal.NullDecimal `json:"calculated_amount"`
	HasClaimed       bool                `json:"has_claimed"`
}

type LineItem struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	SplitType   string          `json:"split_type"`
	Claims      []Claim         `json:"claims"`
}

type Bill struct {
	ID          string          `json:"id"`
	TabID       string          `json:"tab_id"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	CreatorID   string          `json:"creator_id"`
	PaidByID    string          `json:"paid_by_id,omitempty"`
	Date        string          `json:"date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	LineItems   []LineItem      `json:"line_items"`
	CreatedAt   int64           `json:"created_at"`
}

// PersonSplit is one person's raw split value for a line item. A missing
// split_value lists the person without an amount.
type PersonSplit struct {
	PersonID   string              `json:"person_id"`
	SplitValue decimal.NullDecimal `json:"split_value"`
}

type LineItemInput struct {
	Description  string          `json:"description"`
	Value        decimal.Decimal `json:"value"`
	SplitType    string          `json:"split_type"`
	PersonSplits []PersonSplit   `json:"person_splits"`
}

type CreateBillRequest struct {
	TabID       string          `json:"tab_id"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	CreatorID   string          `json:"creator_id"`
	PaidByID    string          `json:"paid_by_id,omitempty"`
	Date        string          `json:"date,omitempty"`
	LineItems   []LineItemInput `json:"line_items"`
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id"`
}

type GetBillResponse struct {
	Bill *Bill `json:"bill"`
}

type ListBillsRequest struct {
	// TabID filters the list; empty lists every bill.
	TabID string `json:"tab_id,omitempty"`
}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type LineItemSplits struct {
	LineItemID   string        `json:"line_item_id"`
	PersonSplits []PersonSplit `json:"person_splits"`
}

type SubmitBillSplitsRequest struct {
	BillID         string           `json:"bill_id"`
	LineItemSplits []LineItemSplits `json:"line_item_splits"`
}

type SubmitBillSplitsResponse struct {
	Bill *Bill `json:"bill"`
}

type UpdateBillStatusRequest struct {
	BillID string `json:"bill_id"`
	Status string `json:"status"`
}

type UpdateBillStatusResponse struct {
	Bill *Bill `json:"bill"`
}

type ExchangeRate struct {
	ID            string          `json:"id"`
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate string          `json:"effective_date"`
}

type CreateExchangeRateRequest struct {
	FromCurrency  string          `json:"from_currency"`
	ToCurrency    string          `json:"to_currency"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate string          `json:"effective_date,omitempty"`
}

type CreateExchangeRateResponse struct {
	Rate *ExchangeRate `json:"rate"`
}

type ListExchangeRatesRequest struct{}

type ListExchangeRatesResponse struct {
	Rates []*ExchangeRate `json:"rates"`
}

type ConvertAmountRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	// AsOf is a YYYY-MM-DD date; empty means today.
	AsOf string `json:"as_of,omitempty"`
}

type ConvertAmountResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}

type PersonBalance struct {
	PersonID   string          `json:"person_id"`
	PersonName string          `json:"person_name"`
	Balance    decimal.Decimal `json:"balance"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
}

type GetTabBalancesRequest struct {
	TabID string `json:"tab_id"`
	// Currency overrides the tab's settlement currency.
	Currency string `json:"currency,omitempty"`
}

type GetTabBalancesResponse struct {
	Currency string          `json:"currency"`
	Balances []PersonBalance `json:"balances"`
}

type Settlement struct {
	ID           string          `json:"id"`
	FromPersonID string          `json:"from_person_id"`
	ToPersonID   string          `json:"to_person_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Paid         bool            `json:"paid"`
	CreatedAt    int64           `json:"created_at"`
}

type SimplifyTabRequest struct {
	TabID string `json:"tab_id"`
	// Currency overrides the tab's settlement currency.
	Currency string `json:"currency,omitempty"`
}

type SimplifyTabResponse struct {
	Currency    string       `json:"currency"`
	Settlements []Settlement `json:"settlements"`
}

type ListSettlementsRequest struct {
	TabID string `json:"tab_id"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type MarkSettlementPaidRequest struct {
	SettlementID string `json:"settlement_id"`
	Paid         bool   `json:"paid"`
}

type MarkSettlementPaidResponse struct{}

func tabToMessage(tab *models.Tab) *Tab {
	people := make([]Person, len(tab.People))
	for i, p := range tab.People {
		people[i] = Person{ID: p.ID, Name: p.Name, Email: p.Email}
	}
	return &Tab{
		ID:                 tab.ID,
		Name:               tab.Name,
		Description:        tab.Description,
		DefaultCurrency:    string(tab.DefaultCurrency),
		SettlementCurrency: string(tab.SettlementCurrency),
		IsSettled:          tab.IsSettled,
		People:             people,
		CreatedAt:          tab.CreatedAt,
		UpdatedAt:          tab.UpdatedAt,
	}
}

func billToMessage(bill *models.Bill) *Bill {
	items := make([]LineItem, len(bill.LineItems))
	for i, item := range bill.LineItems {
		claims := make([]Claim, len(item.Claims))
		for j, c := range item.Claims {
			claims[j] = Claim{
				ID:               c.ID,
				PersonID:         c.PersonID,
				SplitValue:       c.SplitValue,
				CalculatedAmount: c.CalculatedAmount,
				HasClaimed:       c.HasClaimed,
			}
		}
		items[i] = LineItem{
			ID:          item.ID,
			Description: item.Description,
			Value:       item.Value,
			SplitType:   string(item.SplitType),
			Claims:      claims,
		}
	}
	return &Bill{
		ID:          bill.ID,
		TabID:       bill.TabID,
		Description: bill.Description,
		Currency:    string(bill.Currency),
		Status:      string(bill.Status),
		CreatorID:   bill.CreatorID,
		PaidByID:    bill.PaidByID,
		Date:        bill.Date.Format(dateLayout),
		TotalAmount: bill.TotalAmount(),
		LineItems:   items,
		CreatedAt:   bill.CreatedAt,
	}
}

func rateToMessage(rate *models.ExchangeRate) *ExchangeRate {
	return &ExchangeRate{
		ID:            rate.ID,
		FromCurrency:  string(rate.From),
		ToCurrency:    string(rate.To),
		Rate:          rate.Rate,
		EffectiveDate: rate.EffectiveDate.UTC().Format(dateLayout),
	}
}

func settlementToMessage(s *models.Settlement) Settlement {
	return Settlement{
		ID:           s.ID,
		FromPersonID: s.FromPersonID,
		ToPersonID:   s.ToPersonID,
		Amount:       s.Amount,
		Currency:     string(s.Currency),
		Paid:         s.Paid,
		CreatedAt:    s.CreatedAt,
	}
}

func splitInputs(splits []PersonSplit) []calculator.SplitInput {
	inputs := make([]calculator.SplitInput, len(splits))
	for i, s := range splits {
		inputs[i] = calculator.SplitInput{PersonID: s.PersonID, SplitValue: s.SplitValue}
	}
	return inputs
}

// parseDate reads a YYYY-MM-DD date as midnight UTC. Empty returns the zero time.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}
