package models

// Tab is a named shared-expense group.
// People are owned by the tab; bills and settlements reference it by ID.
type Tab struct {
	// ID is the unique identifier for the tab (UUID format).
	ID string

	// Name is the display name of the tab (e.g., "Lisbon trip").
	Name string

	// Description is free text shown under the name.
	Description string

	// DefaultCurrency is preselected when creating new bills.
	DefaultCurrency Currency

	// SettlementCurrency is the currency balances are normalized into when
	// simplifying. Empty means "decide from the bills".
	SettlementCurrency Currency

	// IsSettled is set when the last simplification produced no transactions.
	IsSettled bool

	// People is the list of people on this tab.
	People []Person

	// CreatedAt is the Unix timestamp when the tab was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to the tab row.
	UpdatedAt int64
}

// HasPerson reports whether personID belongs to the tab.
func (t *Tab) HasPerson(personID string) bool {
	for _, p := range t.People {
		if p.ID == personID {
			return true
		}
	}
	return false
}

// Person is someone on a tab.
type Person struct {
	ID    string
	TabID string
	Name  string

	// Email is optional and unique within a tab when set.
	Email string

	CreatedAt int64
}
