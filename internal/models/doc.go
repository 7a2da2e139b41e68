// Package models defines the core domain models for Ninjatab.
//
// # Models
//
//   - Tab: a shared-expense group with its people
//   - Person: someone on a tab, identified by a UUID scoped to that tab
//   - Bill: an expense on a tab, paid by one person, made of line items
//   - LineItem: a sub-amount of a bill with its own split
//   - PersonClaim: one person's share of a line item
//   - ExchangeRate: a directed, dated currency conversion rate
//   - Settlement: a payer -> payee transaction produced by simplification
//
// # Design Principles
//
// 1. **Exact money**: every amount is a decimal.Decimal, never float64
// 2. **Avoid circular references**: use ID strings instead of pointers for relationships
// 3. **Snapshots**: a Bill carries its line items and claims so the calculator
//    can work on one in-memory value without touching storage
package models
