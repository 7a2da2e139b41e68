package calculator

import (
	"github.com/shopspring/decimal"
)

// Dust is the smallest balance worth settling.
var Dust = decimal.New(1, -2)

// Transaction is one payment produced by Simplify.
type Transaction struct {
	PayerID string // Person who owes
	PayeeID string // Person who is owed
	Amount  decimal.Decimal
}

type workingBalance struct {
	personID string
	amount   decimal.Decimal
}

// Simplify reduces net balances to a short list of payments by repeatedly
// matching the largest creditor with the largest debtor.
//
// Ties on the largest or smallest balance go to the lowest person ID, so the
// output depends only on the input set. Residue below Dust is dropped.
// Transactions are returned in emission order.
func Simplify(balances []Balance) []Transaction {
	working := make([]workingBalance, 0, len(balances))
	for _, b := range balances {
		if b.Amount.IsZero() {
			continue
		}
		working = append(working, workingBalance{personID: b.PersonID, amount: b.Amount})
	}
	transactions := make([]Transaction, 0, len(working))
	for len(working) > 0 {
		creditor, debtor := extremes(working)
		credit, debt := working[creditor].amount, working[debtor].amount

		// Stop if remaining balances are negligible
		if credit.Abs().LessThan(Dust) && debt.Abs().LessThan(Dust) {
			break
		}
		// Nobody left on one side: unbalanced residue, nothing to pair
		if !credit.IsPositive() || !debt.IsNegative() {
			break
		}

		amount := decimal.Min(credit, debt.Neg())
		working[creditor].amount = credit.Sub(amount)
		working[debtor].amount = debt.Add(amount)

		transactions = append(transactions, Transaction{
			PayerID: working[debtor].personID,
			PayeeID: working[creditor].personID,
			Amount:  amount,
		})

		working = dropSettled(working)
	}

	return transactions
}

// extremes returns the indexes of the maximum and minimum balances.
func extremes(working []workingBalance) (maxIdx, minIdx int) {
	for i := 1; i < len(working); i++ {
		w := working[i]
		switch cmp := w.amount.Cmp(working[maxIdx].amount); {
		case cmp > 0, cmp == 0 && w.personID < working[maxIdx].personID:
			maxIdx = i
		}
		switch cmp := w.amount.Cmp(working[minIdx].amount); {
		case cmp < 0, cmp == 0 && w.personID < working[minIdx].personID:
			minIdx = i
		}
	}
	return maxIdx, minIdx
}

func dropSettled(working []workingBalance) []workingBalance {
	kept := working[:0]
	for _, w := range working {
		if w.amount.Abs().LessThan(Dust) {
			continue
		}
		kept = append(kept, w)
	}
	return kept
}
