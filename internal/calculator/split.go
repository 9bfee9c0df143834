package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
)

var hundredPercent = decimal.NewFromInt(100)

// SplitInput is one participant's input to a split.
// Amount is read for EXACT splits and Percent for PERCENT splits; EQUAL only uses UserID.
type SplitInput struct {
	UserID  string
	Amount  money.Amount
	Percent decimal.Decimal
}

// Share is one participant's computed portion of an expense.
type Share struct {
	UserID string
	Amount money.Amount
}

// Allocation is the full result of splitting an expense.
// Shares covers every participant, the payer included when participating, in
// participant order, and always sums to Total.
type Allocation struct {
	PayerID string
	Total   money.Amount
	Shares  []Share
}

// Splits returns the rows to persist: the payer's own share and zero shares are dropped.
func (a *Allocation) Splits() []models.ExpenseSplit {
	splits := make([]models.ExpenseSplit, 0, len(a.Shares))
	for _, s := range a.Shares {
		if s.UserID == a.PayerID || s.Amount == 0 {
			continue
		}
		splits = append(splits, models.ExpenseSplit{UserID: s.UserID, Amount: s.Amount})
	}
	return splits
}

// PayerShare returns the payer's own portion (zero if the payer did not participate).
func (a *Allocation) PayerShare() money.Amount {
	for _, s := range a.Shares {
		if s.UserID == a.PayerID {
			return s.Amount
		}
	}
	return 0
}

// ComputeSplits divides total among participants using the given policy.
//
// members is the group's membership in join order; it is both the membership check
// and the default participant list for EQUAL splits without inputs. Validation runs
// completely before anything is computed, so a failure never yields partial output.
func ComputeSplits(total money.Amount, policy models.SplitType, members []string, payerID string, inputs []SplitInput) (*Allocation, error) {
	switch policy {
	case models.SplitEqual, models.SplitExact, models.SplitPercent:
	default:
		return nil, fmt.Errorf("%w: split type %q", ErrUnknownPolicy, policy)
	}
	if total <= 0 || total > money.MaxAmount {
		return nil, fmt.Errorf("%w: total must be between 1 and %d minor units, got %d", ErrInvalidAmount, money.MaxAmount, total)
	}

	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}
	if !memberSet[payerID] {
		return nil, fmt.Errorf("%w: payer %q", ErrNotAMember, payerID)
	}

	seen := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if !memberSet[in.UserID] {
			return nil, fmt.Errorf("%w: participant %q", ErrNotAMember, in.UserID)
		}
		if seen[in.UserID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, in.UserID)
		}
		seen[in.UserID] = true
	}

	var (
		shares []Share
		err    error
	)
	switch policy {
	case models.SplitEqual:
		participants := members
		if len(inputs) > 0 {
			participants = make([]string, len(inputs))
			for i, in := range inputs {
				participants[i] = in.UserID
			}
		}
		shares, err = splitEqual(total, participants)
	case models.SplitExact:
		shares, err = splitExact(total, inputs)
	case models.SplitPercent:
		shares, err = splitPercent(total, inputs)
	}
	if err != nil {
		return nil, err
	}

	return &Allocation{PayerID: payerID, Total: total, Shares: shares}, nil
}

// splitEqual gives every participant floor(total/n); the first total%n get one more unit.
func splitEqual(total money.Amount, participants []string) ([]Share, error) {
	n := money.Amount(len(participants))
	if n == 0 {
		return nil, fmt.Errorf("%w: no participants to split among", ErrInvalidAmount)
	}
	base, rem := total/n, total%n

	shares := make([]Share, len(participants))
	for i, uid := range participants {
		amount := base
		if money.Amount(i) < rem {
			amount++
		}
		shares[i] = Share{UserID: uid, Amount: amount}
	}
	return shares, nil
}

// splitExact accepts the supplied amounts as-is when they add up to total.
func splitExact(total money.Amount, inputs []SplitInput) ([]Share, error) {
	shares := make([]Share, len(inputs))
	amounts := make([]money.Amount, len(inputs))
	for i, in := range inputs {
		if !in.Amount.Valid() {
			return nil, fmt.Errorf("%w: amount %d for %q", ErrInvalidAmount, in.Amount, in.UserID)
		}
		shares[i] = Share{UserID: in.UserID, Amount: in.Amount}
		amounts[i] = in.Amount
	}

	sum, err := money.Sum(amounts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if sum != total {
		return nil, fmt.Errorf("%w: split total %d does not match expense total %d", ErrSplitMismatch, sum, total)
	}
	return shares, nil
}

// splitPercent rounds each percentage share half-up and moves the rounding drift
// onto the first participant.
func splitPercent(total money.Amount, inputs []SplitInput) ([]Share, error) {
	pctSum := decimal.Zero
	for _, in := range inputs {
		if in.Percent.IsNegative() || in.Percent.GreaterThan(hundredPercent) {
			return nil, fmt.Errorf("%w: %s%% for %q is outside 0-100", ErrPercentageMismatch, in.Percent, in.UserID)
		}
		pctSum = pctSum.Add(in.Percent)
	}
	if !pctSum.Equal(hundredPercent) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentageMismatch, pctSum)
	}

	shares := make([]Share, len(inputs))
	var running money.Amount
	for i, in := range inputs {
		amount := money.PercentOf(total, in.Percent)
		shares[i] = Share{UserID: in.UserID, Amount: amount}
		running += amount
	}

	drift := total - running
	if drift > 0 {
		shares[0].Amount += drift
	}
	// A negative drift goes to the first participant too, spilling over in order
	// only when a share would drop below zero (e.g. a leading 0% participant).
	for i := 0; drift < 0 && i < len(shares); i++ {
		take := min(shares[i].Amount, -drift)
		shares[i].Amount -= take
		drift += take
	}
	return shares, nil
}
