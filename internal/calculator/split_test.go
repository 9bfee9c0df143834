package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
)

var trio = []string{"alice", "bob", "carol"}

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func shareAmounts(shares []Share) []money.Amount {
	out := make([]money.Amount, len(shares))
	for i, s := range shares {
		out[i] = s.Amount
	}
	return out
}

func TestComputeSplits(t *testing.T) {
	tests := []struct {
		name         string
		total        money.Amount
		policy       models.SplitType
		members      []string
		payer        string
		inputs       []SplitInput
		wantErr      error
		validateFunc func(t *testing.T, a *Allocation)
	}{
		{
			name:    "equal split of 100 among three gives remainder to first",
			total:   100,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []money.Amount{34, 33, 33}, shareAmounts(a.Shares))
				assert.Equal(t, money.Amount(34), a.PayerShare())
				assert.Equal(t, []models.ExpenseSplit{
					{UserID: "bob", Amount: 33},
					{UserID: "carol", Amount: 33},
				}, a.Splits())
			},
		},
		{
			name:    "equal split among whole group drops payer row",
			total:   900,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []models.ExpenseSplit{
					{UserID: "bob", Amount: 300},
					{UserID: "carol", Amount: 300},
				}, a.Splits())
			},
		},
		{
			name:    "equal split among explicit participants excluding payer",
			total:   101,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			inputs:  []SplitInput{{UserID: "carol"}, {UserID: "bob"}},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []Share{{"carol", 51}, {"bob", 50}}, a.Shares)
				assert.Len(t, a.Splits(), 2)
				assert.Zero(t, a.PayerShare())
			},
		},
		{
			name:    "equal split smaller than participant count leaves zero shares out",
			total:   2,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "carol",
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []money.Amount{1, 1, 0}, shareAmounts(a.Shares))
				assert.Equal(t, []models.ExpenseSplit{
					{UserID: "alice", Amount: 1},
					{UserID: "bob", Amount: 1},
				}, a.Splits())
			},
		},
		{
			name:    "exact split accepted as given",
			total:   1000,
			policy:  models.SplitExact,
			members: trio,
			payer:   "bob",
			inputs: []SplitInput{
				{UserID: "alice", Amount: 250},
				{UserID: "bob", Amount: 500},
				{UserID: "carol", Amount: 250},
			},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []money.Amount{250, 500, 250}, shareAmounts(a.Shares))
				assert.Equal(t, []models.ExpenseSplit{
					{UserID: "alice", Amount: 250},
					{UserID: "carol", Amount: 250},
				}, a.Splits())
			},
		},
		{
			name:    "exact split mismatch",
			total:   100,
			policy:  models.SplitExact,
			members: trio,
			payer:   "alice",
			inputs: []SplitInput{
				{UserID: "bob", Amount: 70},
				{UserID: "carol", Amount: 80},
			},
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "exact split without inputs",
			total:   100,
			policy:  models.SplitExact,
			members: trio,
			payer:   "alice",
			wantErr: ErrSplitMismatch,
		},
		{
			name:    "exact split negative input",
			total:   100,
			policy:  models.SplitExact,
			members: trio,
			payer:   "alice",
			inputs: []SplitInput{
				{UserID: "bob", Amount: 150},
				{UserID: "carol", Amount: -50},
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "percent split thirds corrected onto first participant",
			total:   1000,
			policy:  models.SplitPercent,
			members: trio,
			payer:   "alice",
			inputs: []SplitInput{
				{UserID: "alice", Percent: pct("33.33")},
				{UserID: "bob", Percent: pct("33.33")},
				{UserID: "carol", Percent: pct("33.34")},
			},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []money.Amount{334, 333, 333}, shareAmounts(a.Shares))
			},
		},
		{
			name:    "percent split rounds half up then removes drift from first",
			total:   1001,
			policy:  models.SplitPercent,
			members: trio,
			payer:   "carol",
			inputs: []SplitInput{
				{UserID: "alice", Percent: pct("50")},
				{UserID: "bob", Percent: pct("50")},
			},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []money.Amount{500, 501}, shareAmounts(a.Shares))
			},
		},
		{
			name:    "percent drift spills past a zero percent first participant",
			total:   3,
			policy:  models.SplitPercent,
			members: trio,
			payer:   "alice",
			inputs: []SplitInput{
				{UserID: "alice", Percent: pct("0")},
				{UserID: "bob", Percent: pct("50")},
				{UserID: "carol", Percent: pct("50")},
			},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, []money.Amount{0, 1, 2}, shareAmounts(a.Shares))
			},
		},
		{
			name:    "percent split not adding to 100",
			total:   1000,
			policy:  models.SplitPercent,
			members: trio,
			payer:   "alice",
			inputs: []SplitInput{
				{UserID: "alice", Percent: pct("33.33")},
				{UserID: "bob", Percent: pct("33.33")},
				{UserID: "carol", Percent: pct("33.33")},
			},
			wantErr: ErrPercentageMismatch,
		},
		{
			name:    "percent outside range",
			total:   1000,
			policy:  models.SplitPercent,
			members: trio,
			payer:   "alice",
			inputs: []SplitInput{
				{UserID: "alice", Percent: pct("120")},
				{UserID: "bob", Percent: pct("-20")},
			},
			wantErr: ErrPercentageMismatch,
		},
		{
			name:    "payer outside group",
			total:   100,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "mallory",
			wantErr: ErrNotAMember,
		},
		{
			name:    "participant outside group",
			total:   100,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			inputs:  []SplitInput{{UserID: "bob"}, {UserID: "mallory"}},
			wantErr: ErrNotAMember,
		},
		{
			name:    "duplicate participant",
			total:   100,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			inputs:  []SplitInput{{UserID: "bob"}, {UserID: "bob"}},
			wantErr: ErrDuplicateParticipant,
		},
		{
			name:    "zero total",
			total:   0,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative total",
			total:   -100,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "total beyond max amount",
			total:   money.MaxAmount + 1,
			policy:  models.SplitEqual,
			members: trio,
			payer:   "alice",
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown policy",
			total:   100,
			policy:  models.SplitType("SHARES"),
			members: trio,
			payer:   "alice",
			wantErr: ErrUnknownPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ComputeSplits(tt.total, tt.policy, tt.members, tt.payer, tt.inputs)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsValidation(err))
				assert.Nil(t, a)
				return
			}
			require.NoError(t, err)

			sum, err := money.Sum(shareAmounts(a.Shares)...)
			require.NoError(t, err)
			assert.Equal(t, tt.total, sum, "shares must add up to the total")
			for _, s := range a.Shares {
				assert.GreaterOrEqual(t, s.Amount, money.Amount(0))
			}
			for _, s := range a.Splits() {
				assert.NotEqual(t, tt.payer, s.UserID, "payer never owes their own expense")
			}

			if tt.validateFunc != nil {
				tt.validateFunc(t, a)
			}
		})
	}
}

func TestComputeSplits_ExactMismatchNamesSums(t *testing.T) {
	_, err := ComputeSplits(100, models.SplitExact, trio, "alice", []SplitInput{
		{UserID: "bob", Amount: 70},
		{UserID: "carol", Amount: 80},
	})
	require.ErrorIs(t, err, ErrSplitMismatch)
	assert.Contains(t, err.Error(), "150")
	assert.Contains(t, err.Error(), "100")
}

func TestComputeSplits_EqualAlwaysExact(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e", "f", "g"}
	for n := 1; n <= len(members); n++ {
		for total := money.Amount(1); total <= 250; total++ {
			a, err := ComputeSplits(total, models.SplitEqual, members[:n], "a", nil)
			require.NoError(t, err)

			sum, err := money.Sum(shareAmounts(a.Shares)...)
			require.NoError(t, err)
			require.Equal(t, total, sum, "n=%d total=%d", n, total)

			// Shares differ by at most one unit and larger shares come first.
			for i := 1; i < len(a.Shares); i++ {
				require.LessOrEqual(t, a.Shares[i].Amount, a.Shares[i-1].Amount)
				require.LessOrEqual(t, a.Shares[0].Amount-a.Shares[i].Amount, money.Amount(1))
			}
		}
	}
}

func TestComputeSplits_PercentAlwaysExact(t *testing.T) {
	inputs := []SplitInput{
		{UserID: "alice", Percent: pct("12.5")},
		{UserID: "bob", Percent: pct("37.25")},
		{UserID: "carol", Percent: pct("50.25")},
	}
	for total := money.Amount(1); total <= 500; total++ {
		a, err := ComputeSplits(total, models.SplitPercent, trio, "alice", inputs)
		require.NoError(t, err)

		sum, err := money.Sum(shareAmounts(a.Shares)...)
		require.NoError(t, err)
		require.Equal(t, total, sum, "total=%d", total)
		for _, s := range a.Shares {
			require.GreaterOrEqual(t, s.Amount, money.Amount(0))
		}
	}
}

func TestReason(t *testing.T) {
	_, err := ComputeSplits(100, models.SplitPercent, trio, "alice", nil)
	assert.Equal(t, "percentage_mismatch", Reason(err))
	assert.Equal(t, "", Reason(assert.AnError))
	assert.False(t, IsValidation(nil))
}
