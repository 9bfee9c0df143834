package service

import (
	"github.com/mmynk/circleledger/internal/calculator"
	"github.com/mmynk/circleledger/internal/ledger"
	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/money"
	"github.com/mmynk/circleledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		Id:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toAPIUsers(users []models.User) []*api.User {
	out := make([]*api.User, len(users))
	for i := range users {
		out[i] = toAPIUser(&users[i])
	}
	return out
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		Id:        g.ID,
		Name:      g.Name,
		Mode:      string(g.Mode),
		Members:   g.Members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	splits := make([]*api.ExpenseSplit, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = &api.ExpenseSplit{UserId: s.UserID, Amount: int64(s.Amount)}
	}
	return &api.Expense{
		Id:          e.ID,
		GroupId:     e.GroupID,
		PayerId:     e.PayerID,
		Amount:      int64(e.Amount),
		Description: e.Description,
		SplitType:   string(e.SplitType),
		CreatedAt:   e.CreatedAt,
		Splits:      splits,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		Id:        s.ID,
		GroupId:   s.GroupID,
		PayerId:   s.PayerID,
		PayeeId:   s.PayeeID,
		Amount:    int64(s.Amount),
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}
}

func toAPIShares(shares []calculator.Share) []*api.Share {
	out := make([]*api.Share, len(shares))
	for i, s := range shares {
		out[i] = &api.Share{UserId: s.UserID, Amount: int64(s.Amount)}
	}
	return out
}

func toAPIBalances(result *ledger.Result) *api.GetBalancesResponse {
	balances := make([]*api.Balance, len(result.Balances))
	for i, b := range result.Balances {
		balances[i] = &api.Balance{From: b.From, To: b.To, Amount: int64(b.Amount)}
	}
	positions := make([]*api.Position, len(result.Positions))
	for i, p := range result.Positions {
		positions[i] = &api.Position{
			UserId: p.UserID,
			Paid:   int64(p.Paid),
			Owed:   int64(p.Owed),
			Net:    int64(p.Net),
		}
	}
	return &api.GetBalancesResponse{
		GroupId:   result.GroupID,
		Mode:      string(result.Mode),
		Balances:  balances,
		Positions: positions,
		Settled:   result.Settled(),
	}
}

func fromAPISplitInputs(inputs []*api.SplitInput) []calculator.SplitInput {
	out := make([]calculator.SplitInput, 0, len(inputs))
	for _, in := range inputs {
		if in == nil {
			continue
		}
		out = append(out, calculator.SplitInput{
			UserID:  in.UserId,
			Amount:  money.Amount(in.Amount),
			Percent: in.Percent,
		})
	}
	return out
}
