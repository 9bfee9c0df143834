package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/circleledger/internal/ledger"
	"github.com/mmynk/circleledger/internal/models"
	"github.com/mmynk/circleledger/internal/storage/sqlite"
)

func init() {
	rootCmd.AddCommand(balancesCmd)
	balancesCmd.Flags().StringP("mode", "m", "", "Settlement mode: pairwise or simplify (default: the group's mode)")
}

var balancesCmd = &cobra.Command{
	Use:   "balances GROUP_ID",
	Short: "Print who owes whom in a group",
	Long: `Compute a group's outstanding balances straight from the database and print
one "from -> to amount" line per debt.`,
	Args: cobra.ExactArgs(1),
	RunE: runBalances,
}

func runBalances(cmd *cobra.Command, args []string) error {
	groupID := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}

	mode := group.Mode
	if flag, _ := cmd.Flags().GetString("mode"); flag != "" {
		if mode, err = models.ParseSettlementMode(flag); err != nil {
			return err
		}
	}

	engine := ledger.New(store, ledger.WithDustThreshold(cfg.DustThreshold()))
	result, err := engine.ComputeBalances(ctx, groupID, mode)
	if err != nil {
		return err
	}

	members, err := store.ListMembers(ctx, groupID)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	out := cmd.OutOrStdout()
	if result.Settled() {
		fmt.Fprintf(out, "%s (%s): all settled\n", group.Name, mode)
		return nil
	}
	for _, b := range result.Balances {
		fmt.Fprintf(out, "%s -> %s %s\n", name(b.From), name(b.To), b.Amount)
	}
	return nil
}
