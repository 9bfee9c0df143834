package cli

import (
	"fmt"
	"net/http"
	"strconv"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/circleledger/internal/money"
	"github.com/mmynk/circleledger/pkg/api"
	"github.com/mmynk/circleledger/pkg/api/apiconnect"
)

func init() {
	rootCmd.AddCommand(settleCmd)
	settleCmd.Flags().String("from", "", "ID of the user paying")
	settleCmd.Flags().String("to", "", "ID of the user being paid")
	settleCmd.Flags().String("amount", "", "Amount in major units, e.g. 12.34")
	settleCmd.Flags().String("note", "", "Optional note")
	settleCmd.Flags().String("server", "", "Base URL of a running server (default: http://localhost:<server.port>)")
	_ = settleCmd.MarkFlagRequired("from")
	_ = settleCmd.MarkFlagRequired("to")
	_ = settleCmd.MarkFlagRequired("amount")
}

var settleCmd = &cobra.Command{
	Use:   "settle GROUP_ID",
	Short: "Record a payment between two members",
	Long: `Record a settlement through a running server's LedgerService.SettleUp, so the
same validation applies as for API clients. Amounts are given in major units.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettle,
}

func runSettle(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")
	note, _ := flags.GetString("note")
	raw, _ := flags.GetString("amount")

	amount, err := money.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid --amount: %w", err)
	}
	if amount <= 0 {
		return fmt.Errorf("invalid --amount: %s must be positive", raw)
	}

	baseURL, _ := flags.GetString("server")
	if baseURL == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		baseURL = "http://localhost:" + strconv.Itoa(cfg.Server.Port)
	}

	client := apiconnect.NewLedgerServiceClient(http.DefaultClient, baseURL)
	resp, err := client.SettleUp(cmd.Context(), connect.NewRequest(&api.SettleUpRequest{
		GroupId: args[0],
		PayerId: from,
		PayeeId: to,
		Amount:  int64(amount),
		Note:    note,
	}))
	if err != nil {
		return err
	}

	s := resp.Msg.Settlement
	fmt.Fprintf(cmd.OutOrStdout(), "settlement %s: %s -> %s %s\n", s.Id, s.PayerId, s.PayeeId, money.Amount(s.Amount))
	return nil
}
