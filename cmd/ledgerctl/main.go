// Command ledgerctl is a thin demonstration CLI over the ledgerclient
// execution pipeline: submit a transfer, query a balance, or inspect the
// current network snapshot.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	lc "github.com/ledgerlabs/ledgerclient"
	"github.com/ledgerlabs/ledgerclient/examples"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{Use: "ledgerctl"}
	rootCmd.PersistentFlags().String("config", "", "path to a client configuration file (§6)")
	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(networkCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildClient(cmd *cobra.Command) (*lc.Client, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		return lc.ForLocalhost().WithLogger(newLogger()).Build(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := lc.ParseClientConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg.BuildClient()
}

func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func submitCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "submit"}
	transfer := &cobra.Command{
		Use:   "transfer",
		Short: "submit a crypto transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			amount, _ := cmd.Flags().GetUint64("amount")

			fromId, err := lc.ParseAccountId(from)
			if err != nil {
				return err
			}
			toId, err := lc.ParseAccountId(to)
			if err != nil {
				return err
			}

			tx := examples.NewTransferTransaction(fromId, toId, amount)
			result, err := lc.Execute(context.Background(), client, tx)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	transfer.Flags().String("from", "", "payer account id, shard.realm.num")
	transfer.Flags().String("to", "", "recipient account id, shard.realm.num")
	transfer.Flags().Uint64("amount", 0, "amount in tinybar-equivalent base units")
	cmd.AddCommand(transfer)
	return cmd
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "query"}
	balance := &cobra.Command{
		Use:   "balance [accountId]",
		Short: "query an account's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			accountId, err := lc.ParseAccountId(args[0])
			if err != nil {
				return err
			}

			q := examples.NewAccountBalanceQuery(accountId)
			result, err := lc.Execute(context.Background(), client, q)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.AddCommand(balance)
	return cmd
}

func networkCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "network"}
	setSeed := &cobra.Command{
		Use:   "seed [value]",
		Short: "reseed the sampling RNG (test/debug use)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			seed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			client.SetNetworkSeed(seed)
			return nil
		},
	}
	cmd.AddCommand(setSeed)
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
