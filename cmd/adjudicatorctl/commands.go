package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli"
)

var queryHoldingsCommand = cli.Command{
	Name:      "query-holdings",
	Usage:     "show the holdings balance for a channel/participant funding slot",
	ArgsUsage: "channel participant",
	Action:    queryHoldings,
}

func queryHoldings(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.ShowCommandHelp(ctx, "query-holdings")
	}
	client := newAPIClient(ctx)

	var resp struct {
		Amount string `json:"amount"`
	}
	req := map[string]string{"channel": ctx.Args().Get(0), "participant": ctx.Args().Get(1)}
	if err := client.post("/v1/query_holdings", req, &resp); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"channel", "participant", "amount"})
	t.AppendRow(table.Row{ctx.Args().Get(0), ctx.Args().Get(1), resp.Amount})
	t.Render()
	return nil
}

var queryStateCommand = cli.Command{
	Name:      "query-state",
	Usage:     "show the registered state for a channel",
	ArgsUsage: "channel",
	Action:    queryState,
}

func queryState(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "query-state")
	}
	client := newAPIClient(ctx)

	var resp struct {
		State struct {
			Channel    string   `json:"channel"`
			Version    uint64   `json:"version"`
			Allocation []string `json:"allocation"`
			Finalized  bool     `json:"finalized"`
		} `json:"state"`
		Timeout string `json:"timeout"`
	}
	path := "/v1/query_state?channel=" + url.QueryEscape(ctx.Args().Get(0))
	if err := client.get(path, &resp); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"version", "finalized", "allocation", "timeout"})
	t.AppendRow(table.Row{resp.State.Version, resp.State.Finalized, resp.State.Allocation, resp.Timeout})
	t.Render()
	return nil
}

var queryEventsCommand = cli.Command{
	Name:      "query-events",
	Usage:     "list events recorded for a channel since an RFC3339 timestamp",
	ArgsUsage: "channel [since]",
	Action:    queryEvents,
}

func queryEvents(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return cli.ShowCommandHelp(ctx, "query-events")
	}
	client := newAPIClient(ctx)

	path := "/v1/query_events?channel=" + url.QueryEscape(ctx.Args().Get(0))
	if ctx.NArg() > 1 {
		path += "&since=" + url.QueryEscape(ctx.Args().Get(1))
	}

	var resp []struct {
		Kind      string `json:"kind"`
		Timestamp string `json:"timestamp"`
		Who       string `json:"who,omitempty"`
		Total     string `json:"total,omitempty"`
	}
	if err := client.get(path, &resp); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"kind", "timestamp", "who", "total"})
	for _, ev := range resp {
		t.AppendRow(table.Row{ev.Kind, ev.Timestamp, ev.Who, ev.Total})
	}
	t.Render()
	return nil
}

var depositMockedCommand = cli.Command{
	Name:      "deposit-mocked",
	Usage:     "credit holdings directly, bypassing the payment receiver (admin-gated)",
	ArgsUsage: "channel participant amount",
	Action:    depositMocked,
}

func depositMocked(ctx *cli.Context) error {
	if ctx.NArg() != 3 {
		return cli.ShowCommandHelp(ctx, "deposit-mocked")
	}
	client := newAPIClient(ctx)

	req := map[string]interface{}{
		"funding": map[string]string{
			"channel":     ctx.Args().Get(0),
			"participant": ctx.Args().Get(1),
		},
		"amount": ctx.Args().Get(2),
	}
	if err := client.post("/v1/deposit_mocked", req, nil); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

var transactionNotificationCommand = cli.Command{
	Name:      "transaction-notification",
	Usage:     "prove an external-ledger transfer at a block height",
	ArgsUsage: "block-height",
	Action:    transactionNotification,
}

func transactionNotification(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "transaction-notification")
	}
	client := newAPIClient(ctx)

	height, err := strconv.ParseUint(ctx.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block height: %w", err)
	}

	var resp struct {
		Amount string `json:"amount"`
	}
	req := map[string]uint64{"block_height": height}
	if err := client.post("/v1/transaction_notification", req, &resp); err != nil {
		return err
	}
	fmt.Printf("credited: %s\n", resp.Amount)
	return nil
}

var depositCommand = cli.Command{
	Name:      "deposit",
	Usage:     "move a proven-unspent balance into holdings for a funding slot",
	ArgsUsage: "channel participant",
	Action:    deposit,
}

func deposit(ctx *cli.Context) error {
	if ctx.NArg() != 2 {
		return cli.ShowCommandHelp(ctx, "deposit")
	}
	client := newAPIClient(ctx)

	var resp struct {
		Amount string `json:"amount"`
	}
	req := map[string]string{"channel": ctx.Args().Get(0), "participant": ctx.Args().Get(1)}
	if err := client.post("/v1/deposit", req, &resp); err != nil {
		return err
	}
	fmt.Printf("deposited: %s\n", resp.Amount)
	return nil
}

var withdrawCommand = cli.Command{
	Name:      "withdraw",
	Usage:     "pay out a settled channel's funding slot to a receiver",
	ArgsUsage: "channel participant receiver signature",
	Action:    withdraw,
}

func withdraw(ctx *cli.Context) error {
	if ctx.NArg() != 4 {
		return cli.ShowCommandHelp(ctx, "withdraw")
	}
	client := newAPIClient(ctx)

	var resp struct {
		Amount string `json:"amount"`
	}
	req := map[string]string{
		"channel":     ctx.Args().Get(0),
		"participant": ctx.Args().Get(1),
		"receiver":    ctx.Args().Get(2),
		"signature":   ctx.Args().Get(3),
	}
	if err := client.post("/v1/withdraw", req, &resp); err != nil {
		return err
	}
	fmt.Printf("withdrawn: %s\n", resp.Amount)
	return nil
}
