// Command adjudicatorctl is the operational CLI for a running
// adjudicatord: a thin command table over its HTTP+JSON API, modeled
// on cmd/lncli's command-table shape but talking JSON instead of
// gRPC.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[adjudicatorctl] %v\n", err)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "adjudicatorctl"
	app.Usage = "control plane for adjudicatord"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rpcserver",
			Value: "http://localhost:9735",
			Usage: "base URL of the adjudicatord HTTP API",
		},
		cli.StringFlag{
			Name:  "admintoken",
			Usage: "bearer token for admin-gated operations (deposit-mocked)",
		},
	}
	app.Commands = []cli.Command{
		queryHoldingsCommand,
		queryStateCommand,
		queryEventsCommand,
		depositMockedCommand,
		transactionNotificationCommand,
		depositCommand,
		withdrawCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
