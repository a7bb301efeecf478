package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/sharevault/common"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

type metadata struct {
	config *Config
	log    *zap.Logger
	w      io.Writer
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sharevault"
	app.Usage = "operate pooled-deposit vault deployed on Neo N3 chain"
	app.Version = fmt.Sprintf("%d.%d.%d", common.Version/1_000_000, common.Version/1_000%1_000, common.Version%1_000)

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "path to YAML configuration `FILE`",
			EnvVar: "SHAREVAULT_CONFIG",
		},
		cli.StringFlag{
			Name:   "rpc, r",
			Usage:  "WebSocket `ENDPOINT` of the Neo RPC server",
			EnvVar: "SHAREVAULT_RPC_ENDPOINT",
		},
		cli.StringFlag{
			Name:   "wallet, w",
			Usage:  "path to NEP-6 wallet `FILE`",
			EnvVar: "SHAREVAULT_WALLET",
		},
		cli.StringFlag{
			Name:   "address, a",
			Usage:  "wallet account `ADDRESS`",
			EnvVar: "SHAREVAULT_ADDRESS",
		},
		cli.StringFlag{
			Name:   "password, p",
			Usage:  "wallet account `PASSWORD`",
			EnvVar: "SHAREVAULT_PASSWORD",
		},
		cli.StringFlag{
			Name:   "vault",
			Usage:  "vault contract `ADDRESS`",
			EnvVar: "SHAREVAULT_VAULT",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "logging `LEVEL` [debug|info|warn|error]",
			EnvVar: "SHAREVAULT_LOG_LEVEL",
		},
		cli.StringFlag{
			Name:   "metrics",
			Usage:  "listen `ADDRESS` of the Prometheus endpoint",
			EnvVar: "SHAREVAULT_METRICS_ADDRESS",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "deploy",
			Usage: "create new vault from compiled contract",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "nef",
					Usage: "*compiled contract `FILE`",
				},
				cli.StringFlag{
					Name:  "manifest",
					Usage: "*contract manifest `FILE`",
				},
				cli.StringFlag{
					Name:  "admin",
					Usage: " vault admin `ADDRESS` [default sender]",
				},
				cli.StringFlag{
					Name:  "base",
					Usage: "*base asset `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "ticker",
					Usage: "*vault `TICKER` [A-Z0-9_-], 3 to 16 characters",
				},
			},
			Action: runDeploy,
		},
		{
			Name:  "info",
			Usage: "print vault state",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "holders",
					Usage: " print up to `COUNT` share holders",
				},
			},
			Action: runInfo,
		},
		{
			Name:  "deposit",
			Usage: "deposit base asset and receive shares",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "amount",
					Usage: "*decimal `AMOUNT` of base asset",
				},
			},
			Action: runDeposit,
		},
		{
			Name:  "relocate",
			Usage: "move base asset out of vault custody (admin only)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "destination, d",
					Usage: "*destination `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "amount",
					Usage: "*decimal `AMOUNT` of base asset",
				},
			},
			Action: runRelocate,
		},
		{
			Name:      "pause",
			Usage:     "pause deposits or allocations (admin only)",
			ArgsUsage: "deposit|allocate",
			Action:    runPause(true),
		},
		{
			Name:      "unpause",
			Usage:     "resume deposits or allocations (admin only)",
			ArgsUsage: "deposit|allocate",
			Action:    runPause(false),
		},
		{
			Name:   "watch",
			Usage:  "follow vault notifications and export Prometheus metrics",
			Action: runWatch,
		},
	}

	app.Before = func(c *cli.Context) error {
		cfg := new(Config)

		if path := c.String("config"); path != "" {
			var err error
			cfg, err = LoadConfig(path)
			if err != nil {
				return err
			}
		}

		cfg.applyFlags(c)

		log, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}

		c.App.Metadata["config"] = &metadata{
			config: cfg,
			log:    log,
			w:      c.App.Writer,
		}

		return nil
	}

	app.After = func(c *cli.Context) error {
		if m, ok := c.App.Metadata["config"].(*metadata); ok {
			_ = m.log.Sync()
		}
		return nil
	}

	return app
}

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}
