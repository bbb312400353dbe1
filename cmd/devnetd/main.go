// Command devnetd starts a local Starknet devnet engine.
//
// Grounded on tools/state-cli/main.go: a single urfave/cli/v2 App with a
// flat flag set mapped directly onto a configuration record, rather than a
// tree of subcommands, matching the state toolbox's inspection-tool shape
// more closely than a multi-command CLI would.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/0xSpaceShard/starknet-devnet-go/config"
	"github.com/0xSpaceShard/starknet-devnet-go/core/archive"
	"github.com/0xSpaceShard/starknet-devnet-go/core/felt"
	"github.com/0xSpaceShard/starknet-devnet-go/devnet"
	"github.com/0xSpaceShard/starknet-devnet-go/execengine"
	"github.com/0xSpaceShard/starknet-devnet-go/pipeline"
)

func main() {
	app := &cli.App{
		Name:     "devnetd",
		HelpName: "devnetd",
		Usage:    "run a local, single-node Starknet devnet",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "starting-block-number", Value: 0},
			&cli.StringFlag{Name: "chain-id", Value: "SN_DEVNET"},
			&cli.Int64Flag{Name: "seed", Value: 0},
			&cli.Uint64Flag{Name: "initial-balance", Value: 1_000_000_000_000_000_000},
			&cli.IntFlag{Name: "accounts", Value: 10},
			&cli.StringFlag{Name: "fork-url", Value: ""},
			&cli.Uint64Flag{Name: "fork-block", Value: 0},
			&cli.StringFlag{Name: "state-archive", Value: "none", Usage: "none | full"},
			&cli.StringFlag{Name: "block-generation-on", Value: "transaction", Usage: "transaction | demand"},
			&cli.BoolFlag{Name: "lite-mode", Value: false},
			&cli.StringFlag{Name: "dump-path", Value: ""},
			&cli.StringFlag{Name: "dump-on", Value: "never", Usage: "never | exit | block | request"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.Default()
	cfg.StartingBlockNumber = c.Uint64("starting-block-number")
	cfg.ChainID = felt.FromBytes([]byte(c.String("chain-id")))
	cfg.Seed = c.Int64("seed")
	cfg.InitialBalance = c.Uint64("initial-balance")
	cfg.PredeployedAccounts = c.Int("accounts")
	cfg.Fork = config.ForkConfig{URL: c.String("fork-url"), BlockNumber: c.Uint64("fork-block")}
	cfg.LiteMode = c.Bool("lite-mode")
	cfg.DumpPath = c.String("dump-path")

	archivePolicy, err := parseArchivePolicy(c.String("state-archive"))
	if err != nil {
		return err
	}
	cfg.ArchivePolicy = archivePolicy

	genMode, err := parseGenerationMode(c.String("block-generation-on"))
	if err != nil {
		return err
	}
	cfg.GenerationMode = genMode

	dumpPolicy, err := parseDumpPolicy(c.String("dump-on"))
	if err != nil {
		return err
	}
	cfg.DumpPolicy = dumpPolicy

	logger := log.New(os.Stderr, "devnetd: ", log.LstdFlags)
	registry := prometheus.NewRegistry()

	eng, err := devnet.New(cfg, execengine.NewNativeERC20(), registry, logger)
	if err != nil {
		return fmt.Errorf("devnetd: %w", err)
	}

	logger.Printf("devnet ready: chain id %s, block %d, %d predeployed accounts",
		cfg.ChainID, cfg.StartingBlockNumber, cfg.PredeployedAccounts)

	// The JSON-RPC/WebSocket transport that would dispatch requests into
	// eng under its exclusive lock is out of this module's scope; this
	// entrypoint only proves the engine boots with a given configuration.
	eng.Lock()
	eng.Unlock()
	return nil
}

func parseArchivePolicy(s string) (archive.Policy, error) {
	switch s {
	case "none":
		return archive.None, nil
	case "full":
		return archive.Full, nil
	default:
		return archive.None, fmt.Errorf("devnetd: unknown state-archive %q (want none|full)", s)
	}
}

func parseGenerationMode(s string) (pipeline.GenerationMode, error) {
	switch s {
	case "transaction":
		return pipeline.GenerateOnTransaction, nil
	case "demand":
		return pipeline.GenerateOnDemand, nil
	default:
		return pipeline.GenerateOnTransaction, fmt.Errorf("devnetd: unknown block-generation-on %q (want transaction|demand)", s)
	}
}

func parseDumpPolicy(s string) (config.DumpPolicy, error) {
	switch s {
	case "never":
		return config.DumpNever, nil
	case "exit":
		return config.DumpOnExit, nil
	case "block":
		return config.DumpOnBlock, nil
	case "request":
		return config.DumpOnRequest, nil
	default:
		return config.DumpNever, fmt.Errorf("devnetd: unknown dump-on %q (want never|exit|block|request)", s)
	}
}
