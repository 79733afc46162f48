package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/andresuchdata/stockledger/internal/analytics"
	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/andresuchdata/stockledger/internal/domain"
	"github.com/andresuchdata/stockledger/internal/insight"
	"github.com/andresuchdata/stockledger/internal/ledger"
	"github.com/andresuchdata/stockledger/internal/reports"
	"github.com/andresuchdata/stockledger/internal/repository"
	"github.com/andresuchdata/stockledger/internal/seed"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/andresuchdata/stockledger/internal/storage"
	"github.com/andresuchdata/stockledger/pkg/logger"
	"github.com/urfave/cli/v2"
)

type serviceKey struct{}

func initService(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(c.String("log-level"))

	if backend := c.String("store"); backend != "" {
		cfg.Store.Backend = backend
	}
	if path := c.String("file"); path != "" {
		cfg.Store.FilePath = path
	}

	store, err := repository.Open(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}

	var objects storage.ObjectStorage = storage.NewMemoryStorage(0)
	if cfg.Storage.Enabled {
		client, err := storage.NewMinIOClient(c.Context, cfg.Storage)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to open report storage: %w", err)
		}
		objects = client
	}

	svc := service.NewLedgerService(
		ledger.New(),
		store,
		service.WithParams(analytics.ParamsFromConfig(cfg.Analytics)),
		service.WithGenerator(insight.NewGenerator(cfg.AI)),
		service.WithArchive(reports.NewArchive(objects)),
	)
	if _, err := svc.Bootstrap(c.Context, false); err != nil {
		_ = svc.Close()
		return err
	}

	c.Context = context.WithValue(c.Context, serviceKey{}, svc)
	return nil
}

func closeService(c *cli.Context) error {
	if svc, ok := c.Context.Value(serviceKey{}).(*service.LedgerService); ok && svc != nil {
		return svc.Close()
	}
	return nil
}

func ledgerService(c *cli.Context) *service.LedgerService {
	return c.Context.Value(serviceKey{}).(*service.LedgerService)
}

func main() {
	app := &cli.App{
		Name:  "ledgerctl",
		Usage: "Operate on a saved inventory ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Snapshot store backend (memory, file, redis, postgres)",
				EnvVars: []string{"STORE_BACKEND"},
			},
			&cli.StringFlag{
				Name:    "file",
				Usage:   "Snapshot file path for the file backend",
				EnvVars: []string{"STORE_FILE_PATH"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level",
				Value: "warn",
			},
		},
		Before: initService,
		After:  closeService,
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Load the demo dataset into an empty store",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Replace any existing ledger state"},
				},
				Action: runSeed,
			},
			{
				Name:      "analytics",
				Usage:     "Print an analytics view as JSON",
				ArgsUsage: "dashboard|aging|reorder|suppliers|po-aging|status|financials|copilot|product <id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "months", Usage: "Trailing months for the financials view", Value: 6},
				},
				Action: runAnalytics,
			},
			{
				Name:   "overdue",
				Usage:  "Flag overdue purchase orders",
				Action: runOverdue,
			},
			{
				Name:  "export",
				Usage: "Write the ledger snapshot as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output file (stdout when empty)"},
				},
				Action: runExport,
			},
			{
				Name:  "import",
				Usage: "Replace the ledger with a JSON snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "Snapshot file", Required: true},
				},
				Action: runImport,
			},
			{
				Name:  "report",
				Usage: "Generate an insight report and archive it",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Report title"},
				},
				Action: runReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("ledgerctl failed")
	}
}

func runSeed(c *cli.Context) error {
	svc := ledgerService(c)
	if len(svc.Ledger().Products()) > 0 && !c.Bool("force") {
		return errors.New("ledger already has data, pass --force to replace it")
	}
	snap := seed.Snapshot(svc.Ledger().Now())
	if err := svc.Import(c.Context, snap); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "seeded %d products, %d orders\n", len(snap.Products), len(snap.Orders))
	return nil
}

func runAnalytics(c *cli.Context) error {
	svc := ledgerService(c)
	ctx := c.Context

	var (
		out any
		err error
	)
	switch view := c.Args().First(); view {
	case "", "dashboard":
		out, err = svc.Dashboard(ctx)
	case "aging":
		out, err = svc.Aging(ctx)
	case "reorder":
		out, err = svc.ReorderSuggestions(ctx)
	case "suppliers":
		out, err = svc.SupplierPerformance(ctx)
	case "po-aging":
		out, err = svc.OpenPurchaseOrders(ctx)
	case "status":
		out, err = svc.StatusSummary(ctx)
	case "financials":
		out, err = svc.Financials(ctx, c.Int("months"))
	case "copilot":
		out, err = svc.CopilotInsights(ctx)
	case "product":
		if c.Args().Len() < 2 {
			return errors.New("product view needs a product id")
		}
		out, err = svc.ProductAnalysis(ctx, c.Args().Get(1))
	default:
		return fmt.Errorf("unknown analytics view %q", view)
	}
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, out)
}

func runOverdue(c *cli.Context) error {
	n, err := ledgerService(c).CheckOverdue(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d purchase order(s) flagged overdue\n", n)
	return nil
}

func runExport(c *cli.Context) error {
	snap := ledgerService(c).Export()
	path := c.String("out")
	if path == "" {
		return writeJSON(c.App.Writer, snap)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeJSON(f, snap)
}

func runImport(c *cli.Context) error {
	data, err := os.ReadFile(c.String("in"))
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if err := snap.CheckSchema(); err != nil {
		return err
	}
	if err := ledgerService(c).Import(c.Context, &snap); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d products, %d orders\n", len(snap.Products), len(snap.Orders))
	return nil
}

func runReport(c *cli.Context) error {
	report, result, err := ledgerService(c).GenerateReport(c.Context, c.String("title"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %s (%s)\n", result.Message, report.Filename, reports.FormatFileSize(report.Size))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
