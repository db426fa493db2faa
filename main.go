package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/seiban/invoice-transfer-pipeline/internal/api"
	"github.com/seiban/invoice-transfer-pipeline/internal/config"
	"github.com/seiban/invoice-transfer-pipeline/internal/ledger"
	"github.com/seiban/invoice-transfer-pipeline/internal/models"
	"github.com/seiban/invoice-transfer-pipeline/internal/notify"
	"github.com/seiban/invoice-transfer-pipeline/internal/pipeline"
	"github.com/seiban/invoice-transfer-pipeline/internal/registry"
	"github.com/seiban/invoice-transfer-pipeline/internal/resolver"
)

const version = "1.0.0"

func main() {
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of processing files")
	ledgerFlag := flag.String("ledger-dir", "", "Directory holding the per-month transfer files (overrides LEDGER_DIR)")
	registryFlag := flag.String("registry", "", "Base URL of the institution dataset (overrides REGISTRY_BASE_URL)")
	webhookFlag := flag.String("webhook", "", "Notification webhook URL (overrides WEBHOOK_URL)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Invoice Transfer Pipeline

Reads invoice documents (PDF or text), resolves the payee's bank and
branch to their registry codes, and appends admitted payments to the
monthly batch-transfer file. Urgent or duplicate payments are held for
human review.

Usage:
  invoice-transfer-pipeline [flags] <invoice.pdf> [invoice2.pdf ...]
  invoice-transfer-pipeline -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Process invoices into ./7月振込用.csv (current month)
  invoice-transfer-pipeline invoice.pdf

  # Keep transfer files in a dedicated directory
  invoice-transfer-pipeline -ledger-dir=/data/transfers invoice.pdf

  # Run the HTTP API (PORT env var or 3000)
  invoice-transfer-pipeline -serve
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("invoice-transfer-pipeline v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || (!*serveFlag && flag.NArg() == 0) {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.Load()
	if *ledgerFlag != "" {
		cfg.LedgerDir = *ledgerFlag
	}
	if *registryFlag != "" {
		cfg.RegistryBaseURL = *registryFlag
	}
	if *webhookFlag != "" {
		cfg.WebhookURL = *webhookFlag
	}

	p := buildPipeline(cfg)

	if *serveFlag {
		serve(cfg, p)
		return
	}

	outcomes := p.ProcessBatch(context.Background(), flag.Args())

	failed := 0
	for _, out := range outcomes {
		switch out.Decision {
		case models.Admitted:
			fmt.Printf("%s: admitted (%s %s)\n", out.Source, out.Invoice.Codes.BankCode, out.Invoice.Codes.BranchCode)
		default:
			failed++
			fmt.Printf("%s: %s", out.Source, out.Decision)
			if out.Reason != "" {
				fmt.Printf(" (%s)", out.Reason)
			}
			fmt.Println()
		}
	}
	fmt.Printf("Processed %d file(s), %d held for review.\n", len(outcomes), failed)

	if failed == len(outcomes) && len(outcomes) > 0 {
		os.Exit(1)
	}
}

func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	reg := registry.New(cfg.RegistryBaseURL)
	res := resolver.New(reg, nil, nil)
	store := ledger.NewStore(cfg.LedgerDir)
	checker := ledger.NewChecker(store, nil, nil)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL)
	}

	return pipeline.New(nil, res, checker, notifier, slog.Default())
}

func serve(cfg *config.Config, p *pipeline.Pipeline) {
	app := fiber.New(fiber.Config{
		AppName:   "invoice-transfer-pipeline v" + version,
		BodyLimit: 32 << 20,
	})
	(&api.Handler{Pipeline: p}).Register(app)

	addr := ":" + cfg.Port
	slog.Info("listening", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
