package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"cardkeeper/internal/domain/balance"
	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/notification"
	"cardkeeper/internal/infrastructure/firebase"
	"cardkeeper/internal/infrastructure/postgres"
	"cardkeeper/internal/interfaces/scheduler"
	"cardkeeper/internal/shared/config"
	"cardkeeper/internal/shared/messages"
)

const usage = `Cardkeeper Admin CLI - Management commands for the Cardkeeper API

Usage:
  admin <command> [options]

Commands:
  stale-check      Recompute confirmed months and report checkpoints that
                   diverge from the current ledger
  send-reminders   Send confirmation reminder pushes for pending months now

Examples:
  # Audit a specific card
  admin stale-check --card-id=<uuid>

  # Audit several cards
  admin stale-check --card-id=<uuid1>,<uuid2>

  # Audit every active card
  admin stale-check --all

  # Trigger reminder pushes immediately
  admin send-reminders
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "stale-check":
		runStaleCheck(os.Args[2:])
	case "send-reminders":
		runSendReminders(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runStaleCheck(args []string) {
	fs := flag.NewFlagSet("stale-check", flag.ExitOnError)

	cardIDStr := fs.String("card-id", "", "Card ID(s) to audit (comma-separated for multiple)")
	allCards := fs.Bool("all", false, "Audit all active cards")
	timeoutStr := fs.String("timeout", "10m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin stale-check [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *cardIDStr == "" && !*allCards {
		fmt.Println("Error: must specify --card-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	db, cardRepo, balanceService, checkpointRepo := bootstrap()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cards, err := resolveCards(ctx, cardRepo, *cardIDStr, *allCards)
	if err != nil {
		log.Fatalf("Failed to resolve cards: %v", err)
	}
	if len(cards) == 0 {
		log.Println("No cards to audit")
		return
	}

	log.Printf("Auditing %d card(s) for stale checkpoints", len(cards))
	startTime := time.Now()
	staleTotal := 0

	for _, c := range cards {
		checkpoints, err := checkpointRepo.ListByCard(ctx, c.ID)
		if err != nil {
			log.Fatalf("Failed to list checkpoints for card %s: %v", c.ID, err)
		}

		fmt.Printf("\n=== Card %s (%s) ===\n", c.Name, c.ID)
		confirmed := 0
		for _, cp := range checkpoints {
			if !cp.Confirmed() {
				continue
			}
			confirmed++

			summary, err := balanceService.BuildMonthSummary(ctx, c.ID, cp.Year, cp.Month)
			if err != nil {
				log.Printf("  %04d-%02d: recompute failed: %v", cp.Year, cp.Month, err)
				continue
			}
			if summary.Stale {
				staleTotal++
				fmt.Printf("  %04d-%02d STALE: stored usage=%.2f repayment=%.2f closing=%.2f\n",
					cp.Year, cp.Month, cp.UsageTotal, cp.RepaymentTotal, cp.ClosingBalance)
				fmt.Printf("           recomputed usage=%.2f repayment=%.2f net=%.2f\n",
					summary.UsageTotal, summary.RepaymentTotal, summary.NetChange)
			}
		}
		fmt.Printf("  Confirmed checkpoints: %d\n", confirmed)
	}

	log.Printf("Stale check completed in %v: %d stale checkpoint(s) found", time.Since(startTime), staleTotal)
	if staleTotal > 0 {
		log.Println("Re-confirm the affected months to refresh their checkpoints")
	}
}

func runSendReminders(args []string) {
	fs := flag.NewFlagSet("send-reminders", flag.ExitOnError)
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	cardRepo := postgres.NewCardRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	checkpointRepo := postgres.NewCheckpointRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcmClient, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile, notificationRepo.DeactivateToken)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase client: %v", err)
		}
		messenger = fcmClient
	}

	cardService := card.NewService(cardRepo, transactionRepo, checkpointRepo)
	balanceService := balance.NewService(cardRepo, transactionRepo, checkpointRepo)
	notificationService := notification.NewService(notificationRepo, messenger)

	msgs, err := messages.Load("configs/notifications.json")
	if err != nil {
		log.Fatalf("Failed to load notification messages: %v", err)
	}

	provider := scheduler.NewReminderJobProvider(cardService, balanceService, notificationService, msgs)
	jobs, err := provider(ctx)
	if err != nil {
		log.Fatalf("Failed to build reminder jobs: %v", err)
	}

	log.Printf("Running %d reminder job(s)", len(jobs))
	for _, job := range jobs {
		if err := job.Execute(ctx); err != nil {
			log.Printf("Reminder failed for card %s: %v", job.CardID(), err)
		}
	}
	log.Println("Reminder run complete")
}

func bootstrap() (*postgres.DB, *postgres.CardRepository, *balance.Service, *postgres.CheckpointRepository) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	cardRepo := postgres.NewCardRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	checkpointRepo := postgres.NewCheckpointRepository(db)
	balanceService := balance.NewService(cardRepo, transactionRepo, checkpointRepo)

	return db, cardRepo, balanceService, checkpointRepo
}

func resolveCards(ctx context.Context, cardRepo *postgres.CardRepository, cardIDStr string, all bool) ([]*card.Card, error) {
	if all {
		return cardRepo.ListActive(ctx)
	}

	var cards []*card.Card
	for _, p := range strings.Split(cardIDStr, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c, err := cardRepo.GetByID(ctx, p)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("card %s not found", p)
		}
		cards = append(cards, c)
	}
	return cards, nil
}
