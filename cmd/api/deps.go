package main

import (
	"context"
	"log"

	"cardkeeper/internal/domain/balance"
	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/ledger"
	"cardkeeper/internal/domain/notification"
	"cardkeeper/internal/infrastructure/firebase"
	"cardkeeper/internal/infrastructure/postgres"
	httphandlers "cardkeeper/internal/interfaces/http"
	"cardkeeper/internal/shared/auth"
	"cardkeeper/internal/shared/config"
	"cardkeeper/internal/shared/messages"
)

const messagesFile = "configs/notifications.json"

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler         *httphandlers.AuthHandler
	CardHandler         *httphandlers.CardHandler
	TransactionHandler  *httphandlers.TransactionHandler
	BalanceHandler      *httphandlers.BalanceHandler
	ImportHandler       *httphandlers.ImportHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT *auth.JWT

	// Services (for the scheduler job provider)
	CardService         *card.Service
	BalanceService      *balance.Service
	NotificationService *notification.Service
	Messages            *messages.Messages
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	// Connect to database
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	// Initialize repositories
	cardRepo := postgres.NewCardRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	checkpointRepo := postgres.NewCheckpointRepository(db)
	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Initialize domain services
	cardService := card.NewService(cardRepo, transactionRepo, checkpointRepo)
	ledgerService := ledger.NewService(transactionRepo, cardRepo)
	balanceService := balance.NewService(cardRepo, transactionRepo, checkpointRepo)
	importer := ledger.NewImporter(transactionRepo, cardRepo, checkpointRepo)

	// Initialize FCM messenger when credentials are configured
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcmClient, err := firebase.NewClient(context.Background(), cfg.Firebase.CredentialsFile, notificationRepo.DeactivateToken)
		if err != nil {
			log.Printf("Warning: Failed to initialize Firebase client: %v", err)
		} else {
			messenger = fcmClient
			log.Println("Firebase messaging initialized")
		}
	} else {
		log.Println("Firebase credentials not configured, push notifications disabled")
	}
	notificationService := notification.NewService(notificationRepo, messenger)

	msgs, err := messages.Load(messagesFile)
	if err != nil {
		log.Printf("Warning: Failed to load notification messages: %v", err)
		msgs = &messages.Messages{}
	}

	// Initialize auth components
	jwt := auth.NewJWT(cfg.JWT.Secret)

	// Initialize handlers
	importDefaults := ledger.ImportDefaults{
		External:           cfg.Import.DefaultExternal,
		ExternalMultiplier: cfg.Import.DefaultMultiplier,
	}

	return &Dependencies{
		DB:                  db,
		AuthHandler:         httphandlers.NewAuthHandler(userRepo, jwt),
		CardHandler:         httphandlers.NewCardHandler(cardService),
		TransactionHandler:  httphandlers.NewTransactionHandler(ledgerService),
		BalanceHandler:      httphandlers.NewBalanceHandler(balanceService, cardService),
		ImportHandler:       httphandlers.NewImportHandler(importer, importDefaults, notificationService, msgs),
		NotificationHandler: httphandlers.NewNotificationHandler(notificationService),
		JWT:                 jwt,
		CardService:         cardService,
		BalanceService:      balanceService,
		NotificationService: notificationService,
		Messages:            msgs,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
