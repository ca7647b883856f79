package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cardkeeper/internal/domain/balance"
	"cardkeeper/internal/domain/card"
	"cardkeeper/internal/domain/notification"
	"cardkeeper/internal/shared/messages"
)

// reminderLookbackMonths bounds how far back the reminder job scans
// for unconfirmed months.
const reminderLookbackMonths = 12

// ConfirmReminderJob checks one card for past months that were never
// confirmed and pushes a reminder to all registered devices.
type ConfirmReminderJob struct {
	card                *card.Card
	balanceService      *balance.Service
	notificationService *notification.Service
	messages            *messages.Messages
}

// NewConfirmReminderJob creates a reminder job for a single card
func NewConfirmReminderJob(c *card.Card, balanceService *balance.Service, notificationService *notification.Service, msgs *messages.Messages) *ConfirmReminderJob {
	return &ConfirmReminderJob{
		card:                c,
		balanceService:      balanceService,
		notificationService: notificationService,
		messages:            msgs,
	}
}

// Execute builds the card's overview and sends a reminder when any
// past month in the window is still unconfirmed.
func (j *ConfirmReminderJob) Execute(ctx context.Context) error {
	overview, err := j.balanceService.BuildOverview(ctx, j.card.ID, reminderLookbackMonths)
	if err != nil {
		return fmt.Errorf("failed to build overview for card %s: %w", j.card.ID, err)
	}

	if len(overview.PendingConfirmations) == 0 {
		log.Printf("Reminder: card %s has no pending confirmations", j.card.ID)
		return nil
	}

	labels := make([]string, len(overview.PendingConfirmations))
	for i, m := range overview.PendingConfirmations {
		labels[i] = m.Label
	}

	body := fmt.Sprintf("%s: %s (%s)", j.card.Name, j.messages.ConfirmReminder.Body, strings.Join(labels, ", "))
	err = j.notificationService.SendToAll(ctx, j.messages.ConfirmReminder.Title, body, notification.CategoryReminders, map[string]string{
		"cardId": j.card.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to send reminder for card %s: %w", j.card.ID, err)
	}

	log.Printf("Reminder sent for card %s (%d pending months)", j.card.ID, len(overview.PendingConfirmations))
	return nil
}

// CardID returns the card this job operates on
func (j *ConfirmReminderJob) CardID() string {
	return j.card.ID
}

// Description returns a human-readable description of the job
func (j *ConfirmReminderJob) Description() string {
	return fmt.Sprintf("Confirmation reminder for card %s", j.card.Name)
}

// NewReminderJobProvider returns a job provider that creates one
// reminder job per active card.
func NewReminderJobProvider(cardService *card.Service, balanceService *balance.Service, notificationService *notification.Service, msgs *messages.Messages) func(context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		cards, err := cardService.ListCards(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("failed to list cards for reminder batch: %w", err)
		}

		jobs := make([]Job, 0, len(cards))
		for _, c := range cards {
			jobs = append(jobs, NewConfirmReminderJob(c, balanceService, notificationService, msgs))
		}
		return jobs, nil
	}
}
