package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/stream"
	"github.com/cradoe/verime/internal/verification"
)

// DecisionWorker emails subjects the outcome of their verification review.
// Consuming the decision topic keeps notification delivery off the review
// request path.
func (wk *Worker) DecisionWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: kycDecisionGroupID,
		Topic:   verification.DecisionTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			var decision verification.DecisionEvent
			if err := json.Unmarshal(e.Value, &decision); err != nil {
				log.Printf("Error decoding decision event: %v", err)
				continue
			}

			wk.notifyDecision(&decision)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) notifyDecision(decision *verification.DecisionEvent) {
	user, found, err := wk.UserRepo.GetOne(decision.UserID)
	if err != nil {
		log.Printf("Error finding user %s for decision notification: %v", decision.UserID, err)
		return
	}
	if !found {
		log.Printf("No user %s found for decision notification", decision.UserID)
		return
	}

	emailData := map[string]any{
		"Name":   user.FirstName + " " + user.LastName,
		"Status": string(decision.Status),
	}
	if decision.ExpiresAt != nil {
		emailData["ExpiresAt"] = *decision.ExpiresAt
	}

	templateFile := "verification-rejected.tmpl"
	if decision.Status == models.VerificationApprovedStatus {
		templateFile = "verification-approved.tmpl"
	}

	if err := wk.Mailer.Send(user.Email, emailData, templateFile); err != nil {
		log.Printf("Error sending decision email to user %s: %v", user.ID, err)
		return
	}

	log.Printf("Decision notification sent for verification %s", decision.VerificationID)
}
