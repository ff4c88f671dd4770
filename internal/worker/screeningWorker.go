package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/cradoe/verime/internal/models"
	"github.com/cradoe/verime/internal/stream"
)

// ScreeningResultMessage is the payload external screening providers publish
// on the screening.result topic.
type ScreeningResultMessage struct {
	VerificationID string          `json:"verification_id"`
	UserID         string          `json:"user_id"`
	Type           string          `json:"type"`
	MatchFound     bool            `json:"match_found"`
	RiskScore      int             `json:"risk_score"`
	Details        json.RawMessage `json:"details"`
}

// ScreeningWorker records screening outcomes as they arrive from external
// providers. Recording recomputes the verification's risk level, so the
// rating stays current with the evidence.
func (wk *Worker) ScreeningWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: screeningResultGroupID,
		Topic:   ScreeningResultTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			var message ScreeningResultMessage
			if err := json.Unmarshal(e.Value, &message); err != nil {
				log.Printf("Error decoding screening result message: %v", err)
				continue
			}

			wk.recordScreening(&message)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) recordScreening(message *ScreeningResultMessage) {
	_, err := wk.Assessor.RecordScreening(
		message.VerificationID,
		message.UserID,
		models.ScreeningType(message.Type),
		message.MatchFound,
		message.RiskScore,
		message.Details,
	)
	if err != nil {
		log.Printf("Error recording screening result for verification %s: %v", message.VerificationID, err)
		return
	}

	log.Printf("Screening result recorded for verification %s", message.VerificationID)
}
