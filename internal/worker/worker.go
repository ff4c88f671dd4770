package worker

import (
	"context"
	"time"

	"github.com/cradoe/verime/internal/auth"
	"github.com/cradoe/verime/internal/repository"
	"github.com/cradoe/verime/internal/risk"
	"github.com/cradoe/verime/internal/smtp"
	"github.com/cradoe/verime/internal/stream"
	"github.com/cradoe/verime/internal/verification"
)

type Worker struct {
	KafkaStream   *stream.KafkaStream
	Lifecycle     *verification.Lifecycle
	Assessor      *risk.Assessor
	Authenticator *auth.Authenticator
	UserRepo      repository.UserRepository
	Mailer        smtp.MailerInterface
	Ctx           context.Context
	SweepInterval time.Duration
}

const (
	// screeningResultGroupID is used for workers that record screening outcomes
	// fed in by external screening providers
	screeningResultGroupID = "screening-result-group"

	// kycDecisionGroupID is used for workers that react to reviewer decisions
	kycDecisionGroupID = "kyc-decision-group"

	// Topics
	// ScreeningResultTopic carries screening outcomes from external providers.
	// Each message is recorded against its verification and triggers a risk
	// level recompute.
	ScreeningResultTopic = "screening.result"
)

// Our workers typically needs access to the core services and kafka event stream
// worker-specific dependency can be passed as argument to the worker
func New(wk *Worker) *Worker {
	instance := &Worker{
		KafkaStream:   wk.KafkaStream,
		Lifecycle:     wk.Lifecycle,
		Assessor:      wk.Assessor,
		Authenticator: wk.Authenticator,
		UserRepo:      wk.UserRepo,
		Mailer:        wk.Mailer,
		Ctx:           wk.Ctx,
		SweepInterval: wk.SweepInterval,
	}

	if instance.SweepInterval <= 0 {
		instance.SweepInterval = 5 * time.Minute
	}

	return instance
}
