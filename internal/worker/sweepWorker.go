package worker

import (
	"log"
	"time"
)

// SweepWorker periodically expires overdue approvals and deletes expired
// OTP challenges. Both jobs run conditional updates scoped by current
// state, so overlapping runs across process instances are harmless.
func (wk *Worker) SweepWorker() {
	ticker := time.NewTicker(wk.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wk.Ctx.Done():
			return
		case <-ticker.C:
			wk.runSweep()
		}
	}
}

func (wk *Worker) runSweep() {
	expired, err := wk.Lifecycle.SweepExpired()
	if err != nil {
		log.Printf("Error sweeping expired verifications: %v", err)
	} else if expired > 0 {
		log.Printf("Expired %d verification(s)", expired)
	}

	deleted, err := wk.Authenticator.CleanupExpired()
	if err != nil {
		log.Printf("Error deleting expired otp challenges: %v", err)
	} else if deleted > 0 {
		log.Printf("Deleted %d expired otp challenge(s)", deleted)
	}
}
