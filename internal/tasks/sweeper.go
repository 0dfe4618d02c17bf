package tasks

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Hyun-hyo-min/QuickDraw/internal/auth"
)

type CredentialStore interface {
	Credential() (string, bool)
	ClearCredential() error
}

// CredentialSweeper periodically drops an expired stored credential so the
// next launch goes straight to login instead of bouncing off a 401.
type CredentialSweeper struct {
	store CredentialStore
	cron  *cron.Cron
}

func NewCredentialSweeper(store CredentialStore) *CredentialSweeper {
	return &CredentialSweeper{store: store}
}

func (s *CredentialSweeper) Start() {
	c := cron.New()

	_, err := c.AddFunc("@hourly", s.sweep)
	if err != nil {
		log.Printf("[TASKS] Error scheduling credential sweep: %v", err)
		return
	}

	c.Start()
	s.cron = c
}

func (s *CredentialSweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *CredentialSweeper) sweep() {
	token, ok := s.store.Credential()
	if !ok {
		return
	}

	expiry, err := auth.Expiry(token)
	if err != nil {
		log.Printf("[TASKS] Stored credential is undecodable, clearing: %v", err)
		if err := s.store.ClearCredential(); err != nil {
			log.Printf("[TASKS] Credential clear failed: %v", err)
		}
		return
	}

	if time.Now().After(expiry) {
		log.Printf("[TASKS] Stored credential expired at %s, clearing", expiry.Format(time.RFC3339))
		if err := s.store.ClearCredential(); err != nil {
			log.Printf("[TASKS] Credential clear failed: %v", err)
		}
	}
}
