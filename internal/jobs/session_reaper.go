package jobs

import (
	"time"

	"github.com/bcmimarlik/site/internal/session"
	"github.com/sirupsen/logrus"
)

// SessionReaperTask closes editing sessions that have been idle too long.
type SessionReaperTask struct {
	registry *session.Registry
	maxIdle  time.Duration
	cron     string
}

func NewSessionReaperTask(interval string, registry *session.Registry, maxIdle time.Duration) *SessionReaperTask {
	return &SessionReaperTask{
		registry: registry,
		maxIdle:  maxIdle,
		cron:     interval,
	}
}

func (s *SessionReaperTask) Name() string {
	return "session_reaper"
}

func (s *SessionReaperTask) Schedule() string {
	return s.cron
}

func (s *SessionReaperTask) Run() {
	if reaped := s.registry.Reap(s.maxIdle); reaped.Cardinality() > 0 {
		logrus.Infof("closed %d idle editing sessions", reaped.Cardinality())
	}
}
