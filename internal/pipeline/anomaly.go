package pipeline

import (
	"context"
	"strings"

	"github.com/Vasugoli/classTrack/internal/audit"
	"github.com/Vasugoli/classTrack/internal/models"
)

var botSubstrings = []string{"bot", "crawler", "spider", "curl", "python-requests"}

// AnomalyStage flags requests that look automated or spoofed. It is strictly
// advisory: findings are audited as suspicious activity and attached to the
// context, but the request continues regardless.
type AnomalyStage struct {
	recorder   audit.Recorder
	production bool
}

func NewAnomalyStage(recorder audit.Recorder, production bool) *AnomalyStage {
	return &AnomalyStage{recorder: recorder, production: production}
}

func (s *AnomalyStage) Name() string { return "anomaly" }

func (s *AnomalyStage) Run(ctx context.Context, pctx Context) (Context, *Failure) {
	var suspicions []string

	lowered := strings.ToLower(pctx.UserAgent)
	for _, marker := range botSubstrings {
		if strings.Contains(lowered, marker) {
			suspicions = append(suspicions, "automated user agent")
			break
		}
	}
	if len(pctx.UserAgent) < 10 {
		suspicions = append(suspicions, "user agent too short")
	}
	if s.production && isLoopback(pctx.IPAddress) {
		suspicions = append(suspicions, "loopback address in production")
	}

	if len(suspicions) > 0 {
		s.recorder.Record(ctx, audit.Entry{
			UserID:    pctx.UserID,
			Action:    models.AuditSuspiciousActivity,
			IPAddress: pctx.IPAddress,
			Details: map[string]interface{}{
				"signals":    suspicions,
				"user_agent": pctx.UserAgent,
			},
		})
		pctx.Suspicions = suspicions
	}
	return pctx, nil
}

func isLoopback(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" || ip == "localhost"
}
