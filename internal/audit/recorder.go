// Package audit provides the best-effort security audit trail. Recording an
// event never fails the operation being audited: entries flow through an
// in-process pub/sub channel to a background writer, and any failure along
// the way is logged and swallowed.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/datatypes"

	"github.com/Vasugoli/classTrack/internal/models"
	"github.com/Vasugoli/classTrack/internal/repositories"
	"github.com/Vasugoli/classTrack/internal/utils"
)

const auditTopic = "audit.events"

// Entry is one auditable event. Details carries structured context that ends
// up in the jsonb column.
type Entry struct {
	UserID    string                 `json:"user_id"`
	Action    models.AuditAction     `json:"action"`
	IPAddress string                 `json:"ip_address"`
	DeviceID  string                 `json:"device_id"`
	Location  *string                `json:"location"`
	Details   map[string]interface{} `json:"details"`
	Timestamp time.Time              `json:"timestamp"`
}

// Recorder accepts audit entries without ever propagating an error back to
// the caller.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
	Close() error
}

type channelRecorder struct {
	pubSub *gochannel.GoChannel
	repo   repositories.AuditLogRepository
	logger utils.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRecorder starts a background writer that drains published entries into
// the audit repository.
func NewRecorder(repo repositories.AuditLogRepository, logger utils.Logger) (Recorder, error) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NopLogger{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	messages, err := pubSub.Subscribe(ctx, auditTopic)
	if err != nil {
		cancel()
		return nil, err
	}

	r := &channelRecorder{
		pubSub: pubSub,
		repo:   repo,
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go r.drain(messages)
	return r, nil
}

// Record publishes the entry to the background writer. Publish failures fall
// back to a synchronous write; if that fails too, the entry is logged and
// dropped.
func (r *channelRecorder) Record(ctx context.Context, entry Entry) {
	if entry.UserID == "" {
		entry.UserID = models.UnknownSubject
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		r.logger.Error("audit entry not serializable",
			"action", entry.Action, "user_id", entry.UserID, "error", err)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := r.pubSub.Publish(auditTopic, msg); err != nil {
		r.logger.Warn("audit publish failed, writing synchronously", "error", err)
		r.persist(ctx, entry)
	}
}

func (r *channelRecorder) drain(messages <-chan *message.Message) {
	defer close(r.done)
	for msg := range messages {
		var entry Entry
		if err := json.Unmarshal(msg.Payload, &entry); err != nil {
			r.logger.Error("malformed audit payload dropped", "error", err)
			msg.Ack()
			continue
		}
		r.persist(context.Background(), entry)
		msg.Ack()
	}
}

func (r *channelRecorder) persist(ctx context.Context, entry Entry) {
	record := &models.AuditLog{
		UserID:    entry.UserID,
		Action:    entry.Action,
		IPAddress: entry.IPAddress,
		DeviceID:  entry.DeviceID,
		Location:  entry.Location,
		Timestamp: entry.Timestamp,
	}
	if len(entry.Details) > 0 {
		data, err := json.Marshal(entry.Details)
		if err == nil {
			record.Details = datatypes.JSON(data)
		}
	}

	if err := r.repo.Create(ctx, record); err != nil {
		r.logger.Error("audit write failed",
			"action", entry.Action, "user_id", entry.UserID, "error", err)
	}
}

// Close stops accepting entries and waits for the writer to drain.
func (r *channelRecorder) Close() error {
	err := r.pubSub.Close()
	r.cancel()
	<-r.done
	return err
}
