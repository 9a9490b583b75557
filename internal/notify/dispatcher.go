package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"encore/internal/config"
	"encore/internal/logging"
	"encore/internal/requests"
)

// notificationStore is the narrow persistence surface the dispatcher needs.
type notificationStore interface {
	MarkNotified(ctx context.Context, id string) (bool, error)
}

// Result reports which channels delivered for one request.
type Result struct {
	SMSSent   bool
	EmailSent bool
}

// Sent reports whether at least one channel delivered.
func (r Result) Sent() bool {
	return r.SMSSent || r.EmailSent
}

// Dispatcher fans a matched request out to the configured channels.
type Dispatcher struct {
	performer string
	sms       SMSGateway
	email     EmailGateway
	store     notificationStore
	logger    *slog.Logger
}

// NewDispatcher wires the configured gateways. Channels left disabled in the
// configuration are simply absent.
func NewDispatcher(cfg *config.Config, store notificationStore, logger *slog.Logger) *Dispatcher {
	performer := ""
	if cfg != nil {
		performer = strings.TrimSpace(cfg.Performer.Name)
	}
	return &Dispatcher{
		performer: performer,
		sms:       NewSMSGateway(cfg),
		email:     NewEmailGateway(cfg),
		store:     store,
		logger:    logging.NewComponentLogger(logger, "notify"),
	}
}

// Notify tells the requester their song is playing. Requests already flagged
// as notified are skipped. SMS and email are attempted independently; the
// notified flag is persisted only when at least one channel succeeds, which
// leaves fully failed requests eligible for retry on the next match.
func (d *Dispatcher) Notify(ctx context.Context, req *requests.Request) (Result, error) {
	var result Result
	if req == nil {
		return result, fmt.Errorf("request is nil")
	}
	if req.NotificationSent {
		if d.logger != nil {
			d.logger.Debug("notification already sent", logging.String(logging.FieldRequestID, req.ID))
		}
		return result, nil
	}

	message := d.message(req)
	var firstErr error

	if d.sms != nil && strings.TrimSpace(req.RequesterPhone) != "" {
		if err := d.sms.SendSMS(ctx, req.RequesterPhone, message); err != nil {
			firstErr = err
			if d.logger != nil {
				d.logger.Warn("sms delivery failed",
					logging.String(logging.FieldRequestID, req.ID),
					logging.Error(err))
			}
		} else {
			result.SMSSent = true
		}
	}

	if d.email != nil && strings.TrimSpace(req.RequesterEmail) != "" {
		if err := d.email.SendEmail(ctx, req.RequesterEmail, d.subject(req), message); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if d.logger != nil {
				d.logger.Warn("email delivery failed",
					logging.String(logging.FieldRequestID, req.ID),
					logging.Error(err))
			}
		} else {
			result.EmailSent = true
		}
	}

	if !result.Sent() {
		return result, firstErr
	}

	claimed, err := d.store.MarkNotified(ctx, req.ID)
	if err != nil {
		return result, fmt.Errorf("persist notified flag: %w", err)
	}
	if d.logger != nil {
		d.logger.Info("requester notified",
			logging.String(logging.FieldRequestID, req.ID),
			logging.Bool("sms", result.SMSSent),
			logging.Bool("email", result.EmailSent),
			logging.Bool("claimed", claimed))
	}
	return result, nil
}

// Test sends a test message to the given destinations through whichever
// channels are configured.
func (d *Dispatcher) Test(ctx context.Context, phone, email string) error {
	message := "Encore notification test. If you can read this, delivery works."
	var firstErr error

	if d.sms != nil && strings.TrimSpace(phone) != "" {
		if err := d.sms.SendSMS(ctx, phone, message); err != nil {
			firstErr = err
		}
	}
	if d.email != nil && strings.TrimSpace(email) != "" {
		if err := d.email.SendEmail(ctx, email, "Encore test notification", message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Enabled reports whether any channel is configured.
func (d *Dispatcher) Enabled() bool {
	return d != nil && (d.sms != nil || d.email != nil)
}

func (d *Dispatcher) message(req *requests.Request) string {
	song := strings.TrimSpace(req.SongTitle)
	if artist := strings.TrimSpace(req.SongArtist); artist != "" {
		song = fmt.Sprintf("%s by %s", song, artist)
	}
	if d.performer != "" {
		return fmt.Sprintf("%s is playing your request: %s", d.performer, song)
	}
	return fmt.Sprintf("Your request is playing now: %s", song)
}

func (d *Dispatcher) subject(req *requests.Request) string {
	return fmt.Sprintf("Your request %q is playing", strings.TrimSpace(req.SongTitle))
}
