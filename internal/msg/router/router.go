// Package router consumes scan events from the broker, runs each one
// through the toggle pipeline and publishes the outcome for the scanner's
// display client.
package router

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"rfid-bridge/internal/model"
	"rfid-bridge/internal/normalize"
	"rfid-bridge/internal/service"
	"rfid-bridge/pkg/mqtt"
)

const notRegisteredMarker = "Item nao cadastrado"

const (
	AlertKeysLegacy = "legacy"
	AlertKeysPlain  = "plain"
)

type Config struct {
	ScanTopic     string
	ResponseTopic string
	AlertTopic    string
	AlertKeys     string
}

type Subscriber interface {
	Subscribe(topic string) error
	Messages() <-chan mqtt.Message
}

type Publisher interface {
	Publish(topic string, payload []byte) error
}

type ToggleService interface {
	HandleScan(ctx context.Context, rawUID string) (*service.ToggleOutcome, error)
}

type Router struct {
	log *zap.Logger
	cfg Config
	sub Subscriber
	pub Publisher
	svc ToggleService
}

func NewRouter(log *zap.Logger, cfg Config, sub Subscriber, pub Publisher, svc ToggleService) *Router {
	return &Router{
		log: log,
		cfg: cfg,
		sub: sub,
		pub: pub,
		svc: svc,
	}
}

// Run subscribes to the scan topic and handles messages one at a time until
// the context is canceled. Serial handling is what keeps two reads of the
// same tag from racing each other; the in-flight message always finishes
// before Run returns.
func (r *Router) Run(ctx context.Context) error {
	if err := r.sub.Subscribe(r.cfg.ScanTopic); err != nil {
		return err
	}

	r.log.Info("Subscribed to scan topic", zap.String("topic", r.cfg.ScanTopic))

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Context canceled, stopping router")

			return nil
		case msg, ok := <-r.sub.Messages():
			if !ok {
				r.log.Info("Broker messages channel closed")

				return nil
			}

			r.dispatch(ctx, msg)
		}
	}
}

// dispatch handles one inbound message end to end. Every failure in here is
// per-message: log, drop, move on.
func (r *Router) dispatch(ctx context.Context, msg mqtt.Message) {
	var event model.ScanEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		r.log.Error("Discarding malformed scan payload",
			zap.String("topic", msg.Topic),
			zap.Error(err),
		)

		return
	}

	if strings.TrimSpace(event.UID) == "" {
		r.log.Error("Discarding scan payload without uid", zap.String("topic", msg.Topic))

		return
	}

	out, err := r.svc.HandleScan(ctx, event.UID)
	if err != nil {
		r.log.Error("Failed to handle scan, message dropped",
			zap.String("uid", event.UID),
			zap.Error(err),
		)

		return
	}

	if out.Found {
		r.publishToggled(out)

		return
	}

	// Two independent publishes: a failed response must not suppress the
	// alert, and the other way round.
	r.publishNotRegistered(out)
	r.publishAlert(out)
}

func (r *Router) publishToggled(out *service.ToggleOutcome) {
	resp := model.ToggleResponse{
		Nome:   normalize.Display(out.Item.Name),
		Status: normalize.Display(out.StatusText),
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		r.log.Error("Failed to marshal toggle response", zap.String("scan_id", out.ScanID.String()), zap.Error(err))

		return
	}

	if err := r.pub.Publish(r.cfg.ResponseTopic, payload); err != nil {
		r.log.Error("Failed to publish toggle response",
			zap.String("scan_id", out.ScanID.String()),
			zap.Error(err),
		)

		return
	}

	r.log.Info("Item toggled",
		zap.String("scan_id", out.ScanID.String()),
		zap.String("uid", out.UID),
		zap.String("status", out.NewStatus.String()),
	)
}

func (r *Router) publishNotRegistered(out *service.ToggleOutcome) {
	payload, err := json.Marshal(model.NotRegisteredResponse{Erro: notRegisteredMarker})
	if err != nil {
		r.log.Error("Failed to marshal not-registered response", zap.Error(err))

		return
	}

	if err := r.pub.Publish(r.cfg.ResponseTopic, payload); err != nil {
		r.log.Error("Failed to publish not-registered response",
			zap.String("scan_id", out.ScanID.String()),
			zap.Error(err),
		)
	}
}

func (r *Router) publishAlert(out *service.ToggleOutcome) {
	payload, err := json.Marshal(alertPayload(r.cfg.AlertKeys, out))
	if err != nil {
		r.log.Error("Failed to marshal not-found alert", zap.Error(err))

		return
	}

	if err := r.pub.Publish(r.cfg.AlertTopic, payload); err != nil {
		r.log.Error("Failed to publish not-found alert",
			zap.String("scan_id", out.ScanID.String()),
			zap.Error(err),
		)

		return
	}

	r.log.Info("Unregistered tag reported",
		zap.String("scan_id", out.ScanID.String()),
		zap.String("uid", out.UID),
	)
}

func alertPayload(keys string, out *service.ToggleOutcome) any {
	hora := out.ReadAt.Format("15:04:05")

	if keys == AlertKeysPlain {
		return model.NotFoundAlertPlain{
			Identifier: out.UID,
			Time:       hora,
		}
	}

	return model.NotFoundAlert{
		UID:  out.UID,
		Hora: hora,
	}
}
