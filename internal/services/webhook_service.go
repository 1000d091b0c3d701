package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/metrics"
	"rentpay-backend/internal/models"
)

// Processor event types the ledger reacts to.
const (
	EventPaymentSucceeded      = "payment_intent.succeeded"
	EventPaymentFailed         = "payment_intent.payment_failed"
	EventPaymentMethodAttached = "payment_method.attached"
	EventPaymentMethodDetached = "payment_method.detached"
)

// SignatureError reports a webhook payload that failed verification.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string { return e.Err.Error() }

func (e *SignatureError) Unwrap() error { return e.Err }

// WebhookService verifies processor events and appends their outcomes to the ledger.
type WebhookService struct {
	secret     string
	payments   PaymentStore
	properties PropertyStore
	cache      PaymentMethodCache
	archiver   EventArchiver
	notifiers  []PaymentNotifier
	log        *logrus.Entry
}

// NewWebhookService builds the ledger writer. archiver may be nil.
func NewWebhookService(secret string, payments PaymentStore, properties PropertyStore, cache PaymentMethodCache, archiver EventArchiver, notifiers ...PaymentNotifier) *WebhookService {
	return &WebhookService{
		secret:     secret,
		payments:   payments,
		properties: properties,
		cache:      cache,
		archiver:   archiver,
		notifiers:  notifiers,
		log:        logrus.WithField("component", "webhook"),
	}
}

// Handle verifies payload against the signature header and applies the event.
// A *SignatureError means nothing was written. Any other error means the
// processor should redeliver.
func (s *WebhookService) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		s.log.WithError(err).Warn("webhook signature verification failed")
		return &SignatureError{Err: err}
	}

	eventType := string(event.Type)
	log := s.log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": eventType})

	switch eventType {
	case EventPaymentSucceeded:
		err = s.recordIntent(ctx, &event, models.PaymentCompleted, log)
	case EventPaymentFailed:
		err = s.recordIntent(ctx, &event, models.PaymentFailed, log)
	case EventPaymentMethodAttached, EventPaymentMethodDetached:
		s.invalidatePaymentMethods(ctx, &event, log)
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "handled").Inc()
	default:
		log.Info("unhandled event type")
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "ignored").Inc()
	}
	if err != nil {
		return err
	}

	s.archive(ctx, event.ID, eventType, payload, log)
	return nil
}

func (s *WebhookService) recordIntent(ctx context.Context, event *stripe.Event, status string, log *logrus.Entry) error {
	eventType := string(event.Type)

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.WithError(err).Error("failed to decode payment intent")
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "malformed").Inc()
		return nil
	}

	tenantID, propertyID := pi.Metadata["tenant_id"], pi.Metadata["property_id"]
	if tenantID == "" || propertyID == "" {
		log.WithField("payment_intent_id", pi.ID).Warn("payment intent has no tenant metadata, skipping")
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "skipped").Inc()
		return nil
	}

	eventID := event.ID
	payment := &models.Payment{
		TenantID:              tenantID,
		PropertyID:            propertyID,
		Amount:                float64(pi.Amount) / 100,
		StripePaymentIntentID: pi.ID,
		StripeEventID:         &eventID,
		Status:                status,
	}
	if status == models.PaymentCompleted {
		payment.PaymentMethodLast4 = cardLast4(&pi, event.Data.Raw)
	}

	created, err := s.payments.Record(ctx, payment)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "error").Inc()
		return apperr.Internal("Failed to record payment", err)
	}
	if !created {
		log.Info("event already recorded")
		metrics.WebhookEventsTotal.WithLabelValues(eventType, "duplicate").Inc()
		return nil
	}

	metrics.WebhookEventsTotal.WithLabelValues(eventType, "recorded").Inc()
	log.WithFields(logrus.Fields{
		"payment_id":  payment.ID,
		"tenant_id":   tenantID,
		"property_id": propertyID,
		"amount":      payment.Amount,
		"status":      status,
	}).Info("payment recorded")

	s.notify(ctx, payment, log)
	return nil
}

// cardLast4 reads the card digits from the latest charge, falling back to the
// charges list older API versions embed in the intent.
func cardLast4(pi *stripe.PaymentIntent, raw json.RawMessage) *string {
	if ch := pi.LatestCharge; ch != nil && ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Card != nil {
		if last4 := ch.PaymentMethodDetails.Card.Last4; last4 != "" {
			return &last4
		}
	}

	var legacy struct {
		Charges struct {
			Data []struct {
				PaymentMethodDetails struct {
					Card struct {
						Last4 string `json:"last4"`
					} `json:"card"`
				} `json:"payment_method_details"`
			} `json:"data"`
		} `json:"charges"`
	}
	if err := json.Unmarshal(raw, &legacy); err != nil || len(legacy.Charges.Data) == 0 {
		return nil
	}
	if last4 := legacy.Charges.Data[0].PaymentMethodDetails.Card.Last4; last4 != "" {
		return &last4
	}
	return nil
}

func (s *WebhookService) notify(ctx context.Context, payment *models.Payment, log *logrus.Entry) {
	if len(s.notifiers) == 0 {
		return
	}

	event := models.PaymentEvent{
		Type:       models.PaymentEventRecorded,
		PaymentID:  payment.ID,
		TenantID:   payment.TenantID,
		PropertyID: payment.PropertyID,
		Amount:     payment.Amount,
		Status:     payment.Status,
		RecordedAt: payment.PaymentDate,
	}
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC()
	}
	if prop, err := s.properties.Get(ctx, payment.PropertyID); err == nil {
		event.LandlordID = prop.LandlordID
	} else {
		log.WithError(err).Warn("could not resolve landlord for notification")
	}

	for _, n := range s.notifiers {
		n.PaymentRecorded(ctx, event)
	}
}

func (s *WebhookService) invalidatePaymentMethods(ctx context.Context, event *stripe.Event, log *logrus.Entry) {
	var pm stripe.PaymentMethod
	if err := json.Unmarshal(event.Data.Raw, &pm); err != nil {
		log.WithError(err).Warn("failed to decode payment method")
		return
	}

	customerID := ""
	if pm.Customer != nil {
		customerID = pm.Customer.ID
	}
	// A detached method no longer names its customer; the previous value does.
	if customerID == "" {
		if prev, ok := event.Data.PreviousAttributes["customer"].(string); ok {
			customerID = prev
		}
	}
	if customerID == "" {
		return
	}

	s.cache.InvalidatePaymentMethods(ctx, customerID)
	log.WithField("customer_id", customerID).Debug("payment method cache invalidated")
}

func (s *WebhookService) archive(ctx context.Context, eventID, eventType string, payload []byte, log *logrus.Entry) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Archive(ctx, eventID, eventType, payload); err != nil {
		log.WithError(err).Warn("failed to archive event")
	}
}
