package services_test

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
	"rentpay-backend/internal/services"
	"rentpay-backend/internal/services/servicestest"
)

const webhookSecret = "whsec_test_secret"

type webhookRig struct {
	*world
	notifier *servicestest.Notifier
	archiver *servicestest.Archiver
	svc      *services.WebhookService
}

func newWebhookRig() *webhookRig {
	w := newWorld()
	r := &webhookRig{world: w, notifier: &servicestest.Notifier{}, archiver: &servicestest.Archiver{}}
	r.svc = services.NewWebhookService(webhookSecret, w.payments, w.props, w.cache, r.archiver, r.notifier)
	return r
}

func eventPayload(t *testing.T, id, eventType string, object map[string]interface{}, previous map[string]interface{}) []byte {
	t.Helper()
	data := map[string]interface{}{"object": object}
	if previous != nil {
		data["previous_attributes"] = previous
	}
	payload, err := json.Marshal(map[string]interface{}{
		"id":          id,
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"created":     time.Now().Unix(),
		"data":        data,
	})
	require.NoError(t, err)
	return payload
}

func sign(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func (r *webhookRig) intent(id string, amount int64) map[string]interface{} {
	return map[string]interface{}{
		"id":     id,
		"object": "payment_intent",
		"amount": amount,
		"metadata": map[string]string{
			"tenant_id":   r.tenant.ID,
			"property_id": r.property.ID,
		},
		"latest_charge": map[string]interface{}{
			"id":     "ch_1",
			"object": "charge",
			"payment_method_details": map[string]interface{}{
				"type": "card",
				"card": map[string]interface{}{"brand": "visa", "last4": "4242"},
			},
		},
	}
}

func TestWebhook_SucceededRecordsCompletedPayment(t *testing.T) {
	r := newWebhookRig()
	payload := eventPayload(t, "evt_1", services.EventPaymentSucceeded, r.intent("pi_1", 150000), nil)

	require.NoError(t, r.svc.Handle(ctx, payload, sign(payload, webhookSecret)))

	rows := r.payments.All()
	require.Len(t, rows, 1)
	p := rows[0]
	assert.Equal(t, models.PaymentCompleted, p.Status)
	assert.Equal(t, 1500.00, p.Amount)
	assert.Equal(t, "pi_1", p.StripePaymentIntentID)
	assert.Equal(t, r.tenant.ID, p.TenantID)
	assert.Equal(t, r.property.ID, p.PropertyID)
	require.NotNil(t, p.StripeEventID)
	assert.Equal(t, "evt_1", *p.StripeEventID)
	require.NotNil(t, p.PaymentMethodLast4)
	assert.Equal(t, "4242", *p.PaymentMethodLast4)

	require.Len(t, r.notifier.Events, 1)
	ev := r.notifier.Events[0]
	assert.Equal(t, models.PaymentEventRecorded, ev.Type)
	assert.Equal(t, r.landlord.ID, ev.LandlordID)
	assert.Equal(t, p.ID, ev.PaymentID)
	assert.Equal(t, []string{"evt_1"}, r.archiver.EventIDs)
}

func TestWebhook_DuplicateDeliveryWritesOnce(t *testing.T) {
	r := newWebhookRig()
	payload := eventPayload(t, "evt_dup", services.EventPaymentSucceeded, r.intent("pi_dup", 2500), nil)

	require.NoError(t, r.svc.Handle(ctx, payload, sign(payload, webhookSecret)))
	require.NoError(t, r.svc.Handle(ctx, payload, sign(payload, webhookSecret)))

	assert.Len(t, r.payments.All(), 1)
	assert.Len(t, r.notifier.Events, 1)
}

func TestWebhook_LegacyChargesList(t *testing.T) {
	r := newWebhookRig()
	obj := r.intent("pi_legacy", 9900)
	delete(obj, "latest_charge")
	obj["charges"] = map[string]interface{}{
		"object": "list",
		"data": []interface{}{
			map[string]interface{}{"payment_method_details": map[string]interface{}{"card": map[string]interface{}{"last4": "1881"}}},
		},
	}
	payload := eventPayload(t, "evt_legacy", services.EventPaymentSucceeded, obj, nil)

	require.NoError(t, r.svc.Handle(ctx, payload, sign(payload, webhookSecret)))

	rows := r.payments.All()
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].PaymentMethodLast4)
	assert.Equal(t, "1881", *rows[0].PaymentMethodLast4)
	assert.Equal(t, 99.0, rows[0].Amount)
}

func TestWebhook_FailedRecordsFailedPayment(t *testing.T) {
	r := newWebhookRig()
	obj := r.intent("pi_failed", 150000)
	delete(obj, "latest_charge")
	payload := eventPayload(t, "evt_failed", services.EventPaymentFailed, obj, nil)

	require.NoError(t, r.svc.Handle(ctx, payload, sign(payload, webhookSecret)))

	rows := r.payments.All()
	require.Len(t, rows, 1)
	assert.Equal(t, models.PaymentFailed, rows[0].Status)
	assert.Nil(t, rows[0].PaymentMethodLast4)
}

func TestWebhook_MissingMetadataIsAcknowledged(t *testing.T) {
	r := newWebhookRig()
	obj := r.intent("pi_bare", 1000)
	obj["metadata"] = map[string]string{}
	payload := eventPayload(t, "evt_bare", services.EventPaymentSucceeded, obj, nil)

	require.NoError(t, r.svc.Handle(ctx, payload, sign(payload, webhookSecret)))

	assert.Empty(t, r.payments.All())
	assert.Empty(t, r.notifier.Events)
}

func TestWebhook_BadSignatureWritesNothing(t *testing.T) {
	r := newWebhookRig()
	payload := eventPayload(t, "evt_forged", services.EventPaymentSucceeded, r.intent("pi_forged", 150000), nil)

	tests := map[string]string{
		"wrong secret": sign(payload, "whsec_other"),
		"empty header": "",
		"garbage":      "t=abc,v1=zzz",
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			err := r.svc.Handle(ctx, payload, header)

			var sigErr *services.SignatureError
			require.ErrorAs(t, err, &sigErr)
		})
	}

	assert.Empty(t, r.payments.All())
	assert.Empty(t, r.archiver.EventIDs)
}

func TestWebhook_TamperedBodyIsRejected(t *testing.T) {
	r := newWebhookRig()
	payload := eventPayload(t, "evt_t", services.EventPaymentSucceeded, r.intent("pi_t", 100), nil)
	header := sign(payload, webhookSecret)
	tampered := eventPayload(t, "evt_t", services.EventPaymentSucceeded, r.intent("pi_t", 100000000), nil)

	err := r.svc.Handle(ctx, tampered, header)

	var sigErr *services.SignatureError
	assert.ErrorAs(t, err, &sigErr)
	assert.Empty(t, r.payments.All())
}

func TestWebhook_StoreFailureAsksForRedelivery(t *testing.T) {
	r := newWebhookRig()
	r.payments.RecordErr = errors.New("connection refused")
	payload := eventPayload(t, "evt_err", services.EventPaymentFailed, r.intent("pi_err", 100), nil)

	err := r.svc.Handle(ctx, payload, sign(payload, webhookSecret))

	require.Error(t, err)
	assert.Equal(t, 500, apperr.Status(err))
	assert.Empty(t, r.archiver.EventIDs)
}

func TestWebhook_PaymentMethodEventsInvalidateCache(t *testing.T) {
	r := newWebhookRig()
	attached := eventPayload(t, "evt_pm1", services.EventPaymentMethodAttached, map[string]interface{}{
		"id": "pm_1", "object": "payment_method", "customer": "cus_attached",
	}, nil)
	detached := eventPayload(t, "evt_pm2", services.EventPaymentMethodDetached, map[string]interface{}{
		"id": "pm_2", "object": "payment_method", "customer": nil,
	}, map[string]interface{}{"customer": "cus_detached"})

	require.NoError(t, r.svc.Handle(ctx, attached, sign(attached, webhookSecret)))
	require.NoError(t, r.svc.Handle(ctx, detached, sign(detached, webhookSecret)))

	assert.Equal(t, []string{"cus_attached", "cus_detached"}, r.cache.Invalidated)
	assert.Empty(t, r.payments.All())
}

func TestWebhook_UnhandledTypeIsAcknowledged(t *testing.T) {
	r := newWebhookRig()
	payload := eventPayload(t, "evt_other", "customer.created", map[string]interface{}{"id": "cus_1", "object": "customer"}, nil)

	require.NoError(t, r.svc.Handle(ctx, payload, sign(payload, webhookSecret)))

	assert.Empty(t, r.payments.All())
	assert.Equal(t, []string{"evt_other"}, r.archiver.EventIDs)
}
