package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
	"rentpay-backend/internal/services"
)

type stubReceipts struct {
	rendered []string
}

func (s *stubReceipts) Render(payment *models.Payment, _ *models.Identity) ([]byte, error) {
	s.rendered = append(s.rendered, payment.ID)
	return []byte("%PDF-1.3"), nil
}

func (w *world) accountService(receipts services.ReceiptRenderer) *services.AccountService {
	return services.NewAccountService(w.profiles, w.payments, w.processor, w.cache, receipts)
}

func (w *world) withCustomer(t *testing.T, identity *models.Identity) string {
	t.Helper()
	id := "cus_" + identity.ID[:8]
	ok, err := w.profiles.SetStripeCustomerID(ctx, identity.ID, id)
	require.NoError(t, err)
	require.True(t, ok)
	return id
}

func TestAccountService_RequiresCustomer(t *testing.T) {
	w := newWorld()
	svc := w.accountService(&stubReceipts{})

	_, err := svc.PaymentMethods(ctx, w.tenant)
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "No Stripe customer found", apperr.As(err).Message)

	_, err = svc.SetupIntent(ctx, w.tenant)
	assert.Equal(t, 400, apperr.Status(err))

	_, err = svc.PaymentHistory(ctx, w.tenant)
	assert.Equal(t, 400, apperr.Status(err))

	err = svc.DetachPaymentMethod(ctx, w.tenant, "pm_1")
	assert.Equal(t, 400, apperr.Status(err))
}

func TestAccountService_PaymentMethodsAreCached(t *testing.T) {
	w := newWorld()
	customerID := w.withCustomer(t, w.tenant)
	w.processor.ListCardPaymentMethodsFunc = func(_ context.Context, id string) ([]models.PaymentMethod, error) {
		assert.Equal(t, customerID, id)
		return []models.PaymentMethod{{ID: "pm_1", Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030}}, nil
	}
	svc := w.accountService(&stubReceipts{})

	first, err := svc.PaymentMethods(ctx, w.tenant)
	require.NoError(t, err)
	second, err := svc.PaymentMethods(ctx, w.tenant)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.PaymentMethods, 1)
	assert.Equal(t, "4242", first.PaymentMethods[0].Last4)
	assert.Equal(t, 1, w.processor.Calls("ListCardPaymentMethods"))
}

func TestAccountService_PaymentMethodsEmptyList(t *testing.T) {
	w := newWorld()
	w.withCustomer(t, w.tenant)

	resp, err := w.accountService(&stubReceipts{}).PaymentMethods(ctx, w.tenant)

	require.NoError(t, err)
	assert.NotNil(t, resp.PaymentMethods)
	assert.Empty(t, resp.PaymentMethods)
}

func TestAccountService_DetachPaymentMethod(t *testing.T) {
	w := newWorld()
	customerID := w.withCustomer(t, w.tenant)
	w.processor.PaymentMethodCustomerFunc = func(_ context.Context, id string) (string, error) {
		if id == "pm_mine" {
			return customerID, nil
		}
		return "cus_someone_else", nil
	}
	svc := w.accountService(&stubReceipts{})

	err := svc.DetachPaymentMethod(ctx, w.tenant, "pm_theirs")
	assert.Equal(t, 404, apperr.Status(err))
	assert.Zero(t, w.processor.Calls("DetachPaymentMethod"))

	require.NoError(t, svc.DetachPaymentMethod(ctx, w.tenant, "pm_mine"))
	assert.Equal(t, 1, w.processor.Calls("DetachPaymentMethod"))
	assert.Contains(t, w.cache.Invalidated, customerID)
}

func TestAccountService_SetupIntent(t *testing.T) {
	w := newWorld()
	customerID := w.withCustomer(t, w.tenant)
	w.processor.CreateSetupIntentFunc = func(_ context.Context, id string) (string, error) {
		assert.Equal(t, customerID, id)
		return "seti_123_secret_xyz", nil
	}

	resp, err := w.accountService(&stubReceipts{}).SetupIntent(ctx, w.tenant)

	require.NoError(t, err)
	assert.Equal(t, "seti_123_secret_xyz", resp.ClientSecret)
}

func TestAccountService_PaymentHistoryIsScopedToCaller(t *testing.T) {
	w := newWorld()
	w.withCustomer(t, w.tenant)
	for i := 0; i < 3; i++ {
		_, err := w.payments.Record(ctx, &models.Payment{TenantID: w.tenant.ID, PropertyID: w.property.ID, Amount: 1500, Status: models.PaymentCompleted})
		require.NoError(t, err)
	}
	_, err := w.payments.Record(ctx, &models.Payment{TenantID: uuid.NewString(), PropertyID: w.property.ID, Amount: 99, Status: models.PaymentCompleted})
	require.NoError(t, err)

	history, err := w.accountService(&stubReceipts{}).PaymentHistory(ctx, w.tenant)

	require.NoError(t, err)
	assert.Len(t, history, 3)
	for _, p := range history {
		assert.Equal(t, w.tenant.ID, p.TenantID)
	}
}

func TestAccountService_Receipt(t *testing.T) {
	w := newWorld()
	w.withCustomer(t, w.tenant)
	completed := &models.Payment{TenantID: w.tenant.ID, PropertyID: w.property.ID, Amount: 1500, Status: models.PaymentCompleted}
	failed := &models.Payment{TenantID: w.tenant.ID, PropertyID: w.property.ID, Amount: 1500, Status: models.PaymentFailed}
	_, err := w.payments.Record(ctx, completed)
	require.NoError(t, err)
	_, err = w.payments.Record(ctx, failed)
	require.NoError(t, err)
	receipts := &stubReceipts{}
	svc := w.accountService(receipts)

	pdf, err := svc.Receipt(ctx, w.tenant, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(pdf))
	assert.Equal(t, []string{completed.ID}, receipts.rendered)

	_, err = svc.Receipt(ctx, w.tenant, failed.ID)
	assert.Equal(t, 404, apperr.Status(err))

	_, err = svc.Receipt(ctx, w.tenant, "garbage")
	assert.Equal(t, 404, apperr.Status(err))

	w.withCustomer(t, w.other)
	_, err = svc.Receipt(ctx, w.other, completed.ID)
	assert.Equal(t, 404, apperr.Status(err))
}
