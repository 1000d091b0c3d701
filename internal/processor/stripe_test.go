package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentpay-backend/internal/apperr"
	"rentpay-backend/internal/models"
)

func newTestStripe(t *testing.T, handler http.HandlerFunc) *Stripe {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStripe("sk_test_123", srv.URL)
}

func TestStripe_CreateCustomer(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/customers", r.URL.Path)
		assert.Equal(t, "customer-u1", r.Header.Get("Idempotency-Key"))
		assert.Equal(t, "tenant@example.com", r.PostForm.Get("email"))
		assert.Equal(t, "u1", r.PostForm.Get("metadata[supabase_user_id]"))
		w.Write([]byte(`{"id":"cus_123","object":"customer"}`))
	})

	id, err := s.CreateCustomer(context.Background(), models.CustomerParams{
		UserID:         "u1",
		Email:          "tenant@example.com",
		IdempotencyKey: "customer-u1",
	})

	require.NoError(t, err)
	assert.Equal(t, "cus_123", id)
}

func TestStripe_CreatePaymentIntent(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "150000", r.PostForm.Get("amount"))
		assert.Equal(t, "cad", r.PostForm.Get("currency"))
		assert.Equal(t, "cus_123", r.PostForm.Get("customer"))
		assert.Equal(t, "off_session", r.PostForm.Get("setup_future_usage"))
		assert.Equal(t, "t1", r.PostForm.Get("metadata[tenant_id]"))
		assert.Equal(t, "p1", r.PostForm.Get("metadata[property_id]"))
		w.Write([]byte(`{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret_x"}`))
	})

	pi, err := s.CreatePaymentIntent(context.Background(), models.PaymentIntentParams{
		Amount:           150000,
		Currency:         "cad",
		CustomerID:       "cus_123",
		TenantID:         "t1",
		PropertyID:       "p1",
		SetupFutureUsage: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_1", pi.ID)
	assert.Equal(t, "pi_1_secret_x", pi.ClientSecret)
}

func TestStripe_CardErrorBecomesInvalidRequest(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := s.CreatePaymentIntent(context.Background(), models.PaymentIntentParams{Amount: 100, Currency: "cad", CustomerID: "cus_1"})

	require.Error(t, err)
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Your card was declined.", apperr.As(err).Message)
}

func TestStripe_APIErrorStaysInternal(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	})

	_, err := s.CreateSetupIntent(context.Background(), "cus_1")

	require.Error(t, err)
	assert.Equal(t, 500, apperr.Status(err))
}

func TestStripe_ListCardPaymentMethods(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_methods", r.URL.Path)
		assert.Equal(t, "cus_123", r.URL.Query().Get("customer"))
		assert.Equal(t, "card", r.URL.Query().Get("type"))
		w.Write([]byte(`{"object":"list","url":"/v1/payment_methods","has_more":false,"data":[
			{"id":"pm_1","object":"payment_method","type":"card","card":{"brand":"visa","last4":"4242","exp_month":12,"exp_year":2030}}
		]}`))
	})

	methods, err := s.ListCardPaymentMethods(context.Background(), "cus_123")

	require.NoError(t, err)
	assert.Equal(t, []models.PaymentMethod{{ID: "pm_1", Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030}}, methods)
}

func TestStripe_PaymentMethodCustomer(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/payment_methods/pm_1":
			w.Write([]byte(`{"id":"pm_1","object":"payment_method","customer":"cus_123"}`))
		case "/v1/payment_methods/pm_loose":
			w.Write([]byte(`{"id":"pm_loose","object":"payment_method","customer":null}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such PaymentMethod"}}`))
		}
	})

	owner, err := s.PaymentMethodCustomer(context.Background(), "pm_1")
	require.NoError(t, err)
	assert.Equal(t, "cus_123", owner)

	owner, err = s.PaymentMethodCustomer(context.Background(), "pm_loose")
	require.NoError(t, err)
	assert.Empty(t, owner)

	owner, err = s.PaymentMethodCustomer(context.Background(), "pm_missing")
	require.NoError(t, err)
	assert.Empty(t, owner)
}

func TestStripe_SetupIntentAndDetach(t *testing.T) {
	s := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v1/setup_intents":
			assert.Equal(t, "off_session", r.PostForm.Get("usage"))
			assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
			w.Write([]byte(`{"id":"seti_1","object":"setup_intent","client_secret":"seti_1_secret"}`))
		case "/v1/payment_methods/pm_1/detach":
			w.Write([]byte(`{"id":"pm_1","object":"payment_method","customer":null}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	secret, err := s.CreateSetupIntent(context.Background(), "cus_123")
	require.NoError(t, err)
	assert.Equal(t, "seti_1_secret", secret)

	assert.NoError(t, s.DetachPaymentMethod(context.Background(), "pm_1"))
}
