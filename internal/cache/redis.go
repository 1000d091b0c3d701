package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"rentpay-backend/internal/models"
)

const paymentMethodsKeyPrefix = "stripe:payment_methods:"

// Cache wraps Redis. A nil client degrades every call to a miss or a no-op.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

// New connects to addr. On ping failure it returns a usable, disabled cache and the error.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	c := &Cache{ttl: ttl, log: logrus.WithField("component", "cache")}
	if addr == "" {
		return c, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return c, err
	}

	c.client = client
	return c, nil
}

// Enabled reports whether a Redis connection is in use.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func paymentMethodsKey(customerID string) string {
	return paymentMethodsKeyPrefix + customerID
}

// GetPaymentMethods returns the cached card list for a processor customer.
func (c *Cache) GetPaymentMethods(ctx context.Context, customerID string) ([]models.PaymentMethod, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, paymentMethodsKey(customerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var methods []models.PaymentMethod
	if err := json.Unmarshal(data, &methods); err != nil {
		return nil, false
	}
	return methods, true
}

func (c *Cache) SetPaymentMethods(ctx context.Context, customerID string, methods []models.PaymentMethod) {
	if !c.Enabled() {
		return
	}
	data, err := json.Marshal(methods)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, paymentMethodsKey(customerID), data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Warn("failed to cache payment methods")
	}
}

// InvalidatePaymentMethods drops the cached card list after an attach or detach.
func (c *Cache) InvalidatePaymentMethods(ctx context.Context, customerID string) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Del(ctx, paymentMethodsKey(customerID)).Err(); err != nil {
		c.log.WithError(err).Warn("failed to invalidate payment methods")
	}
}

// Ping reports the connection health. A disabled cache is reported as healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
