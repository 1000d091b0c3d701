// Package servicestest provides in-memory stand-ins for the service layer's
// stores and processor.
package servicestest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentpay-backend/internal/models"
)

// Profiles is an in-memory ProfileStore.
type Profiles struct {
	mu   sync.Mutex
	rows map[string]*models.Profile
}

func NewProfiles(profiles ...*models.Profile) *Profiles {
	s := &Profiles{rows: map[string]*models.Profile{}}
	for _, p := range profiles {
		s.rows[p.ID] = p
	}
	return s
}

func (s *Profiles) Get(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Profiles) Create(ctx context.Context, id, userType string) (*models.Profile, error) {
	s.mu.Lock()
	if _, ok := s.rows[id]; !ok {
		now := time.Now().UTC()
		s.rows[id] = &models.Profile{ID: id, UserType: userType, CreatedAt: now, UpdatedAt: now}
	}
	s.mu.Unlock()
	return s.Get(ctx, id)
}

func (s *Profiles) Update(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	s.mu.Lock()
	p, ok := s.rows[id]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrNotFound
	}
	if req.FullName != nil {
		name := *req.FullName
		p.FullName = &name
	}
	if req.UserType != nil {
		p.UserType = *req.UserType
	}
	p.UpdatedAt = time.Now().UTC()
	s.mu.Unlock()
	return s.Get(ctx, id)
}

func (s *Profiles) SetStripeCustomerID(_ context.Context, id, customerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok || (p.StripeCustomerID != nil && *p.StripeCustomerID != "") {
		return false, nil
	}
	p.StripeCustomerID = &customerID
	return true, nil
}

// Properties is an in-memory PropertyStore.
type Properties struct {
	mu   sync.Mutex
	rows map[string]*models.Property
}

func NewProperties(props ...*models.Property) *Properties {
	s := &Properties{rows: map[string]*models.Property{}}
	for _, p := range props {
		s.rows[p.ID] = p
	}
	return s
}

func (s *Properties) ListByLandlord(_ context.Context, landlordID string) ([]*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Property{}
	for _, p := range s.rows {
		if p.LandlordID == landlordID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Properties) Get(_ context.Context, id string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Properties) Create(_ context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.rows[p.ID] = &cp
	return nil
}

func (s *Properties) Update(ctx context.Context, id, landlordID string, req *models.UpdatePropertyRequest) (*models.Property, error) {
	s.mu.Lock()
	p, ok := s.rows[id]
	if !ok || p.LandlordID != landlordID {
		s.mu.Unlock()
		return nil, models.ErrNotFound
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.MonthlyRent != nil {
		p.MonthlyRent = *req.MonthlyRent
	}
	p.UpdatedAt = time.Now().UTC()
	s.mu.Unlock()
	return s.Get(ctx, id)
}

func (s *Properties) Delete(_ context.Context, id, landlordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok || p.LandlordID != landlordID {
		return false, nil
	}
	delete(s.rows, id)
	return true, nil
}

// Tenancies is an in-memory TenancyStore.
type Tenancies struct {
	mu         sync.Mutex
	rows       map[string]*models.Tenancy
	properties *Properties
}

// NewTenancies joins listed tenancies against properties when it is non-nil.
func NewTenancies(properties *Properties, tenancies ...*models.Tenancy) *Tenancies {
	s := &Tenancies{rows: map[string]*models.Tenancy{}, properties: properties}
	for _, t := range tenancies {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		s.rows[t.ID] = t
	}
	return s
}

func (s *Tenancies) ListActiveForTenant(ctx context.Context, tenantID string) ([]*models.Tenancy, error) {
	s.mu.Lock()
	var out []*models.Tenancy
	for _, t := range s.rows {
		if t.TenantID == tenantID && t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	s.mu.Unlock()

	if s.properties != nil {
		for _, t := range out {
			if p, err := s.properties.Get(ctx, t.PropertyID); err == nil {
				t.Property = p
			}
		}
	}
	if out == nil {
		out = []*models.Tenancy{}
	}
	return out, nil
}

func (s *Tenancies) HasActive(_ context.Context, tenantID, propertyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.rows {
		if t.TenantID == tenantID && t.PropertyID == propertyID && t.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *Tenancies) Create(_ context.Context, t *models.Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.TenantID == t.TenantID && existing.PropertyID == t.PropertyID && existing.IsActive {
			return models.ErrDuplicate
		}
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	cp := *t
	s.rows[t.ID] = &cp
	return nil
}

func (s *Tenancies) Get(_ context.Context, id string) (*models.Tenancy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Tenancies) Deactivate(ctx context.Context, id string) (*models.Tenancy, error) {
	s.mu.Lock()
	t, ok := s.rows[id]
	if !ok {
		s.mu.Unlock()
		return nil, models.ErrNotFound
	}
	t.IsActive = false
	s.mu.Unlock()
	return s.Get(ctx, id)
}

// Payments is an in-memory PaymentStore keyed on the processor event id.
type Payments struct {
	mu   sync.Mutex
	rows []*models.Payment
	// RecordErr, when set, fails every Record call.
	RecordErr error
}

func NewPayments(payments ...*models.Payment) *Payments {
	return &Payments{rows: payments}
}

func (s *Payments) Record(_ context.Context, p *models.Payment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RecordErr != nil {
		return false, s.RecordErr
	}
	if p.StripeEventID != nil {
		for _, existing := range s.rows {
			if existing.StripeEventID != nil && *existing.StripeEventID == *p.StripeEventID {
				return false, nil
			}
		}
	}
	p.ID = uuid.NewString()
	p.PaymentDate = time.Now().UTC()
	p.CreatedAt = p.PaymentDate
	cp := *p
	s.rows = append(s.rows, &cp)
	return true, nil
}

func (s *Payments) ListForTenant(_ context.Context, tenantID string, limit int) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Payment{}
	for i := len(s.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if s.rows[i].TenantID == tenantID {
			cp := *s.rows[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Payments) GetForTenant(_ context.Context, id, tenantID string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.rows {
		if p.ID == id && p.TenantID == tenantID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

// All returns a copy of every recorded row in insertion order.
func (s *Payments) All() []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Payment, 0, len(s.rows))
	for _, p := range s.rows {
		out = append(out, *p)
	}
	return out
}

// Directory is an in-memory UserDirectory.
type Directory struct {
	Users []models.DirectoryUser
}

func (d *Directory) FindByEmail(_ context.Context, email string) (*models.DirectoryUser, error) {
	for _, u := range d.Users {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

// Processor is a PaymentProcessor whose behaviour is set per test through its Func fields.
// Unset funcs return canned values. Call counts are safe for concurrent use.
type Processor struct {
	CreateCustomerFunc         func(ctx context.Context, params models.CustomerParams) (string, error)
	CreatePaymentIntentFunc    func(ctx context.Context, params models.PaymentIntentParams) (*models.PaymentIntent, error)
	ListCardPaymentMethodsFunc func(ctx context.Context, customerID string) ([]models.PaymentMethod, error)
	PaymentMethodCustomerFunc  func(ctx context.Context, paymentMethodID string) (string, error)
	DetachPaymentMethodFunc    func(ctx context.Context, paymentMethodID string) error
	CreateSetupIntentFunc      func(ctx context.Context, customerID string) (string, error)

	mu    sync.Mutex
	calls map[string]int
	// Intents holds every intent request in call order.
	Intents []models.PaymentIntentParams
}

func (p *Processor) record(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = map[string]int{}
	}
	p.calls[name]++
}

// Calls returns how many times the named method ran.
func (p *Processor) Calls(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

func (p *Processor) CreateCustomer(ctx context.Context, params models.CustomerParams) (string, error) {
	p.record("CreateCustomer")
	if p.CreateCustomerFunc != nil {
		return p.CreateCustomerFunc(ctx, params)
	}
	return "cus_" + params.UserID, nil
}

func (p *Processor) CreatePaymentIntent(ctx context.Context, params models.PaymentIntentParams) (*models.PaymentIntent, error) {
	p.record("CreatePaymentIntent")
	p.mu.Lock()
	p.Intents = append(p.Intents, params)
	n := len(p.Intents)
	p.mu.Unlock()
	if p.CreatePaymentIntentFunc != nil {
		return p.CreatePaymentIntentFunc(ctx, params)
	}
	id := fmt.Sprintf("pi_test_%d", n)
	return &models.PaymentIntent{ID: id, ClientSecret: id + "_secret_abc"}, nil
}

func (p *Processor) ListCardPaymentMethods(ctx context.Context, customerID string) ([]models.PaymentMethod, error) {
	p.record("ListCardPaymentMethods")
	if p.ListCardPaymentMethodsFunc != nil {
		return p.ListCardPaymentMethodsFunc(ctx, customerID)
	}
	return nil, nil
}

func (p *Processor) PaymentMethodCustomer(ctx context.Context, paymentMethodID string) (string, error) {
	p.record("PaymentMethodCustomer")
	if p.PaymentMethodCustomerFunc != nil {
		return p.PaymentMethodCustomerFunc(ctx, paymentMethodID)
	}
	return "", nil
}

func (p *Processor) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	p.record("DetachPaymentMethod")
	if p.DetachPaymentMethodFunc != nil {
		return p.DetachPaymentMethodFunc(ctx, paymentMethodID)
	}
	return nil
}

func (p *Processor) CreateSetupIntent(ctx context.Context, customerID string) (string, error) {
	p.record("CreateSetupIntent")
	if p.CreateSetupIntentFunc != nil {
		return p.CreateSetupIntentFunc(ctx, customerID)
	}
	return "seti_test_secret_abc", nil
}

// Cache is an in-memory PaymentMethodCache.
type Cache struct {
	mu          sync.Mutex
	entries     map[string][]models.PaymentMethod
	Invalidated []string
}

func NewCache() *Cache {
	return &Cache{entries: map[string][]models.PaymentMethod{}}
}

func (c *Cache) GetPaymentMethods(_ context.Context, customerID string) ([]models.PaymentMethod, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[customerID]
	return m, ok
}

func (c *Cache) SetPaymentMethods(_ context.Context, customerID string, methods []models.PaymentMethod) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[customerID] = methods
}

func (c *Cache) InvalidatePaymentMethods(_ context.Context, customerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, customerID)
	c.Invalidated = append(c.Invalidated, customerID)
}

// Notifier captures fanned-out payment events.
type Notifier struct {
	mu     sync.Mutex
	Events []models.PaymentEvent
}

func (n *Notifier) PaymentRecorded(_ context.Context, event models.PaymentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, event)
}

// Archiver captures archived raw events.
type Archiver struct {
	mu       sync.Mutex
	EventIDs []string
}

func (a *Archiver) Archive(_ context.Context, eventID, _ string, _ []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.EventIDs = append(a.EventIDs, eventID)
	return nil
}
