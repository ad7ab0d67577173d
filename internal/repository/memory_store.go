package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
)

// MemoryStore is an in-process store backing every repository interface.
// It enforces the same uniqueness rules as the PostgreSQL schema and is used
// by tests and by the server when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	tenants   map[string]domain.Tenant
	units     map[string]domain.RentalUnit
	contracts map[string]domain.RentalContract
	payments  map[string]domain.RentPayment
	alerts    map[string]domain.PaymentAlert
	documents []domain.DocumentLog
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:   make(map[string]domain.Tenant),
		units:     make(map[string]domain.RentalUnit),
		contracts: make(map[string]domain.RentalContract),
		payments:  make(map[string]domain.RentPayment),
		alerts:    make(map[string]domain.PaymentAlert),
	}
}

// Tenants returns the tenant repository view
func (s *MemoryStore) Tenants() TenantRepository { return &memoryTenants{s} }

// Units returns the unit repository view
func (s *MemoryStore) Units() RentalUnitRepository { return &memoryUnits{s} }

// Contracts returns the contract repository view
func (s *MemoryStore) Contracts() ContractRepository { return &memoryContracts{s} }

// Payments returns the payment repository view
func (s *MemoryStore) Payments() PaymentRepository { return &memoryPayments{s} }

// Alerts returns the alert repository view
func (s *MemoryStore) Alerts() AlertRepository { return &memoryAlerts{s} }

// Documents returns the document repository view
func (s *MemoryStore) Documents() DocumentRepository { return &memoryDocuments{s} }

func checkCtx(ctx context.Context) error {
	return ctx.Err()
}

// --- tenants ---

type memoryTenants struct{ s *MemoryStore }

func (r *memoryTenants) Create(ctx context.Context, t *domain.Tenant) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[t.ID]; ok {
		return ErrDuplicate
	}
	r.s.tenants[t.ID] = *t
	return nil
}

func (r *memoryTenants) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memoryTenants) List(ctx context.Context) ([]*domain.Tenant, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Tenant, 0, len(r.s.tenants))
	for _, t := range r.s.tenants {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (r *memoryTenants) Update(ctx context.Context, t *domain.Tenant) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[t.ID]; !ok {
		return ErrNotFound
	}
	r.s.tenants[t.ID] = *t
	return nil
}

func (r *memoryTenants) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.tenants, id)
	return nil
}

func (r *memoryTenants) HasContracts(ctx context.Context, id string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.contracts {
		if c.TenantID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryTenants) Count(ctx context.Context) (int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.tenants), nil
}

// --- units ---

type memoryUnits struct{ s *MemoryStore }

func (r *memoryUnits) Create(ctx context.Context, u *domain.RentalUnit) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.units[u.ID]; ok {
		return ErrDuplicate
	}
	r.s.units[u.ID] = *u
	return nil
}

func (r *memoryUnits) GetByID(ctx context.Context, id string) (*domain.RentalUnit, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.units[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memoryUnits) List(ctx context.Context) ([]*domain.RentalUnit, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.RentalUnit, 0, len(r.s.units))
	for _, u := range r.s.units {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryUnits) Update(ctx context.Context, u *domain.RentalUnit) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.units[u.ID]; !ok {
		return ErrNotFound
	}
	r.s.units[u.ID] = *u
	return nil
}

func (r *memoryUnits) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.units[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.units, id)
	return nil
}

func (r *memoryUnits) HasContracts(ctx context.Context, id string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.contracts {
		if c.RentalUnitID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUnits) Counts(ctx context.Context) (int, int, error) {
	if err := checkCtx(ctx); err != nil {
		return 0, 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	occupied := 0
	for _, u := range r.s.units {
		if u.Status == domain.RentalUnitStatusOccupied {
			occupied++
		}
	}
	return len(r.s.units), occupied, nil
}

// --- contracts ---

type memoryContracts struct{ s *MemoryStore }

func (r *memoryContracts) Create(ctx context.Context, c *domain.RentalContract, initial *domain.RentPayment) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	unit, ok := r.s.units[c.RentalUnitID]
	if !ok || unit.Status == domain.RentalUnitStatusOccupied {
		return ErrUnitOccupied
	}
	if initial != nil {
		if err := r.s.checkPaymentUnique(initial); err != nil {
			return err
		}
	}

	unit.Status = domain.RentalUnitStatusOccupied
	unit.UpdatedAt = c.CreatedAt
	r.s.units[unit.ID] = unit
	r.s.contracts[c.ID] = *c
	if initial != nil {
		r.s.payments[initial.ID] = *initial
	}
	return nil
}

func (r *memoryContracts) GetByID(ctx context.Context, id string) (*domain.RentalContract, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memoryContracts) GetDetail(ctx context.Context, id string) (*domain.ContractDetail, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return nil, nil
	}
	return r.s.contractDetail(c), nil
}

func (r *memoryContracts) List(ctx context.Context) ([]*domain.ContractDetail, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.ContractDetail, 0, len(r.s.contracts))
	for _, c := range r.s.contracts {
		out = append(out, r.s.contractDetail(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

func (r *memoryContracts) Update(ctx context.Context, c *domain.RentalContract) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contracts[c.ID]; !ok {
		return ErrNotFound
	}
	r.s.contracts[c.ID] = *c
	return nil
}

func (r *memoryContracts) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contracts[id]
	if !ok {
		return ErrNotFound
	}
	for _, p := range r.s.payments {
		if p.RentalContractID == id && p.Status != domain.RentPaymentStatusPending {
			return ErrContractHasProcessed
		}
	}
	for pid, p := range r.s.payments {
		if p.RentalContractID == id {
			delete(r.s.payments, pid)
		}
	}
	delete(r.s.contracts, id)
	if u, ok := r.s.units[c.RentalUnitID]; ok && u.Status == domain.RentalUnitStatusOccupied {
		u.Status = domain.RentalUnitStatusAvailable
		r.s.units[u.ID] = u
	}
	return nil
}

func (r *memoryContracts) ListOverlapping(ctx context.Context, from, to time.Time) ([]*domain.RentalContract, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.RentalContract, 0)
	for _, c := range r.s.contracts {
		if c.StartDate.After(to) || (c.EndDate != nil && c.EndDate.Before(from)) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *MemoryStore) contractDetail(c domain.RentalContract) *domain.ContractDetail {
	d := &domain.ContractDetail{RentalContract: c}
	if t, ok := s.tenants[c.TenantID]; ok {
		d.TenantName = t.FirstName + " " + t.LastName
	}
	if u, ok := s.units[c.RentalUnitID]; ok {
		d.RentalUnitName = u.Name
	}
	return d
}

// --- payments ---

type memoryPayments struct{ s *MemoryStore }

func (s *MemoryStore) checkPaymentUnique(p *domain.RentPayment) error {
	for _, existing := range s.payments {
		if existing.RentalContractID == p.RentalContractID && existing.DueDate.Equal(p.DueDate) {
			return ErrDuplicateDueDate
		}
		if existing.ReceiptNumber == p.ReceiptNumber {
			return ErrDuplicateReceipt
		}
	}
	return nil
}

func (r *memoryPayments) Create(ctx context.Context, p *domain.RentPayment) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkPaymentUnique(p); err != nil {
		return err
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r *memoryPayments) GetByID(ctx context.Context, id string) (*domain.RentPayment, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memoryPayments) GetDetail(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, nil
	}
	return r.s.paymentDetail(p), nil
}

func (r *memoryPayments) ExistsForDueDate(ctx context.Context, contractID string, dueDate time.Time) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	due := domain.DateOnly(dueDate)
	for _, p := range r.s.payments {
		if p.RentalContractID == contractID && p.DueDate.Equal(due) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryPayments) ListUpcoming(ctx context.Context, from, to *time.Time) ([]*domain.PaymentDetail, error) {
	return r.filter(ctx, func(p domain.RentPayment) bool {
		return (from == nil || !p.DueDate.Before(*from)) && (to == nil || !p.DueDate.After(*to))
	}, false)
}

func (r *memoryPayments) ListByContract(ctx context.Context, contractID string) ([]*domain.PaymentDetail, error) {
	return r.filter(ctx, func(p domain.RentPayment) bool {
		return p.RentalContractID == contractID
	}, true)
}

func (r *memoryPayments) ListDueBetween(ctx context.Context, from, to time.Time, currency *domain.Currency) ([]*domain.PaymentDetail, error) {
	return r.filter(ctx, func(p domain.RentPayment) bool {
		if p.DueDate.Before(from) || p.DueDate.After(to) {
			return false
		}
		return currency == nil || p.Currency == *currency
	}, false)
}

func (r *memoryPayments) Update(ctx context.Context, p *domain.RentPayment) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[p.ID]; !ok {
		return ErrNotFound
	}
	r.s.payments[p.ID] = *p
	return nil
}

func (r *memoryPayments) MarkReceiptSent(ctx context.Context, id string, at time.Time) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return ErrNotFound
	}
	p.MarkReceiptSent(at)
	r.s.payments[id] = p
	return nil
}

func (r *memoryPayments) filter(ctx context.Context, keep func(domain.RentPayment) bool, desc bool) ([]*domain.PaymentDetail, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.PaymentDetail, 0)
	for _, p := range r.s.payments {
		if keep(p) {
			out = append(out, r.s.paymentDetail(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return out[i].DueDate.After(out[j].DueDate)
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

func (s *MemoryStore) paymentDetail(p domain.RentPayment) *domain.PaymentDetail {
	d := &domain.PaymentDetail{RentPayment: p}
	c, ok := s.contracts[p.RentalContractID]
	if !ok {
		return d
	}
	if t, ok := s.tenants[c.TenantID]; ok {
		d.TenantID = t.ID
		d.TenantFirstName = t.FirstName
		d.TenantLastName = t.LastName
		d.TenantEmail = t.Email
	}
	if u, ok := s.units[c.RentalUnitID]; ok {
		d.RentalUnitName = u.Name
	}
	return d
}

// --- alerts ---

type memoryAlerts struct{ s *MemoryStore }

func (r *memoryAlerts) ListOverdue(ctx context.Context, threshold time.Time) ([]*domain.OverduePayment, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.OverduePayment, 0)
	for _, p := range r.s.payments {
		if p.Status == domain.RentPaymentStatusPaid || p.DueDate.After(threshold) {
			continue
		}
		d := r.s.paymentDetail(p)
		out = append(out, &domain.OverduePayment{
			PaymentID:       p.ID,
			ReceiptNumber:   p.ReceiptNumber,
			TenantFirstName: d.TenantFirstName,
			TenantLastName:  d.TenantLastName,
			DueDate:         p.DueDate,
			Status:          p.Status,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memoryAlerts) HasOpenAlert(ctx context.Context, paymentID string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.hasOpenAlert(paymentID), nil
}

func (s *MemoryStore) hasOpenAlert(paymentID string) bool {
	for _, a := range s.alerts {
		if a.RentPaymentID == paymentID && !a.IsAcknowledged {
			return true
		}
	}
	return false
}

func (r *memoryAlerts) Raise(ctx context.Context, alerts []*domain.PaymentAlert) ([]*domain.PaymentAlert, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	raised := make([]*domain.PaymentAlert, 0, len(alerts))
	for _, a := range alerts {
		if r.s.hasOpenAlert(a.RentPaymentID) {
			continue
		}
		p, ok := r.s.payments[a.RentPaymentID]
		if !ok || p.Status == domain.RentPaymentStatusPaid {
			continue
		}
		p.Status = domain.RentPaymentStatusLate
		p.UpdatedAt = a.AlertDate
		r.s.payments[p.ID] = p
		r.s.alerts[a.ID] = *a
		raised = append(raised, a)
	}
	return raised, nil
}

func (r *memoryAlerts) ListActive(ctx context.Context) ([]*domain.PaymentAlert, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.PaymentAlert, 0)
	for _, a := range r.s.alerts {
		if !a.IsAcknowledged {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AlertDate.After(out[j].AlertDate) })
	return out, nil
}

func (r *memoryAlerts) Acknowledge(ctx context.Context, id string, at time.Time) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return false, nil
	}
	a.Acknowledge(at)
	r.s.alerts[id] = a
	return true, nil
}

// --- documents ---

type memoryDocuments struct{ s *MemoryStore }

func (r *memoryDocuments) Create(ctx context.Context, d *domain.DocumentLog) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.documents = append(r.s.documents, *d)
	return nil
}

func (r *memoryDocuments) ListByPayment(ctx context.Context, paymentID string) ([]*domain.DocumentLog, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.DocumentLog, 0)
	for i := len(r.s.documents) - 1; i >= 0; i-- {
		d := r.s.documents[i]
		if d.RentPaymentID != nil && *d.RentPaymentID == paymentID {
			out = append(out, &d)
		}
	}
	return out, nil
}
