package repository

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"lingua-daily/internal/model"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateReference = errors.New("reference already in use")
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByReference(reference string) (*model.Order, error)
	FindByOrderID(orderID string) (*model.Order, error)
	All() []model.Order
	// MarkPaid transitions a pending order to paid and reports whether this
	// call performed the transition. Marking an already-paid order is a no-op.
	MarkPaid(reference string, paidAt time.Time, txHash string) (*model.Order, bool, error)
	// PruneStalePending drops pending orders created before cutoff. Paid
	// orders are always kept.
	PruneStalePending(cutoff time.Time) (int, error)
}

type ordersDocument struct {
	Orders []model.Order `json:"orders"`
}

type orderRepoImpl struct {
	mu   sync.Mutex
	path string
	doc  ordersDocument
}

func NewOrderRepository(path string) (OrderRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	r := &orderRepoImpl{path: path}
	if !loadJSONFile(path, &r.doc) || r.doc.Orders == nil {
		r.doc = ordersDocument{Orders: []model.Order{}}
	}
	return r, nil
}

func (r *orderRepoImpl) Create(order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.doc.Orders {
		o := &r.doc.Orders[i]
		if o.Reference == order.Reference && o.Status == model.StatusPending {
			return ErrDuplicateReference
		}
	}

	r.doc.Orders = append(r.doc.Orders, *order)
	if err := writeFileAtomic(r.path, &r.doc); err != nil {
		r.doc.Orders = r.doc.Orders[:len(r.doc.Orders)-1]
		return fmt.Errorf("persist orders: %w", err)
	}
	return nil
}

func (r *orderRepoImpl) FindByReference(reference string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.doc.Orders {
		if r.doc.Orders[i].Reference == reference {
			order := r.doc.Orders[i]
			return &order, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *orderRepoImpl) FindByOrderID(orderID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.doc.Orders {
		if r.doc.Orders[i].OrderID == orderID {
			order := r.doc.Orders[i]
			return &order, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *orderRepoImpl) All() []model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Order, len(r.doc.Orders))
	copy(out, r.doc.Orders)
	return out
}

func (r *orderRepoImpl) MarkPaid(reference string, paidAt time.Time, txHash string) (*model.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.doc.Orders {
		if r.doc.Orders[i].Reference == reference {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false, ErrOrderNotFound
	}

	if r.doc.Orders[idx].Status == model.StatusPaid {
		order := r.doc.Orders[idx]
		return &order, false, nil
	}

	prev := r.doc.Orders[idx]
	r.doc.Orders[idx].Status = model.StatusPaid
	r.doc.Orders[idx].PaidAt = &paidAt
	if txHash != "" {
		r.doc.Orders[idx].TransactionHash = txHash
	}
	if err := writeFileAtomic(r.path, &r.doc); err != nil {
		r.doc.Orders[idx] = prev
		return nil, false, fmt.Errorf("persist orders: %w", err)
	}

	order := r.doc.Orders[idx]
	return &order, true, nil
}

func (r *orderRepoImpl) PruneStalePending(cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.doc.Orders[:0:0]
	for _, o := range r.doc.Orders {
		if o.Status == model.StatusPaid || o.CreatedAt.After(cutoff) {
			kept = append(kept, o)
		}
	}
	deleted := len(r.doc.Orders) - len(kept)
	if deleted == 0 {
		return 0, nil
	}

	prev := r.doc.Orders
	r.doc.Orders = kept
	if err := writeFileAtomic(r.path, &r.doc); err != nil {
		r.doc.Orders = prev
		return 0, fmt.Errorf("persist orders: %w", err)
	}
	return deleted, nil
}
