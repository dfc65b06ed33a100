package service

import (
	"crypto/subtle"
	"fmt"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"lingua-daily/internal/config"
	"lingua-daily/internal/dto"
	"lingua-daily/internal/model"
	"lingua-daily/internal/repository"
)

const adminTokenTTL = 12 * time.Hour

// stalePendingAge is how old a pending order must be before cleanup drops it.
const stalePendingAge = 24 * time.Hour

type AdminService interface {
	Login(username, password string) (string, error)
	VerifyToken(token string) error
	Dashboard() *dto.AdminDashboardResponse
	CancelSubscription(email string) error
	ExtendSubscription(email string, days int) (time.Time, error)
	CleanupPending() (int, error)
}

type adminServiceImpl struct {
	cfg    *config.Admin
	orders repository.OrderRepository
	subs   repository.SubscriberRepository
	now    func() time.Time
}

func NewAdminService(cfg *config.Admin, orders repository.OrderRepository, subs repository.SubscriberRepository) AdminService {
	return &adminServiceImpl{cfg: cfg, orders: orders, subs: subs, now: time.Now}
}

func (s *adminServiceImpl) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
	if !userOK || !passOK {
		return "", fmt.Errorf("invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub": username,
		"exp": s.now().Add(adminTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *adminServiceImpl) VerifyToken(token string) error {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

func (s *adminServiceImpl) Dashboard() *dto.AdminDashboardResponse {
	now := s.now()
	subscribers := s.subs.All()
	orders := s.orders.All()

	var active, expired int
	for _, sub := range subscribers {
		if sub.IsSubscribed && (sub.ExpiresAt == nil || sub.ExpiresAt.After(now)) {
			active++
		}
		if sub.ExpiresAt != nil && !sub.ExpiresAt.After(now) {
			expired++
		}
	}

	revenue := decimal.Zero
	for _, order := range orders {
		if order.Status == model.StatusPaid {
			revenue = revenue.Add(order.Amount)
		}
	}

	sort.Slice(subscribers, func(i, j int) bool {
		return subscribers[i].CreatedAt.After(subscribers[j].CreatedAt)
	})
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return &dto.AdminDashboardResponse{
		Stats: dto.AdminStats{
			Total:   len(subscribers),
			Active:  active,
			Expired: expired,
			Revenue: revenue.StringFixed(2),
		},
		Subscribers: subscribers,
		Orders:      orders,
	}
}

func (s *adminServiceImpl) CancelSubscription(email string) error {
	sub, err := s.subs.FindByEmail(email)
	if err != nil {
		return err
	}
	now := s.now()
	sub.IsSubscribed = false
	sub.ExpiresAt = &now
	sub.UpdatedAt = now
	if err := s.subs.Upsert(sub); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

func (s *adminServiceImpl) ExtendSubscription(email string, days int) (time.Time, error) {
	sub, err := s.subs.FindByEmail(email)
	if err != nil {
		return time.Time{}, err
	}

	now := s.now()
	base := now
	if sub.ExpiresAt != nil && sub.ExpiresAt.After(now) {
		base = *sub.ExpiresAt
	}
	expires := base.Add(time.Duration(days) * 24 * time.Hour)
	sub.ExpiresAt = &expires
	sub.IsSubscribed = true
	sub.UpdatedAt = now

	if err := s.subs.Upsert(sub); err != nil {
		return time.Time{}, fmt.Errorf("upsert subscriber: %w", err)
	}
	return expires, nil
}

func (s *adminServiceImpl) CleanupPending() (int, error) {
	deleted, err := s.orders.PruneStalePending(s.now().Add(-stalePendingAge))
	if err != nil {
		return 0, fmt.Errorf("prune stale pending orders: %w", err)
	}
	return deleted, nil
}
