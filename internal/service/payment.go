package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"lingua-daily/internal/chain"
	"lingua-daily/internal/config"
	"lingua-daily/internal/dto"
	"lingua-daily/internal/model"
	"lingua-daily/internal/repository"
)

const (
	// verifyTimeout bounds any single verification attempt; a slow RPC
	// surfaces as verification-unavailable instead of hanging the request.
	verifyTimeout = 20 * time.Second
	// statusCacheTTL shields the chain RPC from high-frequency polling of a
	// still-unpaid reference.
	statusCacheTTL = 5 * time.Second

	defaultLevel = "B1"
)

type PaymentService interface {
	StartOrder(ctx context.Context, req *dto.StartOrderRequest) (*dto.StartOrderResponse, error)
	BuildUSDCTransfer(ctx context.Context, req *dto.BuildTxRequest) (*dto.BuildTxResponse, error)
	// CheckSolanaStatus polls chain activity on the reference account and
	// reconciles the matching order when settlement is found.
	CheckSolanaStatus(ctx context.Context, reference string) (*dto.PaymentStatusResponse, error)
	CheckEVMStatus(ctx context.Context, reference, chainName string) (*dto.EVMPaymentStatusResponse, error)
	// VerifyManual checks a user-submitted transaction id against an order
	// and reconciles on success.
	VerifyManual(ctx context.Context, chainName, txID, reference string) (*dto.VerifyResponse, error)
}

type paymentServiceImpl struct {
	log       *zap.Logger
	languages config.Languages
	orders    repository.OrderRepository
	subs      repository.SubscriberRepository
	verifiers map[string]chain.Verifier
	txBuilder *chain.TxBuilder
	sentences SentenceService
	mailer    MailerService

	statusCache *gocache.Cache
	// mu serializes reconciliation so a single order can never be credited
	// from two polls at once.
	mu  sync.Mutex
	now func() time.Time
}

func NewPaymentService(
	log *zap.Logger,
	languages config.Languages,
	orders repository.OrderRepository,
	subs repository.SubscriberRepository,
	verifiers map[string]chain.Verifier,
	txBuilder *chain.TxBuilder,
	sentences SentenceService,
	mailer MailerService,
) PaymentService {
	return &paymentServiceImpl{
		log:         log,
		languages:   languages,
		orders:      orders,
		subs:        subs,
		verifiers:   verifiers,
		txBuilder:   txBuilder,
		sentences:   sentences,
		mailer:      mailer,
		statusCache: gocache.New(statusCacheTTL, time.Minute),
		now:         time.Now,
	}
}

func (s *paymentServiceImpl) StartOrder(ctx context.Context, req *dto.StartOrderRequest) (*dto.StartOrderResponse, error) {
	planName := req.Plan
	if planName == "" {
		planName = "month"
	}
	plan, ok := model.PlanByName(planName)
	if !ok {
		return nil, fmt.Errorf("invalid plan %q", planName)
	}

	chainName := req.Chain
	if chainName == "" {
		chainName = model.ChainSolana
	}

	reference, err := chain.NewReference(chainName)
	if err != nil {
		return nil, fmt.Errorf("mint reference: %w", err)
	}

	order := &model.Order{
		OrderID:   "ord_" + strings.Split(uuid.NewString(), "-")[0],
		Reference: reference,
		Status:    model.StatusPending,
		CreatedAt: s.now(),
		Email:     model.NormalizeEmail(req.Email),
		Plan:      planName,
		Amount:    plan.Price,
		Language:  orDefault(req.Language, s.languages.Target),
		Level:     orDefault(req.Level, defaultLevel),
		Native:    orDefault(req.Native, s.languages.Source),
		Chain:     chainName,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.log.Info("order created",
		zap.String("orderId", order.OrderID),
		zap.String("chain", chainName),
		zap.String("plan", planName))

	return &dto.StartOrderResponse{
		OrderID:   order.OrderID,
		Reference: order.Reference,
		Amount:    order.Amount,
	}, nil
}

func (s *paymentServiceImpl) BuildUSDCTransfer(ctx context.Context, req *dto.BuildTxRequest) (*dto.BuildTxResponse, error) {
	tx, err := s.txBuilder.BuildUSDCTransfer(ctx, req.Payer, req.Recipient, req.Amount, req.Reference)
	if err != nil {
		return nil, fmt.Errorf("build usdc transfer: %w", err)
	}
	return &dto.BuildTxResponse{Transaction: tx}, nil
}

func (s *paymentServiceImpl) CheckSolanaStatus(ctx context.Context, reference string) (*dto.PaymentStatusResponse, error) {
	if cached, ok := s.statusCache.Get("solana:" + reference); ok {
		return cached.(*dto.PaymentStatusResponse), nil
	}

	verifier, ok := s.verifiers[model.ChainSolana]
	if !ok {
		return nil, chain.ErrNotConfigured
	}

	order, findErr := s.orders.FindByReference(reference)
	probe := order
	if probe == nil {
		probe = &model.Order{Reference: reference}
	}

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()
	receipt, err := verifier.Verify(vctx, probe, chain.Proof{})
	if err != nil {
		return nil, err
	}

	resp := &dto.PaymentStatusResponse{Paid: receipt.Paid, Signature: receipt.Signature}
	if !receipt.Paid {
		s.statusCache.Set("solana:"+reference, resp, gocache.DefaultExpiration)
		return resp, nil
	}

	if findErr == nil {
		updated, err := s.reconcile(ctx, order, receipt)
		if err != nil {
			return nil, err
		}
		resp.Updated = updated
	}
	return resp, nil
}

func (s *paymentServiceImpl) CheckEVMStatus(ctx context.Context, reference, chainName string) (*dto.EVMPaymentStatusResponse, error) {
	cacheKey := chainName + ":" + reference
	if cached, ok := s.statusCache.Get(cacheKey); ok {
		return cached.(*dto.EVMPaymentStatusResponse), nil
	}

	verifier, ok := s.verifiers[chainName]
	if !ok {
		return nil, chain.ErrNotConfigured
	}

	order, findErr := s.orders.FindByReference(reference)
	probe := order
	if probe == nil {
		probe = &model.Order{Reference: reference}
	}

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()
	receipt, err := verifier.Verify(vctx, probe, chain.Proof{})
	if err != nil {
		return nil, err
	}

	resp := &dto.EVMPaymentStatusResponse{Paid: receipt.Paid, TransactionHash: receipt.TxHash}
	if !receipt.Paid {
		s.statusCache.Set(cacheKey, resp, gocache.DefaultExpiration)
		return resp, nil
	}

	if findErr == nil {
		updated, err := s.reconcile(ctx, order, receipt)
		if err != nil {
			return nil, err
		}
		resp.Updated = updated
	}
	return resp, nil
}

func (s *paymentServiceImpl) VerifyManual(ctx context.Context, chainName, txID, reference string) (*dto.VerifyResponse, error) {
	verifier, ok := s.verifiers[chainName]
	if !ok {
		return nil, chain.ErrNotConfigured
	}

	order, err := s.orders.FindByReference(reference)
	if err != nil {
		return nil, err
	}
	if order.Status == model.StatusPaid {
		return &dto.VerifyResponse{OK: true, Paid: true}, nil
	}

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()
	receipt, err := verifier.Verify(vctx, order, chain.Proof{TxHash: txID})
	if err != nil {
		return nil, err
	}
	if !receipt.Paid {
		return &dto.VerifyResponse{OK: true, Paid: false}, nil
	}

	if _, err := s.reconcile(ctx, order, receipt); err != nil {
		return nil, err
	}
	return &dto.VerifyResponse{OK: true, Paid: true}, nil
}

// reconcile marks the order paid and extends the subscription, exactly once
// per order. The welcome email is best-effort and never rolls anything back.
func (s *paymentServiceImpl) reconcile(ctx context.Context, order *model.Order, receipt *chain.Receipt) (bool, error) {
	// Solana receipts carry the proof as a signature, the other chains as a
	// transaction hash; persist whichever the verifier produced.
	txHash := receipt.TxHash
	if txHash == "" {
		txHash = receipt.Signature
	}

	s.mu.Lock()
	paid, transitioned, err := s.orders.MarkPaid(order.Reference, s.now(), txHash)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	if !transitioned {
		// already credited by a concurrent or earlier poll
		s.mu.Unlock()
		return false, nil
	}

	sub, err := s.extendSubscription(paid)
	s.mu.Unlock()
	if err != nil {
		s.log.Error("order paid but subscription extension failed",
			zap.String("orderId", paid.OrderID), zap.Error(err))
		return true, fmt.Errorf("extend subscription: %w", err)
	}

	s.log.Info("order reconciled",
		zap.String("orderId", paid.OrderID),
		zap.String("email", paid.Email),
		zap.Timep("expiresAt", sub.ExpiresAt))

	s.sendWelcome(ctx, paid, sub)
	return true, nil
}

// extendSubscription derives the new expiry from stored state so a retried
// reconciliation never compounds an in-memory delta.
func (s *paymentServiceImpl) extendSubscription(order *model.Order) (*model.Subscriber, error) {
	plan, ok := model.PlanByName(order.Plan)
	if !ok {
		return nil, fmt.Errorf("order has unknown plan %q", order.Plan)
	}
	now := s.now()

	sub, err := s.subs.FindByEmail(order.Email)
	if err != nil {
		expires := now.Add(plan.Duration)
		sub = &model.Subscriber{
			Email:        order.Email,
			IsSubscribed: true,
			ExpiresAt:    &expires,
			Language:     order.Language,
			Level:        orDefault(order.Level, "N3"),
			Native:       order.Native,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	} else {
		base := now
		if sub.ExpiresAt != nil && sub.ExpiresAt.After(now) {
			base = *sub.ExpiresAt
		}
		expires := base.Add(plan.Duration)
		sub.IsSubscribed = true
		sub.ExpiresAt = &expires
		sub.Language = orDefault(order.Language, sub.Language)
		sub.Native = orDefault(order.Native, sub.Native)
		sub.Level = orDefault(order.Level, orDefault(sub.Level, "N3"))
		sub.UpdatedAt = now
	}

	if err := s.subs.Upsert(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *paymentServiceImpl) sendWelcome(ctx context.Context, order *model.Order, sub *model.Subscriber) {
	language := orDefault(sub.Language, orDefault(order.Language, s.languages.Target))
	sentence := s.sentences.Daily(ctx, s.languages.Source, language)
	if err := s.mailer.SendSentence(ctx, order.Email, language, sentence); err != nil {
		s.log.Error("welcome email failed",
			zap.String("email", order.Email), zap.Error(err))
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
