package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lingua-daily/internal/config"
	"lingua-daily/internal/model"
	"lingua-daily/internal/repository"
)

type SubscriptionService interface {
	Subscribe(email, language string) error
	// Unsubscribe is soft: the record stays, flagged unsubscribed. Unknown
	// emails are a no-op.
	Unsubscribe(email string) error
	// SendDaily generates one sentence per language group and mails it to
	// every subscribed address, returning how many sends succeeded.
	SendDaily(ctx context.Context) (int, error)
}

type subscriptionServiceImpl struct {
	log       *zap.Logger
	languages config.Languages
	subs      repository.SubscriberRepository
	sentences SentenceService
	mailer    MailerService
}

func NewSubscriptionService(
	log *zap.Logger,
	languages config.Languages,
	subs repository.SubscriberRepository,
	sentences SentenceService,
	mailer MailerService,
) SubscriptionService {
	return &subscriptionServiceImpl{
		log:       log,
		languages: languages,
		subs:      subs,
		sentences: sentences,
		mailer:    mailer,
	}
}

func (s *subscriptionServiceImpl) Subscribe(email, language string) error {
	language = orDefault(language, s.languages.Target)
	now := time.Now()

	sub, err := s.subs.FindByEmail(email)
	if err != nil {
		sub = &model.Subscriber{
			Email:        email,
			IsSubscribed: true,
			Language:     language,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	} else {
		sub.Language = language
		sub.IsSubscribed = true
		sub.UpdatedAt = now
	}

	if err := s.subs.Upsert(sub); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

func (s *subscriptionServiceImpl) Unsubscribe(email string) error {
	sub, err := s.subs.FindByEmail(email)
	if err != nil {
		return nil
	}
	sub.IsSubscribed = false
	sub.UpdatedAt = time.Now()
	if err := s.subs.Upsert(sub); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}
	return nil
}

func (s *subscriptionServiceImpl) SendDaily(ctx context.Context) (int, error) {
	byLanguage := make(map[string][]model.Subscriber)
	for _, sub := range s.subs.All() {
		if !sub.IsSubscribed {
			continue
		}
		language := orDefault(sub.Language, s.languages.Target)
		byLanguage[language] = append(byLanguage[language], sub)
	}

	sent := 0
	for language, group := range byLanguage {
		sentence := s.sentences.Daily(ctx, s.languages.Source, language)
		for _, sub := range group {
			if err := s.mailer.SendSentence(ctx, sub.Email, language, sentence); err != nil {
				s.log.Warn("daily email failed",
					zap.String("email", sub.Email), zap.Error(err))
				continue
			}
			sent++
		}
	}
	return sent, nil
}
