package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"lingua-daily/internal/client"
	"lingua-daily/internal/model"
)

const sentenceTTL = 12 * time.Hour

// SentenceService produces the daily sentence for a language pair. Results
// are cached so every subscriber of a language shares one generation per
// cycle; generator failures degrade to a static fallback, never an error.
type SentenceService interface {
	Daily(ctx context.Context, source, target string) *model.Sentence
}

type sentenceServiceImpl struct {
	log      *zap.Logger
	deepseek client.DeepSeekClient
	cache    *gocache.Cache
}

func NewSentenceService(log *zap.Logger, deepseek client.DeepSeekClient) SentenceService {
	return &sentenceServiceImpl{
		log:      log,
		deepseek: deepseek,
		cache:    gocache.New(sentenceTTL, time.Hour),
	}
}

func (s *sentenceServiceImpl) Daily(ctx context.Context, source, target string) *model.Sentence {
	key := "daily_sentence_" + source + "_to_" + target
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.Sentence)
	}

	sentence, err := s.deepseek.GenerateSentence(ctx, source, target)
	if err != nil {
		s.log.Warn("sentence generation failed, serving fallback",
			zap.String("source", source), zap.String("target", target), zap.Error(err))
		return model.FallbackSentence()
	}

	s.cache.Set(key, sentence, gocache.DefaultExpiration)
	return sentence
}
