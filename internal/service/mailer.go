package service

import (
	"context"
	"fmt"
	"time"

	"lingua-daily/internal/client"
	"lingua-daily/internal/config"
	"lingua-daily/internal/model"
)

// MailerService picks the right template and subject per language and hands
// the sentence to the email provider.
type MailerService interface {
	SendSentence(ctx context.Context, to, language string, sentence *model.Sentence) error
}

type mailerServiceImpl struct {
	email client.EmailClient
	cfg   *config.Tencent
}

func NewMailerService(email client.EmailClient, cfg *config.Tencent) MailerService {
	return &mailerServiceImpl{email: email, cfg: cfg}
}

func (m *mailerServiceImpl) SendSentence(ctx context.Context, to, language string, sentence *model.Sentence) error {
	if err := m.email.SendTemplate(ctx, to, m.templateID(language), sentence.TemplateData(), m.subject(language)); err != nil {
		return fmt.Errorf("send sentence email: %w", err)
	}
	return nil
}

func (m *mailerServiceImpl) templateID(language string) uint64 {
	switch language {
	case "thai":
		return m.cfg.TemplateIDTH
	case "english":
		return m.cfg.TemplateIDEN
	default:
		return m.cfg.TemplateID
	}
}

func (m *mailerServiceImpl) subject(language string) string {
	date := time.Now().Format("2006/01/02")
	switch language {
	case "english":
		return "今日の英語 " + date
	case "thai":
		return "今日のタイ語 " + date
	default:
		return "今日の日本語 " + date
	}
}
