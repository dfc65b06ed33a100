package client

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	ses "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/ses/v20201002"

	"lingua-daily/internal/config"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type EmailClient interface {
	SendTemplate(ctx context.Context, to string, templateID uint64, data map[string]string, subject string) error
}

type sesClientImpl struct {
	ses    *ses.Client
	sender string
}

func NewSESClient(cfg *config.Tencent) (EmailClient, error) {
	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = cfg.SESEndpoint

	sesClient, err := ses.NewClient(credential, cfg.SESRegion, cpf)
	if err != nil {
		return nil, fmt.Errorf("new ses client: %w", err)
	}
	return &sesClientImpl{ses: sesClient, sender: cfg.SESSender}, nil
}

func (c *sesClientImpl) SendTemplate(ctx context.Context, to string, templateID uint64, data map[string]string, subject string) error {
	if c.sender == "" {
		return fmt.Errorf("ses sender not configured")
	}
	if !emailPattern.MatchString(to) {
		return fmt.Errorf("invalid recipient email")
	}

	payload, err := json.Marshal(htmlizeTemplateData(data))
	if err != nil {
		return fmt.Errorf("marshal template data: %w", err)
	}

	req := ses.NewSendEmailRequest()
	req.FromEmailAddress = common.StringPtr(c.sender)
	req.Destination = common.StringPtrs([]string{to})
	req.Template = &ses.Template{
		TemplateID:   common.Uint64Ptr(templateID),
		TemplateData: common.StringPtr(string(payload)),
	}
	if subject != "" {
		req.Subject = common.StringPtr(subject)
	}

	if _, err := c.ses.SendEmailWithContext(ctx, req); err != nil {
		return fmt.Errorf("tencent ses send: %w", err)
	}
	return nil
}

// htmlizeTemplateData rewrites newlines as <br> for the fields the HTML
// templates render as multi-line blocks.
func htmlizeTemplateData(data map[string]string) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if k == "breakdown" || k == "grammar" {
			out[k] = strings.ReplaceAll(v, "\n", "<br>")
		} else {
			out[k] = v
		}
	}
	return out
}
