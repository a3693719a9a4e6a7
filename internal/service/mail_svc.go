package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"

	"storefront_dev_v1/internal/config"
	"storefront_dev_v1/pkg/logger"
	"storefront_dev_v1/pkg/utils"
)

// MailMessage 待发送邮件
type MailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

//go:generate mockgen -destination=mail_sender_mock_test.go -package=service . MailSender

// MailSender 邮件发送
type MailSender interface {
	Send(ctx context.Context, msg MailMessage) error
}

// NewMailSender 按配置创建：log 只打日志（开发用），http 调用第三方邮件 API
func NewMailSender(cfg config.MailConfig, debug bool) (MailSender, error) {
	switch cfg.Provider {
	case "log", "":
		return &LogMailSender{}, nil
	case "http":
		if cfg.APIURL == "" {
			return nil, fmt.Errorf("mail.api_url 不能为空")
		}
		return NewHTTPMailSender(utils.NewHTTPClient(0, debug), cfg), nil
	default:
		return nil, fmt.Errorf("不支持的邮件提供者: %s", cfg.Provider)
	}
}

// ==================== 日志实现 ====================

// LogMailSender 不真正发信，把内容写进日志；保留最近一封供测试读取
type LogMailSender struct {
	mu   sync.Mutex
	last *MailMessage
}

func (s *LogMailSender) Send(_ context.Context, msg MailMessage) error {
	logger.S().Infof("[Mail] to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Text)
	s.mu.Lock()
	s.last = &msg
	s.mu.Unlock()
	return nil
}

// Last 最近一封邮件
func (s *LogMailSender) Last() *MailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ==================== HTTP 实现 ====================

// HTTPMailSender 以 JSON POST 调用邮件 API（Bearer 鉴权）
type HTTPMailSender struct {
	client *resty.Client
	apiURL string
	apiKey string
	from   string
}

// NewHTTPMailSender 创建 HTTP 邮件发送器
func NewHTTPMailSender(client *resty.Client, cfg config.MailConfig) *HTTPMailSender {
	return &HTTPMailSender{
		client: client,
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
	}
}

type mailAPIRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

func (s *HTTPMailSender) Send(ctx context.Context, msg MailMessage) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(mailAPIRequest{
			From:    s.from,
			To:      []string{msg.To},
			Subject: msg.Subject,
			Text:    msg.Text,
			HTML:    msg.HTML,
		}).
		Post(s.apiURL)
	if err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("邮件服务返回 %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
