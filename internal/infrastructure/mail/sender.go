package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"auctionsystem/internal/config"
)

// Sender 邮件发送接口
// 中标通知是尽力而为的副作用：发送失败只记日志，绝不影响结算结果
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender 基于 SMTP 的发送实现（Mailtrap 等标准 SMTP 服务均可）
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPSender(cfg *config.SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.from, to, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// NopSender 空实现，未配置 SMTP 时使用，只记日志
type NopSender struct{}

func (NopSender) Send(to, subject, body string) error {
	log.Printf("[Mail] SMTP 未配置，跳过邮件发送: to=%s, subject=%s", to, subject)
	return nil
}
