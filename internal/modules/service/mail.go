package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

type MailSender interface {
	Send(ctx context.Context, to, subject, text string) error
}

const verificationSubject = "Your Notespace verification code"

// MailDispatcher turns queued mail events into messages for a MailSender.
type MailDispatcher struct {
	sender MailSender
	log    *zap.Logger
}

func NewMailDispatcher(sender MailSender, log *zap.Logger) *MailDispatcher {
	return &MailDispatcher{sender: sender, log: log}
}

func verificationText(code string) string {
	return fmt.Sprintf("Your verification code is %s.\n\nIf you did not request it, ignore this message.\n", code)
}

func (d *MailDispatcher) Handle(ctx context.Context, routingKey string, body []byte) error {
	if routingKey != RoutingMailVerification {
		return nil
	}
	var msg VerificationMail
	if err := sonic.Unmarshal(body, &msg); err != nil || msg.Email == "" {
		d.log.Sugar().Warnw("drop malformed mail event", "routing_key", routingKey, "err", err)
		return nil
	}
	if err := d.sender.Send(ctx, msg.Email, verificationSubject, verificationText(msg.Code)); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}
