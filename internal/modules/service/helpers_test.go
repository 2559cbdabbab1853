package service

import (
	"github.com/memodb-io/notespace/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "notespace-test"
	cfg.RabbitMQ.Exchange.Events = "notespace.events"
	cfg.RabbitMQ.Exchange.Mail = "notespace.mail"
	cfg.Auth.SecretPepper = "pepper"
	cfg.Auth.SessionTTLSec = 3600
	cfg.Auth.MinPasswordLength = 9
	cfg.Auth.EmailCodeTTLSec = 600
	cfg.Auth.CaptchaTTLSec = 300
	cfg.Cache.VisibleNotesTTLSec = 900
	cfg.RateLimit.EmailCodeHourly = 3
	cfg.RateLimit.EmailCodeDaily = 5
	cfg.S3.PresignExpireSec = 900
	return cfg
}
