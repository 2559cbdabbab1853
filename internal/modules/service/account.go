package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/notespace/internal/config"
	"github.com/memodb-io/notespace/internal/modules/model"
	"github.com/memodb-io/notespace/internal/modules/repo"
	"github.com/memodb-io/notespace/internal/pkg/utils/secrets"
	"github.com/memodb-io/notespace/internal/pkg/utils/tokens"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// KVStore is CacheStore plus the single-use reads and counters the account flows need.
type KVStore interface {
	CacheStore
	GetDel(ctx context.Context, key string) ([]byte, bool, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
}

// CaptchaGenerator is satisfied by *captcha.Generator.
type CaptchaGenerator interface {
	Generate() ([]byte, string, error)
}

type AccountService interface {
	CheckUsername(ctx context.Context, username string) (bool, error)
	IssueCaptcha(ctx context.Context) (*CaptchaChallenge, error)
	SendEmailCode(ctx context.Context, in SendEmailCodeInput) error
	Register(ctx context.Context, in RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type accountService struct {
	users     repo.UserRepo
	hooks     *UserHooks
	kv        KVStore
	publisher EventPublisher
	cfg       *config.Config
	log       *zap.Logger

	captchaMu sync.Mutex
	captcha   CaptchaGenerator
}

func NewAccountService(users repo.UserRepo, hooks *UserHooks, kv KVStore, captcha CaptchaGenerator, publisher EventPublisher, cfg *config.Config, log *zap.Logger) AccountService {
	return &accountService{
		users:     users,
		hooks:     hooks,
		kv:        kv,
		captcha:   captcha,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

const (
	emailCodeDigits = 6
	maxUsernameLen  = 150
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidUsername accepts letters, digits and @.+-_ up to 150 characters.
func ValidUsername(username string) bool {
	return username != "" && len(username) <= maxUsernameLen && usernamePattern.MatchString(username)
}

func captchaKey(id string) string { return "captcha:" + id }

func emailCodeKey(email string) string { return "email_code:" + strings.ToLower(email) }

func hourlySendKey(ip string) string { return "email_attempts_hourly_" + ip }

func dailySendKey(ip string) string { return "email_attempts_daily_" + ip }

func (s *accountService) sessionKey(token string) string {
	return "session:" + tokens.HMAC256Hex(s.cfg.Auth.SecretPepper, token)
}

func (s *accountService) CheckUsername(ctx context.Context, username string) (bool, error) {
	return s.users.UsernameExists(ctx, strings.TrimSpace(username))
}

type CaptchaChallenge struct {
	ID  string
	PNG []byte
}

// IssueCaptcha renders a challenge and stores its answer under a fresh id.
func (s *accountService) IssueCaptcha(ctx context.Context) (*CaptchaChallenge, error) {
	s.captchaMu.Lock()
	img, code, err := s.captcha.Generate()
	s.captchaMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("render captcha: %w", err)
	}

	id := uuid.NewString()
	ttl := time.Duration(s.cfg.Auth.CaptchaTTLSec) * time.Second
	if err := s.kv.Set(ctx, captchaKey(id), []byte(code), ttl); err != nil {
		return nil, err
	}
	return &CaptchaChallenge{ID: id, PNG: img}, nil
}

type SendEmailCodeInput struct {
	IP            string
	Email         string
	CaptchaID     string
	CaptchaAnswer string
}

// SendEmailCode verifies the captcha, enforces the per-IP send limits and queues a
// verification mail. The limits are checked before any work and only counted once
// the mail has been handed to the queue.
func (s *accountService) SendEmailCode(ctx context.Context, in SendEmailCodeInput) error {
	hourly, err := s.kv.Count(ctx, hourlySendKey(in.IP))
	if err != nil {
		return err
	}
	if hourly >= int64(s.cfg.RateLimit.EmailCodeHourly) {
		return ErrRateLimited
	}
	daily, err := s.kv.Count(ctx, dailySendKey(in.IP))
	if err != nil {
		return err
	}
	if daily >= int64(s.cfg.RateLimit.EmailCodeDaily) {
		return ErrRateLimited
	}

	// the captcha is single use whatever the outcome
	want, ok, err := s.kv.GetDel(ctx, captchaKey(in.CaptchaID))
	if err != nil {
		return err
	}
	got := strings.ToUpper(strings.TrimSpace(in.CaptchaAnswer))
	if !ok || got == "" || subtle.ConstantTimeCompare([]byte(strings.ToUpper(string(want))), []byte(got)) != 1 {
		return ErrInvalidCaptcha
	}

	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidRegistration
	}
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return ErrEmailTaken
	}

	code, err := randomDigits(emailCodeDigits)
	if err != nil {
		return err
	}
	ttl := time.Duration(s.cfg.Auth.EmailCodeTTLSec) * time.Second
	if err := s.kv.Set(ctx, emailCodeKey(email), []byte(code), ttl); err != nil {
		return err
	}
	if s.publisher != nil {
		msg := VerificationMail{Email: email, Code: code}
		if err := s.publisher.PublishJSON(ctx, s.cfg.RabbitMQ.Exchange.Mail, RoutingMailVerification, msg); err != nil {
			s.log.Sugar().Errorw("queue verification mail", "ip", in.IP, "err", err)
			return fmt.Errorf("queue verification mail: %w", err)
		}
	}

	if _, err := s.kv.Incr(ctx, hourlySendKey(in.IP), time.Hour); err != nil {
		return err
	}
	if _, err := s.kv.Incr(ctx, dailySendKey(in.IP), 24*time.Hour); err != nil {
		return err
	}
	return nil
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	EmailCode string
}

// Register creates an active account, runs the user-created hooks in the same
// transaction and opens a session.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	email := strings.TrimSpace(in.Email)
	stored, ok, err := s.kv.Get(ctx, emailCodeKey(email))
	if err != nil {
		return nil, "", err
	}
	if !ok || in.EmailCode == "" || subtle.ConstantTimeCompare(stored, []byte(in.EmailCode)) != 1 {
		return nil, "", ErrInvalidEmailCode
	}

	username := strings.TrimSpace(in.Username)
	if !ValidUsername(username) {
		return nil, "", ErrInvalidRegistration
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", ErrInvalidRegistration
	}
	if len(in.Password) < s.cfg.Auth.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := secrets.HashPassword(in.Password, s.cfg.Auth.SecretPepper)
	if err != nil {
		return nil, "", err
	}
	u := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.CreateWithHooks(ctx, u, s.hooks.All()...); err != nil {
		switch {
		case errors.Is(err, repo.ErrUsernameExists):
			return nil, "", ErrUsernameTaken
		case errors.Is(err, repo.ErrEmailExists):
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	if err := s.kv.Delete(ctx, emailCodeKey(email)); err != nil {
		s.log.Sugar().Warnw("drop used email code", "user_id", u.ID, "err", err)
	}

	token, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	s.log.Sugar().Infow("user registered", "user_id", u.ID, "username", u.Username)
	return u, token, nil
}

func (s *accountService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	ok, err := secrets.VerifyPassword(password, s.cfg.Auth.SecretPepper, u.PasswordHash)
	if err != nil || !ok {
		return nil, "", ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, "", ErrInactiveAccount
	}

	token, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *accountService) Logout(ctx context.Context, token string) error {
	secret, ok := tokens.ParseToken(token, tokens.SessionPrefix)
	if !ok {
		return nil
	}
	return s.kv.Delete(ctx, s.sessionKey(secret))
}

// Authenticate resolves a session token to an active user.
func (s *accountService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	secret, ok := tokens.ParseToken(token, tokens.SessionPrefix)
	if !ok {
		return nil, ErrUnauthenticated
	}
	raw, ok, err := s.kv.Get(ctx, s.sessionKey(secret))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthenticated
	}
	userID, err := uuid.ParseBytes(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactiveAccount
	}
	return u, nil
}

func (s *accountService) openSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := tokens.New(tokens.SessionPrefix)
	if err != nil {
		return "", err
	}
	secret, _ := tokens.ParseToken(token, tokens.SessionPrefix)
	ttl := time.Duration(s.cfg.Auth.SessionTTLSec) * time.Second
	if err := s.kv.Set(ctx, s.sessionKey(secret), []byte(userID.String()), ttl); err != nil {
		return "", err
	}
	return token, nil
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
