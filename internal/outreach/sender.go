package outreach

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadgen-my/leadgen-cli/internal/config"
	"github.com/leadgen-my/leadgen-cli/internal/model"
)

// SentLog records deliveries back to the store.
type SentLog interface {
	MarkGenerationSent(ctx context.Context, generationID int64, sentAt time.Time) error
}

// Sender delivers generated emails over SMTP within hourly and daily send
// budgets.
type Sender struct {
	smtp     config.SMTPConfig
	outreach config.OutreachConfig

	hourly *rate.Limiter
	daily  *rate.Limiter

	blacklist map[string]struct{}
	dryRun    bool

	// deliver is swapped out in tests.
	deliver func(ctx context.Context, msg *gomail.Msg) error
}

// SendResult summarizes a batch send.
type SendResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// NewSender builds a Sender from config. With dryRun set, emails are logged
// instead of delivered and generations are not marked sent.
func NewSender(smtp config.SMTPConfig, outreach config.OutreachConfig, dryRun bool) *Sender {
	blacklist := make(map[string]struct{}, len(outreach.BlacklistDomains))
	for _, domain := range outreach.BlacklistDomains {
		blacklist[strings.ToLower(domain)] = struct{}{}
	}

	s := &Sender{
		smtp:      smtp,
		outreach:  outreach,
		hourly:    budgetLimiter(outreach.HourlyLimit, time.Hour),
		daily:     budgetLimiter(outreach.DailyLimit, 24*time.Hour),
		blacklist: blacklist,
		dryRun:    dryRun,
	}
	s.deliver = s.smtpDeliver
	return s
}

// budgetLimiter spreads n sends evenly over the period, with a burst of one
// so a fresh process cannot front-load the budget.
func budgetLimiter(n int, period time.Duration) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(period/time.Duration(n)), 1)
}

// Send delivers one generation and marks it sent. Blacklisted recipient
// domains are rejected before any SMTP traffic.
func (s *Sender) Send(ctx context.Context, gen model.EmailGeneration, attachments []string, log SentLog) error {
	if err := s.checkRecipient(gen.Recipient); err != nil {
		return err
	}

	if s.dryRun {
		zap.L().Info("outreach: dry run, not sending",
			zap.String("recipient", gen.Recipient),
			zap.String("subject", gen.Subject))
		return nil
	}

	if err := s.waitBudget(ctx); err != nil {
		return err
	}

	msg, err := s.buildMessage(gen, attachments)
	if err != nil {
		return err
	}
	if err := s.deliver(ctx, msg); err != nil {
		return eris.Wrapf(err, "outreach: send to %s", gen.Recipient)
	}

	if log != nil && gen.ID != 0 {
		if err := log.MarkGenerationSent(ctx, gen.ID, time.Now().UTC()); err != nil {
			return eris.Wrapf(err, "outreach: mark generation %d sent", gen.ID)
		}
	}
	return nil
}

// SendBatch delivers generations in batches with a delay between sends and
// bounded retries per email. Failures and blacklisted recipients never stop
// the batch.
func (s *Sender) SendBatch(ctx context.Context, gens []model.EmailGeneration, attachments []string, log SentLog) (SendResult, error) {
	var res SendResult

	batchSize := s.outreach.BatchSize
	if batchSize <= 0 {
		batchSize = len(gens)
	}
	delay := time.Duration(s.outreach.SendDelaySecs * float64(time.Second))
	retryDelay := time.Duration(s.outreach.RetryDelaySecs) * time.Second

	for i, gen := range gens {
		if err := ctx.Err(); err != nil {
			return res, eris.Wrap(err, "outreach: batch interrupted")
		}

		if err := s.checkRecipient(gen.Recipient); err != nil {
			zap.L().Warn("outreach: skipping recipient",
				zap.String("recipient", gen.Recipient),
				zap.Error(err))
			res.Skipped++
			continue
		}

		if err := s.sendWithRetry(ctx, gen, attachments, log, retryDelay); err != nil {
			zap.L().Error("outreach: send failed",
				zap.String("recipient", gen.Recipient),
				zap.Error(err))
			res.Failed++
		} else {
			res.Sent++
		}

		if i == len(gens)-1 {
			break
		}
		pause := delay
		if batchSize > 0 && (i+1)%batchSize == 0 {
			// Longer breather between batches.
			pause = delay * 2
		}
		if pause > 0 && !s.dryRun {
			if err := sleepCtx(ctx, pause); err != nil {
				return res, eris.Wrap(err, "outreach: batch interrupted")
			}
		}
	}

	zap.L().Info("outreach: batch complete",
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func (s *Sender) sendWithRetry(ctx context.Context, gen model.EmailGeneration, attachments []string, log SentLog, retryDelay time.Duration) error {
	attempts := s.outreach.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.Send(ctx, gen, attachments, log)
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		zap.L().Warn("outreach: retrying send",
			zap.String("recipient", gen.Recipient),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if serr := sleepCtx(ctx, retryDelay); serr != nil {
			return serr
		}
	}
	return err
}

func (s *Sender) checkRecipient(recipient string) error {
	if recipient == "" {
		return eris.New("outreach: empty recipient")
	}
	at := strings.LastIndex(recipient, "@")
	if at < 0 {
		return eris.Errorf("outreach: invalid recipient %s", recipient)
	}
	domain := strings.ToLower(recipient[at+1:])
	if _, blocked := s.blacklist[domain]; blocked {
		return eris.Errorf("outreach: recipient domain %s is blacklisted", domain)
	}
	return nil
}

func (s *Sender) waitBudget(ctx context.Context) error {
	if err := s.daily.Wait(ctx); err != nil {
		return eris.Wrap(err, "outreach: daily send budget")
	}
	if err := s.hourly.Wait(ctx); err != nil {
		return eris.Wrap(err, "outreach: hourly send budget")
	}
	return nil
}

func (s *Sender) buildMessage(gen model.EmailGeneration, attachments []string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.smtp.FromName, s.smtp.From); err != nil {
		return nil, eris.Wrap(err, "outreach: set from")
	}
	if err := msg.To(gen.Recipient); err != nil {
		return nil, eris.Wrapf(err, "outreach: set recipient %s", gen.Recipient)
	}
	msg.Subject(gen.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, gen.Body)

	for _, path := range attachments {
		info, err := os.Stat(path)
		if err != nil {
			zap.L().Warn("outreach: skipping missing attachment",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		if s.outreach.MaxAttachmentBytes > 0 && info.Size() > s.outreach.MaxAttachmentBytes {
			zap.L().Warn("outreach: skipping oversized attachment",
				zap.String("path", path),
				zap.Int64("bytes", info.Size()))
			continue
		}
		msg.AttachFile(path)
	}
	return msg, nil
}

func (s *Sender) smtpDeliver(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(s.smtp.Host,
		gomail.WithPort(s.smtp.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.smtp.Username),
		gomail.WithPassword(s.smtp.Password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return eris.Wrap(err, "outreach: smtp client")
	}
	return client.DialAndSendWithContext(ctx, msg)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
