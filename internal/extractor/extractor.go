// Package extractor logs into the scrape target through a borrowed browser
// session and turns the trends container into a FetchRecord.
package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

// Config describes the login surface and the locators used on it.
type Config struct {
	LoginURL       string
	Username       string
	Password       string
	UsernameXPath  string
	PasswordXPath  string
	TrendsXPath    string
	TopicSelector  string
	ElementTimeout time.Duration
	MaxTopics      int
}

// Extractor implements trends.Extractor.
type Extractor struct {
	cfg      Config
	resolver trends.AddressResolver
	clock    trends.Clock
	idGen    trends.IDGenerator
	logger   *zap.Logger
}

// New constructs an Extractor.
func New(
	cfg Config,
	resolver trends.AddressResolver,
	clock trends.Clock,
	idGen trends.IDGenerator,
	logger *zap.Logger,
) *Extractor {
	if cfg.ElementTimeout <= 0 {
		cfg.ElementTimeout = 30 * time.Second
	}
	if cfg.MaxTopics <= 0 {
		cfg.MaxTopics = trends.MaxTopics
	}
	if cfg.TopicSelector == "" {
		cfg.TopicSelector = "span"
	}
	return &Extractor{
		cfg:      cfg,
		resolver: resolver,
		clock:    clock,
		idGen:    idGen,
		logger:   logging.Named(logger, "extractor"),
	}
}

// Run performs one scrape. Any step failure collapses into a Failure outcome;
// the session is left intact for a later explicit reset.
func (e *Extractor) Run(ctx context.Context, session trends.Session) trends.Outcome {
	record, err := e.extract(ctx, session)
	if err != nil {
		e.logger.Warn("extraction failed", zap.Uint64("session_id", session.ID()), zap.Error(err))
		return trends.Failure(err.Error())
	}
	e.logger.Info("trending topics fetched",
		zap.Uint64("session_id", session.ID()),
		zap.String("record_id", record.ID),
		zap.Strings("topics", record.Topics),
	)
	return trends.Success(record)
}

// Preflight reports configuration problems that make any run pointless.
func (e *Extractor) Preflight() error {
	if e.cfg.Username == "" || e.cfg.Password == "" {
		return trends.ErrCredentialsMissing
	}
	return nil
}

func (e *Extractor) extract(ctx context.Context, session trends.Session) (trends.FetchRecord, error) {
	if err := e.Preflight(); err != nil {
		return trends.FetchRecord{}, err
	}

	e.logger.Debug("navigating to login page", zap.String("url", e.cfg.LoginURL))
	if err := session.Navigate(ctx, e.cfg.LoginURL); err != nil {
		return trends.FetchRecord{}, fmt.Errorf("open login page: %w", err)
	}
	if err := e.submit(ctx, session, "username", e.cfg.UsernameXPath, e.cfg.Username); err != nil {
		return trends.FetchRecord{}, err
	}
	if err := e.submit(ctx, session, "password", e.cfg.PasswordXPath, e.cfg.Password); err != nil {
		return trends.FetchRecord{}, err
	}

	e.logger.Debug("waiting for trends section")
	container, err := session.AwaitElement(ctx, e.cfg.TrendsXPath, e.cfg.ElementTimeout)
	if err != nil {
		return trends.FetchRecord{}, fmt.Errorf("trends section: %w", err)
	}
	raw, err := session.Texts(ctx, container, e.cfg.TopicSelector)
	if err != nil {
		return trends.FetchRecord{}, fmt.Errorf("read trends section: %w", err)
	}
	topics := CleanTopics(raw, e.cfg.MaxTopics)

	address, err := e.resolver.Resolve(ctx)
	if err != nil {
		return trends.FetchRecord{}, fmt.Errorf("resolve public address: %w", err)
	}
	id, err := e.idGen.NewID()
	if err != nil {
		return trends.FetchRecord{}, fmt.Errorf("generate record id: %w", err)
	}

	return trends.FetchRecord{
		ID:        id,
		Topics:    topics,
		Timestamp: e.clock.Now(),
		Address:   address,
	}, nil
}

// submit waits for a login field and types value followed by Enter.
func (e *Extractor) submit(ctx context.Context, session trends.Session, field, locator, value string) error {
	e.logger.Debug("waiting for login field", zap.String("field", field))
	el, err := session.AwaitElement(ctx, locator, e.cfg.ElementTimeout)
	if err != nil {
		return fmt.Errorf("%s field: %w", field, err)
	}
	if err := session.SendKeys(ctx, el, value+kb.Enter); err != nil {
		return fmt.Errorf("submit %s: %w", field, err)
	}
	return nil
}
