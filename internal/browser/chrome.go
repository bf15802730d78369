package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/seatwatch/seatwatch/internal/config"
	"github.com/seatwatch/seatwatch/internal/errors"
	"github.com/seatwatch/seatwatch/internal/logging"
	"github.com/seatwatch/seatwatch/internal/target"
)

// challengePollInterval is how often SolveChallenge re-checks the page while
// waiting for the challenge to clear.
const challengePollInterval = 2 * time.Second

// ChromeDriver opens chromedp-backed sessions. One driver is shared; every
// Open launches an isolated browser context so concurrent attempts never
// share page state.
type ChromeDriver struct {
	cfg       config.BrowserConfig
	artifacts *ArtifactStore
	logger    *logging.Logger
}

// NewChromeDriver creates a driver using the given browser configuration.
func NewChromeDriver(cfg config.BrowserConfig, artifacts *ArtifactStore, logger *logging.Logger) *ChromeDriver {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &ChromeDriver{cfg: cfg, artifacts: artifacts, logger: logger}
}

// Open launches a browser, navigates to the target's page, and returns the
// live session.
func (d *ChromeDriver) Open(ctx context.Context, t *target.Target) (Session, error) {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)
	if !d.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if d.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.cfg.UserAgent))
	}
	if d.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.cfg.ExecPath))
	}
	if d.cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(d.cfg.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)

	s := &chromeSession{
		target:    t,
		ctx:       pageCtx,
		cancel:    func() { pageCancel(); allocCancel() },
		artifacts: d.artifacts,
		logger:    d.logger.WithTarget(t.ID),
	}

	navCtx, navCancel := context.WithTimeout(pageCtx, d.cfg.NavigationTimeout())
	defer navCancel()
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(t.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		s.cancel()
		return nil, fmt.Errorf("opening %s: %w", t.URL, err)
	}

	return s, nil
}

type chromeSession struct {
	target    *target.Target
	ctx       context.Context
	cancel    context.CancelFunc
	artifacts *ArtifactStore
	logger    *logging.Logger
}

// run executes chromedp actions on the session's browser context while
// honoring the caller's context for cancellation and deadlines.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *chromeSession) Probe(ctx context.Context) (Snapshot, error) {
	var hasEntry, hasSelection, soldOut bool
	err := s.run(ctx,
		chromedp.Evaluate(jsHasBookButton, &hasEntry),
		chromedp.Evaluate(jsHasTicketSelection, &hasSelection),
		chromedp.Evaluate(jsHasSoldOutMarker, &soldOut),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("probing page: %w", err)
	}

	return Snapshot{
		Available: (hasEntry || hasSelection) && !soldOut,
		SoldOut:   soldOut,
	}, nil
}

func (s *chromeSession) Authenticate(ctx context.Context) (bool, error) {
	var prompted bool
	if err := s.run(ctx, chromedp.Evaluate(jsHasSignInPrompt, &prompted)); err != nil {
		return false, fmt.Errorf("checking sign-in state: %w", err)
	}
	if prompted {
		s.logger.Warn("sign-in prompt shown; use a signed-in profile via browser.user_data_dir")
		return false, nil
	}
	return true, nil
}

func (s *chromeSession) NavigateToSelection(ctx context.Context) error {
	var clicked bool
	if err := s.run(ctx, chromedp.Evaluate(jsClickBookButton, &clicked)); err != nil {
		return fmt.Errorf("clicking booking entry: %w", err)
	}
	if !clicked {
		// Some pages land directly on selection with no entry button.
		var onSelection bool
		if err := s.run(ctx, chromedp.Evaluate(jsHasTicketSelection, &onSelection)); err != nil {
			return err
		}
		if onSelection {
			return nil
		}
		return errors.New("no booking entry point on page")
	}

	if err := s.run(ctx, chromedp.WaitVisible(ticketSelectionSelector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for ticket selection: %w", err)
	}
	return nil
}

func (s *chromeSession) DetectChallenge(ctx context.Context) (bool, error) {
	var present bool
	if err := s.run(ctx, chromedp.Evaluate(jsHasChallenge, &present)); err != nil {
		return false, fmt.Errorf("checking for challenge: %w", err)
	}
	return present, nil
}

// SolveChallenge has no automated solver; it polls until the challenge
// clears, which in headful mode means a human solved it. The caller's
// context bounds the wait.
func (s *chromeSession) SolveChallenge(ctx context.Context) (bool, error) {
	s.logger.Warn("challenge detected, waiting for it to clear")

	ticker := time.NewTicker(challengePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
			present, err := s.DetectChallenge(ctx)
			if err != nil {
				return false, err
			}
			if !present {
				s.logger.Info("challenge cleared")
				return true, nil
			}
		}
	}
}

func (s *chromeSession) SelectInventory(ctx context.Context, qty int) (bool, error) {
	sections, err := json.Marshal(s.target.PreferredSections)
	if err != nil {
		return false, err
	}
	if s.target.PreferredSections == nil {
		sections = []byte("[]")
	}

	var selected bool
	expr := fmt.Sprintf(jsSelectInventoryFmt, qty, sections)
	if err := s.run(ctx, chromedp.Evaluate(expr, &selected)); err != nil {
		return false, fmt.Errorf("selecting inventory: %w", err)
	}
	return selected, nil
}

func (s *chromeSession) Pay(ctx context.Context) (bool, error) {
	var clicked bool
	if err := s.run(ctx, chromedp.Evaluate(jsClickPayButton, &clicked)); err != nil {
		return false, fmt.Errorf("submitting payment: %w", err)
	}
	return clicked, nil
}

func (s *chromeSession) ExtractConfirmation(ctx context.Context) (*Confirmation, error) {
	var res struct {
		Found  bool    `json:"found"`
		ID     string  `json:"id"`
		Amount float64 `json:"amount"`
	}
	if err := s.run(ctx, chromedp.Evaluate(jsExtractConfirmation, &res)); err != nil {
		return nil, fmt.Errorf("reading confirmation page: %w", err)
	}
	if !res.Found || res.ID == "" {
		return nil, nil
	}

	return &Confirmation{
		ID:     res.ID,
		Amount: res.Amount,
		Venue:  s.target.Venue,
		Date:   s.target.EventDate,
	}, nil
}

func (s *chromeSession) Capture(ctx context.Context, label string) (ArtifactRef, error) {
	if s.artifacts == nil {
		return ArtifactRef{}, nil
	}

	// Full-page capture, not just the viewport: failure screenshots are
	// only useful if the error banner below the fold is in them.
	var shot []byte
	grab := chromedp.ActionFunc(func(ctx context.Context) error {
		buf, err := page.CaptureScreenshot().WithCaptureBeyondViewport(true).Do(ctx)
		if err != nil {
			return err
		}
		shot = buf
		return nil
	})
	if err := s.run(ctx, grab); err != nil {
		return ArtifactRef{}, fmt.Errorf("capturing screenshot: %w", err)
	}
	return s.artifacts.Save(s.target.ID, label, "png", shot)
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
