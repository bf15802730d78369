package acquire

import (
	"context"
	"fmt"

	"github.com/seatwatch/seatwatch/internal/browser"
	"github.com/seatwatch/seatwatch/internal/errors"
	"github.com/seatwatch/seatwatch/internal/target"
)

// runAttempt is one pass through the pipeline. It returns the attempt record
// and, on success, the verified confirmation. A stage failure aborts the
// attempt; there is no stage-level retry.
func (o *Orchestrator) runAttempt(ctx context.Context, t *target.Target, number int) (*Attempt, *browser.Confirmation) {
	att := &Attempt{
		TargetID:  t.ID,
		Number:    number,
		Stage:     StageIdle,
		StartedAt: o.clk.Now(),
	}
	logger := o.logger.WithTarget(t.ID).WithAttempt(number)

	sess, err := o.driver.Open(ctx, t)
	if err != nil {
		return o.fail(att, errors.NewStageError("failed to open event page", err).
			WithStage(StageIdle.String()).WithAttempt(number)), nil
	}
	defer sess.Close()

	// Authenticate.
	err = o.stage(ctx, sess, att, StageAuthenticating, func(c context.Context) error {
		ok, err := sess.Authenticate(c)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("authentication required and no signed-in profile available")
		}
		return nil
	})
	if err != nil {
		return o.fail(att, err), nil
	}

	// Into ticket selection, with a challenge checkpoint right after.
	err = o.stage(ctx, sess, att, StageSelectingInventory, func(c context.Context) error {
		return sess.NavigateToSelection(c)
	})
	if err != nil {
		return o.fail(att, err), nil
	}
	if err := o.challengeCheckpoint(ctx, sess, att); err != nil {
		return o.fail(att, err), nil
	}

	// Pick the inventory, then check for a challenge again: sites often
	// interpose one between selection and payment.
	err = o.stage(ctx, sess, att, StageSelectingInventory, func(c context.Context) error {
		ok, err := sess.SelectInventory(c, t.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("could not select %d tickets", t.Quantity)
		}
		return nil
	})
	if err != nil {
		return o.fail(att, err), nil
	}
	if err := o.challengeCheckpoint(ctx, sess, att); err != nil {
		return o.fail(att, err), nil
	}

	// Pay.
	err = o.stage(ctx, sess, att, StagePaying, func(c context.Context) error {
		ok, err := sess.Pay(c)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("payment was rejected or could not be submitted")
		}
		return nil
	})
	if err != nil {
		return o.fail(att, err), nil
	}

	// Verify. Payment without a confirmation ID is a failure, whatever the
	// payment step claimed.
	var conf *browser.Confirmation
	err = o.stage(ctx, sess, att, StageVerifyingConfirmation, func(c context.Context) error {
		got, err := sess.ExtractConfirmation(c)
		if err != nil {
			return err
		}
		if got == nil || got.ID == "" {
			return errors.ErrNoConfirmation
		}
		conf = got
		return nil
	})
	if err != nil {
		return o.fail(att, err), nil
	}

	att.Stage = StageSucceeded
	att.Outcome = OutcomeSuccess
	logger.Info("attempt succeeded", "confirmation_id", conf.ID)
	return att, conf
}

// stage runs one collaborator call with the configured stage timeout,
// capturing a diagnostic artifact on entry and exit regardless of outcome.
// A timeout is the same as a reported failure.
func (o *Orchestrator) stage(ctx context.Context, sess browser.Session, att *Attempt, s Stage, fn func(context.Context) error) error {
	att.Stage = s

	stageCtx := ctx
	if timeout := o.cfg.StageTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	o.capture(stageCtx, sess, att, s, "entry")
	err := fn(stageCtx)
	o.capture(ctx, sess, att, s, "exit")

	if err != nil {
		return errors.NewStageError("stage failed", err).
			WithStage(s.String()).WithAttempt(att.Number)
	}
	return nil
}

// challengeCheckpoint enters SolvingChallenge only when a challenge is
// actually blocking the page. The detection call is bounded like every
// other collaborator call; a hung detection must fail the attempt, not
// pin the target's admission slot forever.
func (o *Orchestrator) challengeCheckpoint(ctx context.Context, sess browser.Session, att *Attempt) error {
	detectCtx := ctx
	if timeout := o.cfg.StageTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		detectCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	present, err := sess.DetectChallenge(detectCtx)
	if err != nil {
		return errors.NewStageError("challenge detection failed", err).
			WithStage(StageSolvingChallenge.String()).WithAttempt(att.Number)
	}
	if !present {
		return nil
	}

	return o.stage(ctx, sess, att, StageSolvingChallenge, func(c context.Context) error {
		ok, err := sess.SolveChallenge(c)
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrChallengeUnsolved
		}
		return nil
	})
}

// capture records a diagnostic artifact; capture failures are logged, never
// fatal to the attempt.
func (o *Orchestrator) capture(ctx context.Context, sess browser.Session, att *Attempt, s Stage, point string) {
	label := fmt.Sprintf("attempt%d_%s_%s", att.Number, s.String(), point)
	ref, err := sess.Capture(ctx, label)
	if err != nil {
		o.logger.Debug("artifact capture failed", "target_id", att.TargetID, "label", label, "error", err)
		return
	}
	att.Artifacts = append(att.Artifacts, ref.Path)
}

// fail marks the attempt terminally failed.
func (o *Orchestrator) fail(att *Attempt, err error) *Attempt {
	att.Stage = StageFailed
	att.Outcome = OutcomeFailed
	att.FailureReason = err.Error()
	return att
}
