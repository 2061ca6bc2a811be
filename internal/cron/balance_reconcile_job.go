package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/anandkhatri/ledgerbook-backend/internal/reconcile"
	"github.com/anandkhatri/ledgerbook-backend/pkg/logger"
)

// BalanceReconcileJobParams configure the nightly balance sweep.
type BalanceReconcileJobParams struct {
	Logger     *logger.Logger
	Users      reconcileUserSource
	Reconciler balanceReconciler
}

type reconcileUserSource interface {
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type balanceReconciler interface {
	FixAllBalances(ctx context.Context, userID uuid.UUID) (*reconcile.RunReport, error)
}

// NewBalanceReconcileJob builds the job that repairs customer balance drift
// across every active account.
func NewBalanceReconcileJob(params BalanceReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user source required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	return &balanceReconcileJob{
		logg:       params.Logger,
		users:      params.Users,
		reconciler: params.Reconciler,
	}, nil
}

type balanceReconcileJob struct {
	logg       *logger.Logger
	users      reconcileUserSource
	reconciler balanceReconciler
}

func (j *balanceReconcileJob) Name() string { return "balance-reconcile" }

func (j *balanceReconcileJob) Run(ctx context.Context) error {
	userIDs, err := j.users.ListActiveIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var (
		checked  int
		repaired int
		skipped  int
		errs     error
	)
	for _, userID := range userIDs {
		run, runErr := j.reconciler.FixAllBalances(ctx, userID)
		if run != nil {
			checked += run.Checked
			repaired += run.Repaired
			skipped += run.Skipped
		}
		if runErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", userID, runErr))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"users":    len(userIDs),
		"checked":  checked,
		"repaired": repaired,
		"skipped":  skipped,
	})
	if errs != nil {
		j.logg.Error(logCtx, "balance sweep finished with failures", errs)
		return fmt.Errorf("balance reconcile: %w", errs)
	}
	j.logg.Info(logCtx, "balance sweep complete")
	return nil
}
