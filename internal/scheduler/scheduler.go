package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/reports"
)

const jobTimeout = 2 * time.Minute

// Ledger is the part of the service the scheduled jobs drive.
type Ledger interface {
	ReconcileStates(ctx context.Context) (int, error)
	WeeklyReports(ctx context.Context, weeks int) ([]reports.WeeklyReport, error)
}

// Config holds the job schedules in standard five-field cron syntax.
type Config struct {
	ReconcileSpec    string
	WeeklyReportSpec string
	ReportWeeks      int
	Location         *time.Location
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	ledger Ledger
	cfg    Config
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg Config, ledger Ledger, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		ledger: ledger,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("reconcile", s.cfg.ReconcileSpec),
		zap.String("weekly_report", s.cfg.WeeklyReportSpec),
	)

	if _, err := s.cron.AddFunc(s.cfg.ReconcileSpec, s.reconcileStates); err != nil {
		return fmt.Errorf("schedule state reconciliation: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.WeeklyReportSpec, s.logWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) reconcileStates() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	changed, err := s.ledger.ReconcileStates(ctx)
	if err != nil {
		s.logger.Error("failed to reconcile product states", zap.Error(err))
		return
	}
	s.logger.Info("product states reconciled", zap.Int("changed", changed))
}

func (s *Scheduler) logWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	weeks, err := s.ledger.WeeklyReports(ctx, s.cfg.ReportWeeks)
	if err != nil {
		s.logger.Error("failed to build weekly report", zap.Error(err))
		return
	}
	if len(weeks) == 0 {
		s.logger.Info("weekly report skipped: configuration missing")
		return
	}

	for _, w := range weeks {
		s.logger.Info("weekly report",
			zap.String("week", w.WeekID),
			zap.Float64("paid_total", w.PaidTotal),
			zap.Float64("total_costs", w.TotalCosts),
			zap.Float64("net_profit", w.NetProfit),
			zap.Int("active_days", w.ActiveDays),
			zap.Float64("growth", w.Growth),
		)
	}
}
