package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Simplici0/burritos/internal/reports"
)

type fakeLedger struct {
	reconciled int
	weeks      []reports.WeeklyReport
	err        error
	asked      int
}

func (f *fakeLedger) ReconcileStates(context.Context) (int, error) {
	f.reconciled++
	return 2, f.err
}

func (f *fakeLedger) WeeklyReports(_ context.Context, weeks int) ([]reports.WeeklyReport, error) {
	f.asked = weeks
	return f.weeks, f.err
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

func TestStartRegistersJobs(t *testing.T) {
	s := NewScheduler(Config{ReconcileSpec: "5 0 * * *", WeeklyReportSpec: "0 20 * * 5", ReportWeeks: 4}, &fakeLedger{}, nil)
	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Equal(t, 2, s.Entries())
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := NewScheduler(Config{ReconcileSpec: "nope", WeeklyReportSpec: "0 20 * * 5"}, &fakeLedger{}, nil)
	assert.Error(t, s.Start())
}

func TestReconcileJob(t *testing.T) {
	log, logs := observed()
	l := &fakeLedger{}
	s := NewScheduler(Config{}, l, log)

	s.reconcileStates()
	assert.Equal(t, 1, l.reconciled)
	assert.Equal(t, 1, logs.FilterMessage("product states reconciled").Len())

	l.err = errors.New("db locked")
	s.reconcileStates()
	assert.Equal(t, 1, logs.FilterMessage("failed to reconcile product states").Len())
}

func TestWeeklyReportJob(t *testing.T) {
	log, logs := observed()
	l := &fakeLedger{weeks: []reports.WeeklyReport{{WeekID: "2025-W02"}, {WeekID: "2025-W03", NetProfit: 150, Growth: 50}}}
	s := NewScheduler(Config{ReportWeeks: 6}, l, log)

	s.logWeeklyReport()
	assert.Equal(t, 6, l.asked)
	assert.Equal(t, 2, logs.FilterMessage("weekly report").Len())

	l.weeks = nil
	s.logWeeklyReport()
	assert.Equal(t, 1, logs.FilterMessage("weekly report skipped: configuration missing").Len())
}
