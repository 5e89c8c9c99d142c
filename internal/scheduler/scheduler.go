// Package scheduler runs [[routines.jobs]] — cron-scheduled prompts that
// re-enter the Agent Loop non-interactively and deliver the result via a
// Channel, grounded on the teacher's initScheduler/scheduler.New wiring in
// pkg/goclaw/copilot/assistant.go (file-backed job storage, a handler
// closure that runs an agent turn and forwards the result to a channel),
// generalized from the teacher's custom scheduler package to
// github.com/robfig/cron/v3 directly.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/yzzting/rrclaw/internal/agent"
	"github.com/yzzting/rrclaw/internal/config"
)

// Job is a single scheduled prompt, sourced from a [[routines.jobs]] entry.
type Job struct {
	Name   string
	Cron   string
	Prompt string
}

// Scheduler owns a cron.Cron instance and re-enters the Agent Loop for
// each due job, delivering the result text to recipient via channel.
type Scheduler struct {
	cron      *cron.Cron
	loop      *agent.Loop
	channel   agent.Channel
	recipient string
	logger    *slog.Logger
}

// New builds a Scheduler from config-sourced job definitions. loop is the
// Agent Loop instance the jobs re-enter; channel receives the result of
// each run (recipient is a channel-specific destination, e.g. a Telegram
// chat ID, blank if jobs only write to logs/memory).
func New(jobs []config.RoutineJobSection, loop *agent.Loop, channel agent.Channel, recipient string, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		cron:      cron.New(),
		loop:      loop,
		channel:   channel,
		recipient: recipient,
		logger:    logger.With("component", "scheduler"),
	}
	for _, job := range jobs {
		if err := s.addJob(Job{Name: job.Name, Cron: job.Cron, Prompt: job.Prompt}); err != nil {
			return nil, fmt.Errorf("scheduling job %q: %w", job.Name, err)
		}
	}
	return s, nil
}

func (s *Scheduler) addJob(job Job) error {
	_, err := s.cron.AddFunc(job.Cron, func() {
		s.run(job)
	})
	return err
}

// run executes one job's prompt through the Agent Loop and delivers the
// result. Errors are logged, not propagated, since cron has no caller to
// return them to.
func (s *Scheduler) run(job Job) {
	ctx := context.Background()
	s.logger.Info("routine starting", "job", job.Name)

	result, err := s.loop.Process(ctx, job.Prompt, nil)
	if err != nil {
		s.logger.Error("routine failed", "job", job.Name, "error", err)
		return
	}

	if s.channel != nil {
		if err := s.channel.Send(ctx, result, s.recipient); err != nil {
			s.logger.Error("routine result delivery failed", "job", job.Name, "error", err)
		}
	}
	s.logger.Info("routine finished", "job", job.Name)
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Jobs returns the cron entries currently scheduled, for introspection by
// the routine tool.
func (s *Scheduler) Jobs() []cron.Entry {
	return s.cron.Entries()
}
