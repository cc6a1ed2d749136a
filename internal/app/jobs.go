package app

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/toughcrm/internal/jobs"
	"go.uber.org/zap"
)

// Names of the maintenance jobs
const (
	JobRestock   = "restock"
	JobReport    = "report"
	JobReminder  = "reminder"
	JobHeartbeat = "heartbeat"
)

const jobTimeout = 5 * time.Minute

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) openSink(filename string) io.Writer {
	sink := jobs.NewFileSink(filename)
	a.sinks = append(a.sinks, sink)
	return sink
}

// buildJobs binds every maintenance job to its sink. Jobs never return
// errors; failures land in the sink and the application log.
func (a *Application) buildJobs() map[string]func() {
	cfg := a.appConfig.Jobs
	restockOpts := jobs.RestockOptions{Threshold: cfg.RestockThreshold, Increment: cfg.RestockIncrement}
	if restockOpts.Threshold <= 0 || restockOpts.Increment <= 0 {
		restockOpts = jobs.DefaultRestockOptions()
	}
	reminderOpts := jobs.ReminderOptions{WindowDays: cfg.ReminderWindowDays}
	if reminderOpts.WindowDays <= 0 {
		reminderOpts = jobs.DefaultReminderOptions()
	}

	restockSink := a.openSink(cfg.RestockLog)
	reportSink := a.openSink(cfg.ReportLog)
	reminderSink := a.openSink(cfg.ReminderLog)
	heartbeatSink := a.openSink(cfg.HeartbeatLog)

	return map[string]func(){
		JobRestock: func() {
			jobs.Safely(JobRestock, restockSink, jobs.RestockTimeLayout, func() error {
				ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				defer cancel()
				_, err := jobs.RestockLowStock(ctx, a.store, restockSink, restockOpts)
				return err
			})
		},
		JobReport: func() {
			jobs.Safely(JobReport, reportSink, jobs.TimeLayout, func() error {
				ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				defer cancel()
				_, err := jobs.GenerateReport(ctx, a.store, reportSink)
				return err
			})
		},
		JobReminder: func() {
			jobs.Safely(JobReminder, reminderSink, jobs.TimeLayout, func() error {
				ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				defer cancel()
				_, err := jobs.ReminderScan(ctx, a.store, reminderSink, reminderOpts)
				return err
			})
		},
		JobHeartbeat: func() {
			jobs.Safely(JobHeartbeat, heartbeatSink, jobs.TimeLayout, func() error {
				return jobs.Heartbeat(heartbeatSink)
			})
		},
	}
}

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))
	a.jobs = a.buildJobs()

	cfg := a.appConfig.Jobs
	specs := map[string]string{
		JobRestock:   cfg.RestockCron,
		JobReport:    cfg.ReportCron,
		JobReminder:  cfg.ReminderCron,
		JobHeartbeat: cfg.HeartbeatCron,
	}
	for name, spec := range specs {
		if spec == "" {
			zap.S().Infof("job %s disabled", name)
			continue
		}
		if _, err := a.sched.AddFunc(spec, a.jobs[name]); err != nil {
			zap.S().Errorf("init job %s error %s", name, err.Error())
		}
	}

	a.sched.Start()
}

// RunJobNow runs a registered job synchronously
func (a *Application) RunJobNow(name string) error {
	if a.jobs == nil {
		a.jobs = a.buildJobs()
	}
	job, ok := a.jobs[name]
	if !ok {
		return errors.Errorf("unknown job %q", name)
	}
	job()
	return nil
}
