package cron

import (
	"Prism/internal/api/config"
	"Prism/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine         *cron.Cron
	checksumJob    *job.ChecksumBackfillJob
	captionJob     *job.CaptionBackfillJob
	translationJob *job.TranslationBackfillJob
}

func NewCronManager(
	checksumJob *job.ChecksumBackfillJob,
	captionJob *job.CaptionBackfillJob,
	translationJob *job.TranslationBackfillJob,
) *Manager {
	return &Manager{
		engine:         cron.New(cron.WithSeconds()),
		checksumJob:    checksumJob,
		captionJob:     captionJob,
		translationJob: translationJob,
	}
}

// RegisterJobs 注册定时任务，三个回填任务共用同一调度表达式
func (s *Manager) RegisterJobs() error {
	schedule := config.Cfg.Jobs.Schedule

	if _, err := s.engine.AddJob(schedule, s.checksumJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(schedule, s.captionJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(schedule, s.translationJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
