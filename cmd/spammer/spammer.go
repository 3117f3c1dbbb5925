package main

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/kafka"
)

type Spammer struct {
	writer    kafka.Writer
	logger    *zap.Logger
	batchSize int

	mu  sync.Mutex
	gen *generator

	isRunning atomic.Bool
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	totalSent atomic.Int64
	failed    atomic.Int64
	startedAt time.Time
}

type SpamRequest struct {
	Rate     int    `json:"rate"`
	Duration string `json:"duration"`
}

type SpamStats struct {
	IsRunning bool    `json:"is_running"`
	TotalSent int64   `json:"total_sent"`
	Failed    int64   `json:"failed"`
	Rate      float64 `json:"rate"`
}

func NewSpammer(writer kafka.Writer, gen *generator, batchSize int, logger *zap.Logger) *Spammer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Spammer{writer: writer, gen: gen, batchSize: batchSize, logger: logger}
}

// StartSpam sends rate batches per second until duration passes or StopSpam
// is called. It reports false when a run is already active.
func (s *Spammer) StartSpam(rate int, duration time.Duration) bool {
	if !s.isRunning.CompareAndSwap(false, true) {
		return false
	}
	s.totalSent.Store(0)
	s.failed.Store(0)
	s.startedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	s.cancel = cancel

	s.logger.Info("starting spam", zap.Int("rate", rate), zap.Duration("duration", duration), zap.Int("batch", s.batchSize))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.isRunning.Store(false)
		defer cancel()

		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.sendOne(ctx); err != nil {
					s.failed.Add(1)
					s.logger.Warn("send failed", zap.Error(err))
				} else {
					s.totalSent.Add(1)
				}
			case <-ctx.Done():
				s.logger.Info("spam finished", zap.Int64("sent", s.totalSent.Load()), zap.Int64("failed", s.failed.Load()))
				return
			}
		}
	}()
	return true
}

func (s *Spammer) sendOne(ctx context.Context) error {
	s.mu.Lock()
	subs := s.gen.batch(s.batchSize)
	s.mu.Unlock()

	b, err := json.Marshal(subs)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(subs[0].Key().String()),
		Value: b,
		Time:  time.Now(),
	})
}

func (s *Spammer) StopSpam() {
	if s.isRunning.Load() && s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Spammer) GetStats() SpamStats {
	st := SpamStats{
		IsRunning: s.isRunning.Load(),
		TotalSent: s.totalSent.Load(),
		Failed:    s.failed.Load(),
	}
	if el := time.Since(s.startedAt).Seconds(); !s.startedAt.IsZero() && el > 0 {
		st.Rate = float64(st.TotalSent) / el
	}
	return st
}

func (s *Spammer) Close() error {
	s.StopSpam()
	return s.writer.Close()
}
