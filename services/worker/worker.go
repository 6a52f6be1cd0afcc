package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sjsage522/discountcrawler/internal/crawler"
	"sjsage522/discountcrawler/logger"
	"sjsage522/discountcrawler/services/publisher"
	"sjsage522/discountcrawler/services/storage"

	"github.com/google/uuid"
)

// Worker runs the scraper for one location and delivers the result
type Worker struct {
	ctx       context.Context
	registry  *crawler.Registry
	location  string
	sinks     []storage.Sink
	publisher publisher.Publisher
	interval  time.Duration
	log       *logger.Logger
}

// NewWorker creates a new worker. pub may be nil; interval 0 runs once.
func NewWorker(
	ctx context.Context,
	registry *crawler.Registry,
	location string,
	sinks []storage.Sink,
	pub publisher.Publisher,
	interval time.Duration,
) *Worker {
	return &Worker{
		ctx:       ctx,
		registry:  registry,
		location:  location,
		sinks:     sinks,
		publisher: pub,
		interval:  interval,
		log:       logger.ForComponent("worker"),
	}
}

// Start runs once, or repeatedly every interval until the context is done.
// In one-shot mode the run's error is returned; in interval mode errors are
// logged and the loop continues.
func (w *Worker) Start() error {
	for {
		start := time.Now()
		run, records, err := w.RunOnce()
		event := w.log.Info()
		if err != nil {
			event = w.log.Error().Err(err)
		}
		event.
			Str("run_id", run.ID).
			Str("location", w.location).
			Int("records", len(records)).
			Dur("elapsed", time.Since(start)).
			Msg("Run finished")

		if w.interval <= 0 {
			return err
		}

		select {
		case <-w.ctx.Done():
			return nil
		case <-time.After(w.interval):
		}
	}
}

// RunOnce scrapes the location, writes every sink and publishes each record
func (w *Worker) RunOnce() (storage.Run, []crawler.DiscountRecord, error) {
	run := storage.Run{
		ID:        uuid.NewString(),
		Location:  w.location,
		StartedAt: time.Now().UTC(),
	}

	records, err := w.registry.ScrapeLocation(w.ctx, w.location)
	if err != nil {
		return run, records, err
	}

	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Write(w.ctx, run, records); err != nil {
			errs = append(errs, err)
		}
	}

	w.publish(run, records)
	return run, records, errors.Join(errs...)
}

// publish sends each record to the stream and trims afterwards. Publishing
// failures never fail the run.
func (w *Worker) publish(run storage.Run, records []crawler.DiscountRecord) {
	if w.publisher == nil || len(records) == 0 {
		return
	}

	for i, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			logger.LogError("worker", err, "Failed to encode %s", record.Title)
			continue
		}

		if i == 0 && logger.IsDebugEnabled() {
			w.log.Debug().RawJSON("record", data).Msg("Publishing sample record")
		}

		msg := publisher.Message{RunID: run.ID, Site: record.Store, Payload: data}
		if err := w.publisher.Publish(msg); err != nil {
			logger.LogError("worker", err, "Failed to publish %s", record.Title)
		}
	}

	if err := w.publisher.TrimStreams(); err != nil {
		logger.LogError("worker", err, "Stream trimming failed")
	}
}
