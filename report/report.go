// Package report appends cycle reports to daily files in the data directory.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lthibault/log"

	"github.com/blocknative/opkeys/monitor"
)

var (
	fileIdleTime   = 10 * time.Minute
	filesPruneTick = time.Minute
	ErrClosed      = errors.New("closed")
)

type storeRequest struct {
	id   string
	day  string
	data []byte
	err  chan error
}

func (req storeRequest) Loggable() map[string]any {
	return map[string]any{
		"id": req.id,
	}
}

// Exporter writes reports with a single worker that owns all files.
type Exporter struct {
	logger   log.Logger
	datadir  string
	requests chan storeRequest

	shutdown  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	m ExporterMetrics
}

func NewExporter(logger log.Logger, datadir string) *Exporter {
	e := &Exporter{
		logger:   logger,
		datadir:  datadir,
		requests: make(chan storeRequest), // unbuffered, requests are accepted only by a running worker
		shutdown: make(chan struct{}),
	}
	e.initMetrics()
	return e
}

// Run handles requests until ctx is done or the exporter is closed.
func (e *Exporter) Run(ctx context.Context) error {
	if err := os.MkdirAll(e.datadir, 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		e.logger.Info("report exporter started")
		defer e.logger.Info("report exporter stopped")

		w := newWorker(e.datadir, e.logger)
		defer w.closeAllFiles()

		ticker := time.NewTicker(filesPruneTick)
		defer ticker.Stop()
		for {
			select {
			case req := <-e.requests:
				req.err <- e.handleRequest(w, req)
			case <-ticker.C:
				w.closeIdleFiles()
			case <-ctx.Done():
				return
			case <-e.shutdown:
				return
			}
		}
	}()
	return nil
}

func (e *Exporter) handleRequest(w *worker, req storeRequest) error {
	file, err := w.getOrCreateFile(req.day)
	if err != nil {
		e.m.FailedWrites.Inc()
		e.logger.WithError(err).With(req).Error("failed to get/create file")
		return err
	}

	if err = writeLine(file, req); err != nil {
		e.m.FailedWrites.Inc()
		e.logger.WithError(err).With(req).Error("failed to write")

		_, _ = file.Write([]byte("\n"))
		w.closeFile(req.day)
		return err
	}

	e.m.Writes.Inc()
	return nil
}

// Close stops the worker and waits for it to close its files.
func (e *Exporter) Close() {
	e.closeOnce.Do(func() { close(e.shutdown) })
	e.wg.Wait()
}

// Store appends r as a `<id>;<json>` line and waits until it is written.
func (e *Exporter) Store(ctx context.Context, r *monitor.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	req := storeRequest{
		id:   r.ID.String(),
		day:  r.Started.UTC().Format("2006-01-02"),
		data: data,
		err:  make(chan error, 1),
	}

	select {
	case <-e.shutdown:
		return ErrClosed
	default:
	}

	select {
	case e.requests <- req:
	case <-e.shutdown:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.err:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeLine(file *os.File, req storeRequest) error {
	line := make([]byte, 0, len(req.id)+len(req.data)+2)
	line = append(line, req.id...)
	line = append(line, ';')
	line = append(line, req.data...)
	line = append(line, '\n')

	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("failed to write report line: %w", err)
	}
	return nil
}

type fileWithTimestamp struct {
	*os.File
	ts time.Time
}

type worker struct {
	datadir string
	files   map[string]fileWithTimestamp

	logger log.Logger
}

func newWorker(datadir string, logger log.Logger) *worker {
	return &worker{datadir: datadir, files: make(map[string]fileWithTimestamp), logger: logger}
}

func filename(datadir, day string) string {
	return filepath.Join(datadir, fmt.Sprintf("report_%s.jsonl", day))
}

func (w *worker) getOrCreateFile(day string) (*os.File, error) {
	if f, ok := w.files[day]; ok {
		f.ts = time.Now()
		w.files[day] = f
		return f.File, nil
	}

	file, err := os.OpenFile(filename(w.datadir, day), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	w.files[day] = fileWithTimestamp{File: file, ts: time.Now()}
	return file, nil
}

func (w *worker) closeIdleFiles() {
	for day, f := range w.files {
		if time.Since(f.ts) > fileIdleTime {
			w.closeFile(day)
		}
	}
}

func (w *worker) closeAllFiles() {
	for day := range w.files {
		w.closeFile(day)
	}
}

func (w *worker) closeFile(day string) {
	f, ok := w.files[day]
	if !ok {
		return
	}
	delete(w.files, day)

	if err := f.Close(); err != nil {
		w.logger.WithError(err).WithField("filename", f.Name()).Error("failed to close file")
	}
}
