package ingress

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dreamware/graphlab-go/internal/client"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// defaultBufferLines caps how many lines the reader goroutine accumulates
// before handing a buffer to a worker.
const defaultBufferLines = 500_000

// defaultWorkers is the fixed worker-pool size.
const defaultWorkers = 4

// Config controls one LoadFile call.
type Config struct {
	// Format selects the line parser: "snap", "tsv", or "adj".
	Format string
	// Workers bounds how many line buffers are parsed concurrently.
	// Zero uses defaultWorkers.
	Workers int64
	// BufferLines caps lines per buffer handed to a worker. Zero uses
	// defaultBufferLines.
	BufferLines int
	// Gzip decompresses the input stream before line-splitting.
	Gzip bool
}

func (c Config) workers() int64 {
	if c.Workers > 0 {
		return c.Workers
	}
	return defaultWorkers
}

func (c Config) bufferLines() int {
	if c.BufferLines > 0 {
		return c.BufferLines
	}
	return defaultBufferLines
}

// Stats summarizes one LoadFile run.
type Stats struct {
	LinesRead   int64
	EdgesAdded  int64
	ParseErrors int64
}

// Loader drives the reader-goroutine / worker-pool pipeline, flushing each
// worker's parsed batch through a client.Client.
type Loader struct {
	Client *client.Client
	Logger *zap.SugaredLogger
}

// NewLoader builds a Loader. A nil logger installs zap.NewNop().
func NewLoader(c *client.Client, logger *zap.SugaredLogger) *Loader {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Loader{Client: c, Logger: logger}
}

// LoadFile reads path, optionally gzip-decompressing, parses every line
// with cfg.Format's parser, and flushes parsed edges through the Loader's
// Client in buffer-sized batches. Per-line parse errors are counted and
// logged, never fatal; only file-open/decompression setup failures return
// an error.
func (l *Loader) LoadFile(ctx context.Context, path string, cfg Config) (Stats, error) {
	parser, ok := ParserByName(cfg.Format)
	if !ok {
		return Stats{}, errors.Errorf("ingress: unknown format %q", cfg.Format)
	}

	f, err := os.Open(path)
	if err != nil {
		return Stats{}, errors.Wrap(err, "ingress: opening input file")
	}
	defer f.Close()

	var r io.Reader = f
	if cfg.Gzip {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Stats{}, errors.Wrap(err, "ingress: opening gzip stream")
		}
		defer gz.Close()
		r = gz
	}

	sem := semaphore.NewWeighted(cfg.workers())
	var wg sync.WaitGroup
	var stats Stats
	var firstErr error
	var mu sync.Mutex

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	buf := make([]string, 0, cfg.bufferLines())
	flush := func(lines []string) {
		if len(lines) == 0 {
			return
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		wg.Add(1)
		go func(lines []string) {
			defer wg.Done()
			defer sem.Release(1)
			parsed, parseErrs := l.parseBuffer(parser, lines)
			atomic.AddInt64(&stats.LinesRead, int64(len(lines)))
			atomic.AddInt64(&stats.ParseErrors, parseErrs)
			if len(parsed) == 0 {
				return
			}
			results, err := l.Client.AddEdges(ctx, parsed)
			if err != nil {
				l.Logger.Errorw("batch add_edges failed", "path", path, "error", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			var added int64
			for _, res := range results {
				if res.Err != nil {
					l.Logger.Warnw("edge insert rejected", "path", path, "error", res.Err)
					continue
				}
				added++
			}
			atomic.AddInt64(&stats.EdgesAdded, added)
		}(lines)
	}

	for scanner.Scan() {
		buf = append(buf, scanner.Text())
		if len(buf) >= cfg.bufferLines() {
			flush(buf)
			buf = make([]string, 0, cfg.bufferLines())
		}
	}
	flush(buf)
	if err := scanner.Err(); err != nil {
		return stats, errors.Wrap(err, "ingress: reading input file")
	}

	wg.Wait()
	if firstErr != nil {
		return stats, firstErr
	}
	return stats, nil
}

func (l *Loader) parseBuffer(parser Parser, lines []string) ([]client.EdgeInsert, int64) {
	var inserts []client.EdgeInsert
	var parseErrs int64
	for _, line := range lines {
		edges, err := parser(line)
		if err != nil {
			parseErrs++
			l.Logger.Warnw("line parse error", "line", line, "error", err)
			continue
		}
		for _, e := range edges {
			inserts = append(inserts, client.EdgeInsert{Src: e.Src, Dst: e.Dst})
		}
	}
	return inserts, parseErrs
}
