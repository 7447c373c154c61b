package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// TopicWriter commits a finished topic and returns the id the store assigned.
type TopicWriter interface {
	Put(ctx context.Context, name, description string) (string, error)
}

// SourceReadError is returned when the line source fails mid-import.
type SourceReadError struct {
	Line int
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read manual after line %d: %v", e.Line, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// StoreWriteError is returned when the store rejects a topic.
type StoreWriteError struct {
	Topic string
	Line  int
	Err   error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("store topic %q (line %d): %v", e.Topic, e.Line, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// Result summarises one import run.
type Result struct {
	Lines  int
	Topics int
}

type Option func(*Ingestor)

// WithHeaderPolicy replaces the default word-count heuristic.
func WithHeaderPolicy(p HeaderPolicy) Option {
	return func(in *Ingestor) { in.policy = p }
}

// WithEcho copies every line read to w.
func WithEcho(w io.Writer) Option {
	return func(in *Ingestor) { in.echo = w }
}

// Ingestor drives a Segmenter over a single text source and writes each
// finished topic to the store as soon as it is complete.
type Ingestor struct {
	store  TopicWriter
	policy HeaderPolicy
	echo   io.Writer
}

func NewIngestor(store TopicWriter, opts ...Option) *Ingestor {
	in := &Ingestor{
		store:  store,
		policy: MaxWordsPolicy(DefaultMaxHeaderWords),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ingest reads r to the end. The first read or store failure aborts the run;
// topics committed before it stay committed and the pending one is dropped.
func (in *Ingestor) Ingest(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	seg := NewSegmenter(in.policy)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			slog.Error("[Importer] Failed reading manual",
				slog.Int("line", res.Lines),
				slog.String("error", err.Error()))
			return res, &SourceReadError{Line: res.Lines, Err: err}
		}
		if line == "" && err != nil {
			break
		}

		line = trimEOL(line)
		res.Lines++
		if in.echo != nil {
			fmt.Fprintln(in.echo, line)
		}

		if sec, ok := seg.Classify(line); ok {
			if werr := in.commit(ctx, sec, res.Lines); werr != nil {
				return res, werr
			}
			res.Topics++
		}
		if err != nil {
			break
		}
	}

	if sec, ok := seg.Flush(); ok {
		if err := in.commit(ctx, sec, res.Lines); err != nil {
			return res, err
		}
		res.Topics++
	}

	slog.Info("[Importer] Import finished",
		slog.Int("lines", res.Lines),
		slog.Int("topics", res.Topics))
	return res, nil
}

// trimEOL drops a trailing "\n" or "\r\n".
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func (in *Ingestor) commit(ctx context.Context, sec Section, line int) error {
	id, err := in.store.Put(ctx, sec.Name, sec.Description)
	if err != nil {
		slog.Error("[Importer] Failed to store topic",
			slog.String("topic", sec.Name),
			slog.String("error", err.Error()))
		return &StoreWriteError{Topic: sec.Name, Line: line, Err: err}
	}
	slog.Debug("[Importer] Stored topic",
		slog.String("id", id),
		slog.String("topic", sec.Name),
		slog.Int("description_len", len(sec.Description)))
	return nil
}
