package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/sectxt/internal/config"
	"github.com/nao1215/sectxt/internal/document"
	"github.com/nao1215/sectxt/internal/fetch"
	"github.com/nao1215/sectxt/internal/field"
	"github.com/nao1215/sectxt/internal/keys"
	"github.com/nao1215/sectxt/internal/model"
	"github.com/nao1215/sectxt/internal/store"
)

// StdinSource is the source name that reads from standard input.
const StdinSource = "-"

// ReadStep loads the input file into run.Raw.
type ReadStep struct {
	stdin   io.Reader
	maxSize int64
}

// ReadStepOption configures a ReadStep.
type ReadStepOption func(*ReadStep)

// WithStdin sets the reader used for the "-" source.
func WithStdin(r io.Reader) ReadStepOption {
	return func(s *ReadStep) {
		s.stdin = r
	}
}

// WithMaxInputSize limits how many bytes are read.
func WithMaxInputSize(size int64) ReadStepOption {
	return func(s *ReadStep) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// NewReadStep creates a ReadStep reading stdin for "-".
func NewReadStep(opts ...ReadStepOption) *ReadStep {
	s := &ReadStep{
		stdin:   os.Stdin,
		maxSize: config.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return "read"
}

// Do reads the source. A clearsigned input is detected here so the
// report can say so even when validation fails later.
func (s *ReadStep) Do(_ context.Context, run *model.Run) error {
	var r io.Reader
	if run.Source == StdinSource {
		r = s.stdin
	} else {
		f, err := os.Open(filepath.Clean(run.Source))
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close() //nolint:errcheck // read-only file
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return fmt.Errorf("%w: %s is larger than %d bytes", ErrInputTooLarge, run.Source, s.maxSize)
	}

	run.Raw = data
	_, run.WasSigned = document.Unwrap(data)
	return nil
}

// ValidateStep validates and normalizes run.Raw into run.Result.
//
// Design decision: Every URL the document references is prefetched
// concurrently before the ordered pass, so a document with many https
// lines costs about one round trip instead of one per line. Offline runs
// skip the prefetch entirely.
type ValidateStep struct {
	fetcher     fetch.Fetcher
	key         *model.SigningKey
	maxAgeDays  int
	now         func() time.Time
	concurrency int
	logger      *slog.Logger
}

// ValidateStepOption configures a ValidateStep.
type ValidateStepOption func(*ValidateStep)

// WithSigningKey sets the key the document will be signed with. Its
// expiration bounds Expires and its fingerprint is cross-checked against
// Encryption fields.
func WithSigningKey(key *model.SigningKey) ValidateStepOption {
	return func(s *ValidateStep) {
		s.key = key
	}
}

// WithMaxAgeDays sets the maximum document lifetime.
func WithMaxAgeDays(days int) ValidateStepOption {
	return func(s *ValidateStep) {
		s.maxAgeDays = days
	}
}

// WithClock overrides the reference time.
func WithClock(now func() time.Time) ValidateStepOption {
	return func(s *ValidateStep) {
		s.now = now
	}
}

// WithFetchConcurrency sets how many URLs are fetched at once.
func WithFetchConcurrency(n int) ValidateStepOption {
	return func(s *ValidateStep) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithValidateLogger sets a custom logger.
func WithValidateLogger(logger *slog.Logger) ValidateStepOption {
	return func(s *ValidateStep) {
		s.logger = logger
	}
}

// NewValidateStep creates a ValidateStep. A nil fetcher means offline.
func NewValidateStep(fetcher fetch.Fetcher, opts ...ValidateStepOption) *ValidateStep {
	if fetcher == nil {
		fetcher = fetch.Offline{}
	}
	s := &ValidateStep{
		fetcher:     fetcher,
		maxAgeDays:  config.DefaultMaxAgeDays,
		now:         time.Now,
		concurrency: fetch.DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do runs the validator. A document without a valid Contact is recorded
// as the run's error and the step itself succeeds, so the run is still
// reported and stored.
func (s *ValidateStep) Do(ctx context.Context, run *model.Run) error {
	if run.Raw == nil {
		return ErrNoInput
	}

	fetcher := s.fetcher
	if _, offline := fetcher.(fetch.Offline); !offline {
		statusURLs, bodyURLs := document.URLs(run.Raw)
		// Key documents are only read to look for the signing key.
		if s.key == nil {
			bodyURLs = nil
		}
		cache, err := fetch.Prefetch(ctx, fetcher, statusURLs, bodyURLs,
			fetch.WithConcurrency(s.concurrency),
			fetch.WithPrefetchLogger(s.logger),
		)
		if err != nil {
			return fmt.Errorf("failed to fetch referenced URLs: %w", err)
		}
		fetcher = cache
	}

	cfg := document.Config{
		Now:        s.now(),
		MaxAgeDays: s.maxAgeDays,
		SigningKey: s.key,
	}
	result, err := document.ValidateAndFormat(ctx, run.Raw, cfg, field.Env{Fetcher: fetcher})
	if result != nil {
		run.Result = result
	}
	if errors.Is(err, document.ErrMissingContact) {
		s.logger.Warn("document rejected",
			"source", run.Source,
			"reason", err,
		)
		recordError(run, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s.logger.Debug("document validated",
		"source", run.Source,
		"lines_read", result.LinesRead,
		"lines_kept", result.LinesKept,
		"expires", result.Expires,
	)
	return nil
}

// ConfirmFunc is asked before signing. It returns false to decline.
type ConfirmFunc func(run *model.Run) (bool, error)

// ConfirmStep asks for approval of the canonical document.
type ConfirmStep struct {
	confirm ConfirmFunc
}

// NewConfirmStep creates a ConfirmStep. A nil confirm approves everything.
func NewConfirmStep(confirm ConfirmFunc) *ConfirmStep {
	return &ConfirmStep{confirm: confirm}
}

// Name returns the step name.
func (s *ConfirmStep) Name() string {
	return "confirm"
}

// Do asks for confirmation. Failed runs are skipped.
func (s *ConfirmStep) Do(_ context.Context, run *model.Run) error {
	if run.Failed() {
		return nil
	}
	if !hasDocument(run) {
		return ErrNothingToSign
	}
	if s.confirm == nil {
		return nil
	}
	ok, err := s.confirm(run)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// SignStep clear-signs the canonical document into run.Signed.
type SignStep struct {
	signer      *keys.Signer
	fingerprint string
	logger      *slog.Logger
}

// SignStepOption configures a SignStep.
type SignStepOption func(*SignStep)

// WithSignLogger sets a custom logger.
func WithSignLogger(logger *slog.Logger) SignStepOption {
	return func(s *SignStep) {
		s.logger = logger
	}
}

// NewSignStep creates a SignStep using the key with the given fingerprint.
func NewSignStep(signer *keys.Signer, fingerprint string, opts ...SignStepOption) *SignStep {
	s := &SignStep{
		signer:      signer,
		fingerprint: fingerprint,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SignStep) Name() string {
	return "sign"
}

// Do signs the document. Failed runs are skipped.
func (s *SignStep) Do(_ context.Context, run *model.Run) error {
	if run.Failed() {
		return nil
	}
	if !hasDocument(run) {
		return ErrNothingToSign
	}

	signed, err := s.signer.ClearSign([]byte(run.Result.Document), s.fingerprint)
	if err != nil {
		return fmt.Errorf("signing failed: %w", err)
	}
	run.Signed = signed

	s.logger.Debug("document signed",
		"source", run.Source,
		"fingerprint", s.fingerprint,
	)
	return nil
}

// WriteStep writes the signed document, or the canonical one when nothing
// was signed, to a file or to stdout.
type WriteStep struct {
	path   string
	stdout io.Writer
}

// WriteStepOption configures a WriteStep.
type WriteStepOption func(*WriteStep)

// WithStdout sets the writer used for the "-" path.
func WithStdout(w io.Writer) WriteStepOption {
	return func(s *WriteStep) {
		s.stdout = w
	}
}

// NewWriteStep creates a WriteStep. An empty path writes next to the
// input, replacing it; "-" writes to stdout.
func NewWriteStep(path string, opts ...WriteStepOption) *WriteStep {
	s := &WriteStep{
		path:   path,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do writes the output. Failed runs are skipped so that nothing is ever
// written for a rejected document.
func (s *WriteStep) Do(_ context.Context, run *model.Run) error {
	if run.Failed() {
		return nil
	}
	if !hasDocument(run) {
		return ErrNothingToSign
	}

	data := run.Signed
	if len(data) == 0 {
		data = []byte(run.Result.Document)
	}

	path := s.path
	if path == "" {
		path = run.Source
	}
	if path == StdinSource {
		if _, err := s.stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic replaces path through a temporary file in the same
// directory so an interrupted write never leaves a truncated file.
func writeFileAtomic(path string, data []byte) error {
	path = filepath.Clean(path)
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sectxt-*")
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // the write error is reported
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // security.txt is public
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace output: %w", err)
	}
	return nil
}

// PersistStep stores the run in the history database.
type PersistStep struct {
	db     *store.HistoryDB
	logger *slog.Logger
}

// NewPersistStep creates a PersistStep.
func NewPersistStep(db *store.HistoryDB, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{db: db, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves the run, failed or not. History is a convenience, so a
// storage failure is logged and does not fail the run.
func (s *PersistStep) Do(ctx context.Context, run *model.Run) error {
	if err := s.db.SaveRun(ctx, run); err != nil {
		s.logger.Warn("failed to save run to history",
			"source", run.Source,
			"error", err,
		)
		return nil
	}
	s.logger.Debug("run saved", "source", run.Source, "id", run.ID)
	return nil
}

func hasDocument(run *model.Run) bool {
	return run.Result != nil && run.Result.Document != ""
}
