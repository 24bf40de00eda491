// Package loader fetches one index document and turns it into the frame list the
// gallery works on.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"indexo/pkg/models"
)

// ErrNoIndexSpecified is returned when no id is given and no default may be used
var ErrNoIndexSpecified = errors.New("no index file specified")

// ErrLoadFailed is matched by every *LoadError
var ErrLoadFailed = errors.New("failed to load index")

// LoadError carries the reason a fetch did not produce a document
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", ErrLoadFailed.Error(), e.Reason)
}

func (e *LoadError) Unwrap() error {
	return ErrLoadFailed
}

// MissingIDPolicy decides what Load does without an id
type MissingIDPolicy string

const (
	MissingIDError       MissingIDPolicy = "error"
	MissingIDLoadDefault MissingIDPolicy = "loadDefault"
)

// ParseMissingIDPolicy accepts the configured spelling of a policy
func ParseMissingIDPolicy(s string) (MissingIDPolicy, bool) {
	switch strings.TrimSpace(s) {
	case "", string(MissingIDError):
		return MissingIDError, true
	case string(MissingIDLoadDefault):
		return MissingIDLoadDefault, true
	}
	return "", false
}

// FetchResult is what a Fetcher returns for one id. Frames holds the raw
// document payload in any shape ParseIndexData accepts.
type FetchResult struct {
	Success bool
	Frames  []byte
	Error   string
}

// Fetcher retrieves a document by id. A returned error means transport failure;
// a document that does not exist comes back with Success false.
type Fetcher interface {
	FetchIndexDocument(ctx context.Context, id string) (FetchResult, error)
}

// Options configure a Loader
type Options struct {
	OnMissingID MissingIDPolicy
	DefaultPath string
}

type Loader struct {
	fetcher Fetcher
	opts    Options
	log     *zap.Logger
}

func New(fetcher Fetcher, opts Options, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.OnMissingID == "" {
		opts.OnMissingID = MissingIDError
	}
	return &Loader{fetcher: fetcher, opts: opts, log: log}
}

// Load returns the frames of the document with the given id. A payload that
// cannot be parsed yields an empty frame list and no error.
func (l *Loader) Load(ctx context.Context, id string) ([]models.Frame, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return l.loadDefault()
	}

	res, err := l.fetcher.FetchIndexDocument(ctx, id)
	if err != nil {
		l.log.Warn("Index fetch failed", zap.String("id", id), zap.Error(err))
		return nil, &LoadError{Reason: err.Error()}
	}
	if !res.Success {
		reason := res.Error
		if reason == "" {
			reason = "unknown error"
		}
		return nil, &LoadError{Reason: reason}
	}

	return l.frames(id, res.Frames), nil
}

func (l *Loader) loadDefault() ([]models.Frame, error) {
	if l.opts.OnMissingID != MissingIDLoadDefault {
		return nil, ErrNoIndexSpecified
	}
	if l.opts.DefaultPath == "" {
		return nil, &LoadError{Reason: "no default index configured"}
	}

	data, err := os.ReadFile(l.opts.DefaultPath)
	if err != nil {
		return nil, &LoadError{Reason: err.Error()}
	}
	return l.frames(l.opts.DefaultPath, data), nil
}

func (l *Loader) frames(source string, payload []byte) []models.Frame {
	doc, err := models.ParseIndexData(payload)
	if err != nil {
		l.log.Debug("Index payload could not be parsed", zap.String("source", source), zap.Error(err))
		return []models.Frame{}
	}
	return doc.Frames
}
