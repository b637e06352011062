package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultConfirmTTL is how long a delete confirmation token stays valid.
const DefaultConfirmTTL = 5 * time.Minute

// PublishTimeout bounds a single change event publish.
var PublishTimeout = 5 * time.Second

// Options tunes paging and confirmation behaviour.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	ConfirmTTL      time.Duration
}

// Dependencies are the collaborators a Service is built from. Records and
// Confirmations are required; the rest are optional.
type Dependencies struct {
	Registry      *Registry // defaults to the package registry
	Records       Repository
	Confirmations ConfirmationStore
	Audit         AuditStore
	Publisher     Publisher
	Permissions   PermissionChecker
	Limiter       *WriteLimiter
	Now           func() time.Time
}

// Service is the entry point for listing, create, edit and two-step delete
// of every registered entity.
type Service struct {
	registry      *Registry
	records       Repository
	confirmations ConfirmationStore
	audit         AuditStore
	publisher     Publisher
	permissions   PermissionChecker
	limiter       *WriteLimiter
	now           func() time.Time

	defaultPageSize int
	maxPageSize     int
	confirmTTL      time.Duration
}

// NewService creates a new Service instance.
func NewService(opts Options, deps Dependencies) (*Service, error) {
	if deps.Records == nil {
		return nil, errors.New("core: records repository is required")
	}
	if deps.Confirmations == nil {
		return nil, errors.New("core: confirmation store is required")
	}

	s := &Service{
		registry:        deps.Registry,
		records:         deps.Records,
		confirmations:   deps.Confirmations,
		audit:           deps.Audit,
		publisher:       deps.Publisher,
		permissions:     deps.Permissions,
		limiter:         deps.Limiter,
		now:             deps.Now,
		defaultPageSize: opts.DefaultPageSize,
		maxPageSize:     opts.MaxPageSize,
		confirmTTL:      opts.ConfirmTTL,
	}

	if s.registry == nil {
		s.registry = defaultRegistry
	}
	if s.limiter == nil {
		s.limiter = NewWriteLimiter(DefaultMaxConcurrentWrites, DefaultWriteWait)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.defaultPageSize <= 0 {
		s.defaultPageSize = 10
	}
	if s.maxPageSize < s.defaultPageSize {
		s.maxPageSize = max(100, s.defaultPageSize)
	}
	if s.confirmTTL <= 0 {
		s.confirmTTL = DefaultConfirmTTL
	}

	return s, nil
}

// Registry returns the registry the service serves.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Limiter returns the write limiter, for draining at shutdown.
func (s *Service) Limiter() *WriteLimiter {
	return s.limiter
}

// SetPermissions installs the checker used for column filtering. The
// permission editor is built after the service, which audits its saves.
func (s *Service) SetPermissions(p PermissionChecker) {
	s.permissions = p
}

// Publish sends a change event. Failures are logged; the change has
// already been committed.
func (s *Service) Publish(ctx context.Context, ev Event) {
	if s.publisher == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = s.now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish change event failed",
			"type", ev.Type,
			"entity", ev.Entity,
			"record_id", ev.RecordID,
			"error", err,
		)
	}
}

func (s *Service) entity(key string) (*EntityDefinition, error) {
	def, ok := s.registry.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, key)
	}
	return def, nil
}
