package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	id "roster/pkg/domain"
	"roster/pkg/platform/sentinel"
)

// Store persists identities. Create and Update return sentinel.ErrConflict
// when the email is taken; lookups return sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, identity *Identity) error
	Update(ctx context.Context, identity *Identity) error
	Delete(ctx context.Context, userID id.UserID) error
	FindByID(ctx context.Context, userID id.UserID) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
}

const minPasswordLength = 8

// Provider creates, updates, deletes and verifies identities.
type Provider struct {
	store  Store
	cost   int
	clock  func() time.Time
	logger *slog.Logger
}

type Option func(*Provider)

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) {
		p.cost = cost
	}
}

func WithClock(clock func() time.Time) Option {
	return func(p *Provider) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

func NewProvider(store Store, opts ...Option) *Provider {
	p := &Provider{
		store:  store,
		cost:   bcrypt.DefaultCost,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateIdentity registers email with password. confirmed skips the
// confirmation step, which accounts created by administrators always do.
func (p *Provider) CreateIdentity(ctx context.Context, email, password string, confirmed bool) (id.UserID, error) {
	if len(password) < minPasswordLength {
		return id.UserID{}, newError(CodeWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return id.UserID{}, wrapError(err)
	}

	now := p.clock()
	identity := &Identity{
		ID:           id.NewUserID(),
		Email:        normalize(email),
		PasswordHash: hash,
		Confirmed:    confirmed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.Create(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return id.UserID{}, newError(CodeEmailExists)
		}
		return id.UserID{}, wrapError(err)
	}
	p.logger.InfoContext(ctx, "identity created", "user_id", identity.ID.String())
	return identity.ID, nil
}

// UpdateIdentity applies changes to an existing identity.
func (p *Provider) UpdateIdentity(ctx context.Context, userID id.UserID, changes Changes) error {
	if changes.Empty() {
		return nil
	}
	identity, err := p.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return newError(CodeUserNotFound)
		}
		return wrapError(err)
	}
	if changes.Email != nil {
		identity.Email = normalize(*changes.Email)
	}
	if changes.Password != nil {
		if len(*changes.Password) < minPasswordLength {
			return newError(CodeWeakPassword)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*changes.Password), p.cost)
		if err != nil {
			return wrapError(err)
		}
		identity.PasswordHash = hash
	}
	identity.UpdatedAt = p.clock()

	if err := p.store.Update(ctx, identity); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			return newError(CodeEmailExists)
		case errors.Is(err, sentinel.ErrNotFound):
			return newError(CodeUserNotFound)
		}
		return wrapError(err)
	}
	return nil
}

// DeleteIdentity removes an identity. Deleting a missing identity succeeds so
// compensation can be retried safely.
func (p *Provider) DeleteIdentity(ctx context.Context, userID id.UserID) error {
	if err := p.store.Delete(ctx, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return wrapError(err)
	}
	return nil
}

// FindIdentity returns the identity for userID.
func (p *Provider) FindIdentity(ctx context.Context, userID id.UserID) (*Identity, error) {
	identity, err := p.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, newError(CodeUserNotFound)
		}
		return nil, wrapError(err)
	}
	return identity, nil
}

// VerifyCredentials checks email and password. Unknown emails and wrong
// passwords fail identically.
func (p *Provider) VerifyCredentials(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := p.store.FindByEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, newError(CodeInvalidCredentials)
		}
		return nil, wrapError(err)
	}
	if bcrypt.CompareHashAndPassword(identity.PasswordHash, []byte(password)) != nil {
		return nil, newError(CodeInvalidCredentials)
	}
	if identity.Banned {
		return nil, newError(CodeUserBanned)
	}
	if !identity.Confirmed {
		return nil, newError(CodeEmailNotConfirmed)
	}
	return identity, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
