// Package bootstrap prepares an empty roster: the reference places and the
// first SUPER account, which no other account could create.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"roster/internal/identity"
	"roster/internal/roster/models"
	"roster/internal/roster/store/profile"
	id "roster/pkg/domain"
)

// DefaultPlace is created when a SUPER account is seeded into a roster with
// no places.
const DefaultPlace = "Sede central"

type PlaceStore interface {
	List(ctx context.Context) ([]models.Place, error)
	Create(ctx context.Context, name string) (*models.Place, error)
}

type ProfileStore interface {
	List(ctx context.Context, f profile.Filter) ([]models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
}

type RoleStore interface {
	FindByCode(ctx context.Context, code models.RoleCode) (*models.Role, error)
}

type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string, confirmed bool) (id.UserID, error)
	DeleteIdentity(ctx context.Context, userID id.UserID) error
}

// Super describes the seeded SUPER account.
type Super struct {
	Email    string
	Password string
}

type Seeder struct {
	places     PlaceStore
	profiles   ProfileStore
	roles      RoleStore
	identities IdentityProvider
	logger     *slog.Logger
	clock      func() time.Time
}

func NewSeeder(places PlaceStore, profiles ProfileStore, roles RoleStore, identities IdentityProvider, logger *slog.Logger) *Seeder {
	return &Seeder{
		places:     places,
		profiles:   profiles,
		roles:      roles,
		identities: identities,
		logger:     logger,
		clock:      time.Now,
	}
}

// Places creates names when no place exists yet.
func (s *Seeder) Places(ctx context.Context, names []string) error {
	existing, err := s.places.List(ctx)
	if err != nil {
		return fmt.Errorf("list places: %w", err)
	}
	if len(existing) > 0 || len(names) == 0 {
		return nil
	}
	for _, name := range names {
		if _, err := s.places.Create(ctx, name); err != nil {
			return fmt.Errorf("create place %q: %w", name, err)
		}
	}
	s.logger.InfoContext(ctx, "seeded places", "count", len(names))
	return nil
}

// Super creates the SUPER account unless one already exists. An empty email
// or password skips seeding.
func (s *Seeder) Super(ctx context.Context, super Super) error {
	if super.Email == "" || super.Password == "" {
		return nil
	}
	email, err := models.NormalizeEmail(super.Email)
	if err != nil {
		return fmt.Errorf("seed email: %w", err)
	}
	if err := models.ValidatePassword(super.Password); err != nil {
		return fmt.Errorf("seed password: %w", err)
	}

	role, err := s.roles.FindByCode(ctx, models.RoleSuper)
	if err != nil {
		return fmt.Errorf("find SUPER role: %w", err)
	}
	supers, err := s.profiles.List(ctx, profile.Filter{RoleID: &role.ID})
	if err != nil {
		return fmt.Errorf("list SUPER profiles: %w", err)
	}
	if len(supers) > 0 {
		return nil
	}

	placeID, err := s.placeFor(ctx)
	if err != nil {
		return err
	}

	userID, err := s.identities.CreateIdentity(ctx, email, super.Password, true)
	if err != nil {
		if identity.HasCode(err, identity.CodeEmailExists) {
			return fmt.Errorf("seed identity %s exists without a SUPER profile", email)
		}
		return fmt.Errorf("create SUPER identity: %w", err)
	}

	now := s.clock()
	p := &models.Profile{
		ID:          userID,
		Email:       email,
		GivenNames:  "Super",
		FamilyNames: "Administrador",
		Phone:       "00000000",
		DPI:         "0000000000000",
		BirthDate:   time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		Sex:         models.SexMale,
		RoleID:      role.ID,
		PlaceID:     placeID,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if delErr := s.identities.DeleteIdentity(ctx, userID); delErr != nil {
			return errors.Join(fmt.Errorf("create SUPER profile: %w", err), fmt.Errorf("remove SUPER identity %s: %w", userID, delErr))
		}
		return fmt.Errorf("create SUPER profile: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded SUPER account", "user_id", userID.String())
	return nil
}

func (s *Seeder) placeFor(ctx context.Context) (id.PlaceID, error) {
	places, err := s.places.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list places: %w", err)
	}
	if len(places) > 0 {
		return places[0].ID, nil
	}
	p, err := s.places.Create(ctx, DefaultPlace)
	if err != nil {
		return 0, fmt.Errorf("create place: %w", err)
	}
	return p.ID, nil
}
