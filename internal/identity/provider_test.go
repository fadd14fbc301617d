package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"roster/internal/identity"
	"roster/internal/identity/store"
	id "roster/pkg/domain"
)

type ProviderSuite struct {
	suite.Suite
	store    *store.InMemory
	provider *identity.Provider
	ctx      context.Context
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

func (s *ProviderSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.provider = identity.NewProvider(s.store, identity.WithBcryptCost(bcrypt.MinCost))
	s.ctx = context.Background()
}

func (s *ProviderSuite) TestCreateIdentity() {
	s.Run("stores a hash, never the password", func() {
		uid, err := s.provider.CreateIdentity(s.ctx, " Ana@Example.com ", "Secr3t!pass", true)
		s.Require().NoError(err)

		got, err := s.store.FindByID(s.ctx, uid)
		s.Require().NoError(err)
		s.Equal("ana@example.com", got.Email)
		s.NotEqual("Secr3t!pass", string(got.PasswordHash))
		s.True(got.Confirmed)
	})

	s.Run("taken email is email_exists", func() {
		_, err := s.provider.CreateIdentity(s.ctx, "ANA@example.com", "Secr3t!pass", true)
		s.True(identity.HasCode(err, identity.CodeEmailExists))
		s.Equal("A user with this email address has already been registered", identity.MessageOf(err))
	})

	s.Run("short password is weak_password", func() {
		_, err := s.provider.CreateIdentity(s.ctx, "luis@example.com", "short", true)
		s.True(identity.HasCode(err, identity.CodeWeakPassword))
	})
}

func (s *ProviderSuite) TestVerifyCredentials() {
	confirmed, err := s.provider.CreateIdentity(s.ctx, "ana@example.com", "Secr3t!pass", true)
	s.Require().NoError(err)
	_, err = s.provider.CreateIdentity(s.ctx, "new@example.com", "Secr3t!pass", false)
	s.Require().NoError(err)

	s.Run("valid credentials", func() {
		got, err := s.provider.VerifyCredentials(s.ctx, "ANA@example.com", "Secr3t!pass")
		s.Require().NoError(err)
		s.Equal(confirmed, got.ID)
	})

	s.Run("wrong password and unknown email fail the same way", func() {
		_, err := s.provider.VerifyCredentials(s.ctx, "ana@example.com", "nope")
		s.True(identity.HasCode(err, identity.CodeInvalidCredentials))
		_, err = s.provider.VerifyCredentials(s.ctx, "ghost@example.com", "Secr3t!pass")
		s.True(identity.HasCode(err, identity.CodeInvalidCredentials))
		s.Equal("Invalid login credentials", identity.MessageOf(err))
	})

	s.Run("unconfirmed", func() {
		_, err := s.provider.VerifyCredentials(s.ctx, "new@example.com", "Secr3t!pass")
		s.True(identity.HasCode(err, identity.CodeEmailNotConfirmed))
	})

	s.Run("banned", func() {
		i, err := s.store.FindByID(s.ctx, confirmed)
		s.Require().NoError(err)
		i.Banned = true
		s.Require().NoError(s.store.Update(s.ctx, i))

		_, err = s.provider.VerifyCredentials(s.ctx, "ana@example.com", "Secr3t!pass")
		s.True(identity.HasCode(err, identity.CodeUserBanned))
	})
}

func (s *ProviderSuite) TestUpdateAndDelete() {
	uid, err := s.provider.CreateIdentity(s.ctx, "ana@example.com", "Secr3t!pass", true)
	s.Require().NoError(err)
	_, err = s.provider.CreateIdentity(s.ctx, "luis@example.com", "Secr3t!pass", true)
	s.Require().NoError(err)

	s.Run("email taken by another identity", func() {
		email := "luis@example.com"
		err := s.provider.UpdateIdentity(s.ctx, uid, identity.Changes{Email: &email})
		s.True(identity.HasCode(err, identity.CodeEmailExists))
	})

	s.Run("password change", func() {
		pw := "N3w!password"
		s.Require().NoError(s.provider.UpdateIdentity(s.ctx, uid, identity.Changes{Password: &pw}))
		_, err := s.provider.VerifyCredentials(s.ctx, "ana@example.com", pw)
		s.NoError(err)
	})

	s.Run("unknown identity", func() {
		email := "x@example.com"
		err := s.provider.UpdateIdentity(s.ctx, id.NewUserID(), identity.Changes{Email: &email})
		s.True(identity.HasCode(err, identity.CodeUserNotFound))
	})

	s.Run("delete is idempotent", func() {
		s.Require().NoError(s.provider.DeleteIdentity(s.ctx, uid))
		s.NoError(s.provider.DeleteIdentity(s.ctx, uid))
		_, err := s.provider.FindIdentity(s.ctx, uid)
		s.True(identity.HasCode(err, identity.CodeUserNotFound))
	})
}

func (s *ProviderSuite) TestUserMessage() {
	_, err := s.provider.CreateIdentity(s.ctx, "ana@example.com", "short", true)
	s.Equal("La contraseña debe tener al menos 8 caracteres.", identity.UserMessage(err))

	_, err = s.provider.VerifyCredentials(s.ctx, "nadie@example.com", "Secr3t!pass")
	s.Equal("Correo o contraseña incorrectos.", identity.UserMessage(err))

	s.Equal("Something new", identity.UserMessage(&identity.Error{Code: "other", Message: "Something new"}))
	s.Empty(identity.UserMessage(errors.New("dial tcp: connection refused")), "foreign errors are not shown")
}
