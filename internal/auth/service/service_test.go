package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks IdentityProvider,ProfileStore,RoleStore,TokenIssuer,RevocationList,AuditPublisher,Lockout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"roster/internal/auth/metrics"
	"roster/internal/auth/service/mocks"
	"roster/internal/identity"
	jwttoken "roster/internal/jwt_token"
	"roster/internal/roster/models"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/audit"
	"roster/pkg/platform/sentinel"
	"roster/pkg/requestcontext"
)

var testNow = time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)

type AuthServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	identities *mocks.MockIdentityProvider
	profiles   *mocks.MockProfileStore
	roles      *mocks.MockRoleStore
	tokens     *mocks.MockTokenIssuer
	trl        *mocks.MockRevocationList
	audit      *mocks.MockAuditPublisher
	metrics    *metrics.Metrics
	service    *Service
	ctx        context.Context

	userID id.UserID
	ident  *identity.Identity
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.identities = mocks.NewMockIdentityProvider(s.ctrl)
	s.profiles = mocks.NewMockProfileStore(s.ctrl)
	s.roles = mocks.NewMockRoleStore(s.ctrl)
	s.tokens = mocks.NewMockTokenIssuer(s.ctrl)
	s.trl = mocks.NewMockRevocationList(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.service = New(s.identities, s.profiles, s.roles, s.tokens, s.trl,
		WithAuditPublisher(s.audit),
		WithMetrics(s.metrics),
	)
	s.ctx = requestcontext.WithTime(context.Background(), testNow)

	s.userID = id.NewUserID()
	s.ident = &identity.Identity{ID: s.userID, Email: "lider@example.com", Confirmed: true}
}

func (s *AuthServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthServiceSuite) activeProfile() *models.Profile {
	return &models.Profile{ID: s.userID, GivenNames: "Luis", FamilyNames: "Perez", RoleID: 3, Active: true}
}

var leaderRole = &models.Role{ID: 3, Code: models.RoleLeader, Name: "Líder"}

func (s *AuthServiceSuite) expectAuditAction(action audit.AuditEvent) {
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		s.Equal(string(action), e.Action)
		return nil
	})
}

func (s *AuthServiceSuite) TestSignIn() {
	s.Run("issues a token for an active profile", func() {
		s.identities.EXPECT().VerifyCredentials(gomock.Any(), "lider@example.com", "Secr3t!pass").Return(s.ident, nil)
		s.profiles.EXPECT().FindByID(gomock.Any(), s.userID).Return(s.activeProfile(), nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
		s.tokens.EXPECT().GenerateAccessToken(s.userID, "lider@example.com").
			Return(&jwttoken.IssuedToken{Token: "signed", JTI: "jti-1", ExpiresAt: testNow.Add(time.Hour)}, nil)
		s.expectAuditAction(audit.EventSignedIn)

		res, err := s.service.SignIn(s.ctx, SignInRequest{Email: " Lider@Example.com ", Password: "Secr3t!pass"})
		s.Require().NoError(err)
		s.Equal("signed", res.AccessToken)
		s.Equal("Bearer", res.TokenType)
		s.Equal(models.RoleLeader, res.Actor.RoleCode)
		s.Equal("Luis Perez", res.Actor.Name)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SignIns.WithLabelValues("success")))
	})

	s.Run("missing fields", func() {
		_, err := s.service.SignIn(s.ctx, SignInRequest{Email: "lider@example.com"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *AuthServiceSuite) TestSignInTranslatesProviderMessages() {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"bad credentials", &identity.Error{Code: identity.CodeInvalidCredentials, Message: "Invalid login credentials"}, "Correo o contraseña incorrectos."},
		{"unconfirmed", &identity.Error{Code: identity.CodeEmailNotConfirmed, Message: "Email not confirmed"}, "Debe confirmar su correo antes de iniciar sesión."},
		{"banned", &identity.Error{Code: identity.CodeUserBanned, Message: "User is banned"}, "Este usuario ha sido suspendido."},
		{"unmapped passes through", &identity.Error{Code: identity.CodeWeakPassword, Message: "Something new"}, "Something new"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)
			s.expectAuditAction(audit.EventSignInFailed)
			s.tokens.EXPECT().GenerateAccessToken(gomock.Any(), gomock.Any()).Times(0)

			_, err := s.service.SignIn(s.ctx, SignInRequest{Email: "x@example.com", Password: "nope"})
			de, ok := dErrors.As(err)
			s.Require().True(ok)
			s.Equal(dErrors.CodeUnauthorized, de.Code)
			s.Equal(tc.want, de.Message)
		})
	}
}

func (s *AuthServiceSuite) TestSignInLockout() {
	lock := mocks.NewMockLockout(s.ctrl)
	svc := New(s.identities, s.profiles, s.roles, s.tokens, s.trl,
		WithAuditPublisher(s.audit),
		WithMetrics(s.metrics),
		WithLockout(lock),
	)
	ctx := requestcontext.WithClientIP(s.ctx, "10.0.0.1")

	s.Run("locked subjects never reach the provider", func() {
		lock.EXPECT().Check(gomock.Any(), "lider@example.com", "10.0.0.1").
			Return(dErrors.New(dErrors.CodeRateLimited, "locked"))
		s.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		s.expectAuditAction(audit.EventSignInFailed)

		_, err := svc.SignIn(ctx, SignInRequest{Email: "lider@example.com", Password: "nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SignIns.WithLabelValues("locked")))
	})

	s.Run("bad credentials are counted", func() {
		lock.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &identity.Error{Code: identity.CodeInvalidCredentials, Message: "Invalid login credentials"})
		s.expectAuditAction(audit.EventSignInFailed)
		lock.EXPECT().RecordFailure(gomock.Any(), "lider@example.com", "10.0.0.1").Return(nil)

		_, err := svc.SignIn(ctx, SignInRequest{Email: "lider@example.com", Password: "nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("success clears the counter", func() {
		lock.EXPECT().Check(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		s.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(s.ident, nil)
		lock.EXPECT().Clear(gomock.Any(), "lider@example.com", "10.0.0.1").Return(errors.New("redis down"))
		s.profiles.EXPECT().FindByID(gomock.Any(), s.userID).Return(s.activeProfile(), nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)
		s.tokens.EXPECT().GenerateAccessToken(gomock.Any(), gomock.Any()).
			Return(&jwttoken.IssuedToken{Token: "signed", ExpiresAt: testNow.Add(time.Hour)}, nil)
		s.expectAuditAction(audit.EventSignedIn)

		_, err := svc.SignIn(ctx, SignInRequest{Email: "lider@example.com", Password: "Secr3t!pass"})
		s.NoError(err, "a failed clear does not block sign-in")
	})
}

func (s *AuthServiceSuite) TestSignInProfileChecks() {
	s.Run("deactivated profile", func() {
		inactive := s.activeProfile()
		inactive.Active = false
		s.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(s.ident, nil)
		s.profiles.EXPECT().FindByID(gomock.Any(), s.userID).Return(inactive, nil)
		s.expectAuditAction(audit.EventSignInFailed)
		s.tokens.EXPECT().GenerateAccessToken(gomock.Any(), gomock.Any()).Times(0)

		_, err := s.service.SignIn(s.ctx, SignInRequest{Email: "lider@example.com", Password: "Secr3t!pass"})
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(MsgAccountDisabled, de.Message)
	})

	s.Run("profile read failure", func() {
		s.identities.EXPECT().VerifyCredentials(gomock.Any(), gomock.Any(), gomock.Any()).Return(s.ident, nil)
		s.profiles.EXPECT().FindByID(gomock.Any(), s.userID).Return(nil, errors.New("db down"))
		s.expectAuditAction(audit.EventSignInFailed)

		_, err := s.service.SignIn(s.ctx, SignInRequest{Email: "lider@example.com", Password: "Secr3t!pass"})
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(dErrors.CodeUnauthorized, de.Code)
		s.Equal(MsgSignInUnavailable, de.Message)
	})
}

func (s *AuthServiceSuite) TestSignOut() {
	s.Run("revokes for the remaining lifetime", func() {
		ctx := requestcontext.WithUserID(s.ctx, s.userID)
		ctx = requestcontext.WithToken(ctx, "jti-1", testNow.Add(20*time.Minute))
		s.trl.EXPECT().RevokeToken(gomock.Any(), "jti-1", 20*time.Minute).Return(nil)
		s.expectAuditAction(audit.EventSignedOut)

		s.Require().NoError(s.service.SignOut(ctx))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.TokensRevoked))
	})

	s.Run("already expired token needs no entry", func() {
		ctx := requestcontext.WithToken(s.ctx, "jti-2", testNow.Add(-time.Minute))
		s.trl.EXPECT().RevokeToken(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		s.expectAuditAction(audit.EventSignedOut)

		s.NoError(s.service.SignOut(ctx))
	})

	s.Run("revocation store failure", func() {
		ctx := requestcontext.WithToken(s.ctx, "jti-3", testNow.Add(time.Hour))
		s.trl.EXPECT().RevokeToken(gomock.Any(), "jti-3", time.Hour).Return(errors.New("redis down"))

		err := s.service.SignOut(ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("no token", func() {
		err := s.service.SignOut(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *AuthServiceSuite) TestResetPassword() {
	actor := models.Actor{UserID: s.userID, RoleCode: models.RoleLeader}

	s.Run("mismatch never reaches the provider", func() {
		s.identities.EXPECT().UpdateIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		err := s.service.ResetPassword(s.ctx, actor, models.ResetPasswordRequest{Password: "Secr3t!pass", PasswordConfirm: "Secr3t!pasz"})
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(models.MsgPasswordMismatch, de.Message)
	})

	s.Run("updates the identity", func() {
		s.identities.EXPECT().UpdateIdentity(gomock.Any(), s.userID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.UserID, c identity.Changes) error {
				s.Require().NotNil(c.Password)
				s.Equal("N3w!secret", *c.Password)
				s.Nil(c.Email)
				return nil
			})
		s.expectAuditAction(audit.EventPasswordChanged)

		s.NoError(s.service.ResetPassword(s.ctx, actor, models.ResetPasswordRequest{Password: "N3w!secret", PasswordConfirm: "N3w!secret"}))
	})

	s.Run("provider failure", func() {
		s.identities.EXPECT().UpdateIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("down"))
		err := s.service.ResetPassword(s.ctx, actor, models.ResetPasswordRequest{Password: "N3w!secret", PasswordConfirm: "N3w!secret"})
		de, ok := dErrors.As(err)
		s.Require().True(ok)
		s.Equal(MsgPasswordNotUpdated, de.Message)
	})
}

func (s *AuthServiceSuite) TestCurrentActor() {
	s.Run("reads fresh state", func() {
		s.identities.EXPECT().FindIdentity(gomock.Any(), s.userID).Return(s.ident, nil)
		s.profiles.EXPECT().FindByID(gomock.Any(), s.userID).Return(s.activeProfile(), nil)
		s.roles.EXPECT().FindByID(gomock.Any(), id.RoleID(3)).Return(leaderRole, nil)

		actor, err := s.service.CurrentActor(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(s.userID, actor.UserID)
		s.Equal(models.RoleLeader, actor.RoleCode)
	})

	s.Run("deleted identity", func() {
		s.identities.EXPECT().FindIdentity(gomock.Any(), s.userID).
			Return(nil, &identity.Error{Code: identity.CodeUserNotFound})
		_, err := s.service.CurrentActor(s.ctx, s.userID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("profile gone", func() {
		s.identities.EXPECT().FindIdentity(gomock.Any(), s.userID).Return(s.ident, nil)
		s.profiles.EXPECT().FindByID(gomock.Any(), s.userID).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.CurrentActor(s.ctx, s.userID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("anonymous", func() {
		_, err := s.service.CurrentActor(s.ctx, id.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
