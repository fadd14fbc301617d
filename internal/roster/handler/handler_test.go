package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"roster/internal/auth/guard"
	"roster/internal/roster/cell"
	"roster/internal/roster/handler/mocks"
	"roster/internal/roster/models"
	"roster/internal/roster/service"
	id "roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/testutil"
)

type RosterHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
	actor   models.Actor
}

func TestRosterHandlerSuite(t *testing.T) {
	suite.Run(t, new(RosterHandlerSuite))
}

func (s *RosterHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.actor = models.Actor{UserID: id.NewUserID(), RoleID: 2, RoleCode: models.RoleAdministrator}

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(guard.WithActor(r.Context(), s.actor)))
		})
	})
	h.Register(s.router)
}

func (s *RosterHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *RosterHandlerSuite) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	return testutil.Serve(s.T(), s.router, testutil.NewRequest(s.T(), method, path, body))
}

func (s *RosterHandlerSuite) TestRosterView() {
	s.service.EXPECT().RosterView(gomock.Any(), s.actor, "garcia").Return(&service.RosterView{
		Cells:      []service.CellView{{Progress: cell.Progress{Size: 3, Target: cell.Target}}},
		Affiliates: 2,
	}, nil)

	w, body := s.do(http.MethodGet, "/protected/roster?q=+garcia+", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(2.0, body["affiliates"])
	s.Len(body["cells"], 1)
}

func (s *RosterHandlerSuite) TestCellDetail() {
	s.Run("malformed id", func() {
		w, body := s.do(http.MethodGet, "/protected/cells/not-a-uuid", "")
		s.Equal(http.StatusBadRequest, w.Code)
		s.Equal(string(dErrors.CodeInvalidInput), body["error"])
	})

	s.Run("another leader's cell", func() {
		other := id.NewUserID()
		s.service.EXPECT().CellDetail(gomock.Any(), s.actor, other).
			Return(nil, dErrors.New(dErrors.CodeForbidden, models.MsgForbidden))

		w, body := s.do(http.MethodGet, "/protected/cells/"+other.String(), "")
		s.Equal(http.StatusForbidden, w.Code)
		s.Equal("/unauthorized", body["redirect"])
	})
}

func (s *RosterHandlerSuite) TestCreateAccount() {
	s.Run("success", func() {
		uid := id.NewUserID()
		s.service.EXPECT().CreateAccount(gomock.Any(), s.actor, gomock.Any()).Return(&models.ProvisioningResult{
			Stage:   models.StageDone,
			Profile: &models.Profile{ID: uid, Email: "nuevo@example.com"},
		}, nil)

		w, body := s.do(http.MethodPost, "/protected/admin/accounts", `{"email":"nuevo@example.com"}`)
		s.Equal(http.StatusCreated, w.Code)
		s.Equal(models.MsgAccountCreated, body["message"])
		s.Equal("/protected", body["redirect"])
		s.Equal("DONE", body["stage"])
	})

	s.Run("failure hands the form back", func() {
		form := models.FormState{GivenNames: "Ana", DPI: "1234567890123", Email: "nuevo@example.com"}
		s.service.EXPECT().CreateAccount(gomock.Any(), s.actor, gomock.Any()).Return(nil, &models.ProvisioningFailure{
			Stage: models.FailedAtValidation,
			Err:   dErrors.New(dErrors.CodeConflict, models.MsgDPIAffiliate).WithReason(models.ReasonDPIAffiliate),
			Form:  form,
		})

		w, body := s.do(http.MethodPost, "/protected/admin/accounts", `{"email":"nuevo@example.com","password":"Secr3t!pass"}`)
		s.Equal(http.StatusConflict, w.Code)
		s.Equal(models.MsgDPIAffiliate, body["error_description"])
		s.Equal(string(models.FailedAtValidation), body["stage"])
		s.Equal(models.ReasonDPIAffiliate, body["reason"])

		redirect, err := url.Parse(body["redirect"].(string))
		s.Require().NoError(err)
		s.Equal("/protected/admin", redirect.Path)
		s.Equal(models.MsgDPIAffiliate, redirect.Query().Get("error"))
		var echoed models.FormState
		s.Require().NoError(json.Unmarshal([]byte(redirect.Query().Get("data")), &echoed))
		s.Equal(form, echoed)
		s.NotContains(w.Body.String(), "Secr3t!pass")
	})

	s.Run("partial compensation", func() {
		s.service.EXPECT().CreateAccount(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, &models.ProvisioningFailure{
			Stage: models.FailedAtProfile,
			Err:   dErrors.New(dErrors.CodeProvider, models.MsgPartialAccount).WithReason(models.ReasonPartial).MarkPartial(),
		})

		w, body := s.do(http.MethodPost, "/protected/admin/accounts", `{}`)
		s.Equal(http.StatusBadGateway, w.Code)
		s.Equal(true, body["partial"])
	})
}

func (s *RosterHandlerSuite) TestLeaders() {
	s.Run("role filter", func() {
		role := id.RoleID(3)
		s.service.EXPECT().ListProfiles(gomock.Any(), s.actor, &role, "perez").Return([]service.ProfileRow{}, nil)
		w, _ := s.do(http.MethodGet, "/protected/leaders?role=3&q=perez", "")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("bad role", func() {
		w, _ := s.do(http.MethodGet, "/protected/leaders?role=zero", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *RosterHandlerSuite) TestDeleteLeaderWithMembers() {
	leaderID := id.NewUserID()
	s.service.EXPECT().DeleteLeader(gomock.Any(), s.actor, leaderID).Return(nil,
		dErrors.New(dErrors.CodeDependency, models.MsgLeaderHasMembers).WithReason(models.ReasonHasDependents))

	w, body := s.do(http.MethodDelete, "/protected/admin/users/"+leaderID.String(), "")
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(models.ReasonHasDependents, body["reason"])
}

func (s *RosterHandlerSuite) TestSaveAffiliate() {
	s.Run("create", func() {
		s.service.EXPECT().SaveAffiliate(gomock.Any(), s.actor, gomock.Nil(), gomock.Any()).
			Return(&models.Affiliate{ID: id.NewAffiliateID()}, nil)
		w, _ := s.do(http.MethodPost, "/protected/affiliates", `{"given_names":"Maria"}`)
		s.Equal(http.StatusCreated, w.Code)
	})

	s.Run("edit", func() {
		affiliateID := id.NewAffiliateID()
		s.service.EXPECT().SaveAffiliate(gomock.Any(), s.actor, &affiliateID, gomock.Any()).
			Return(&models.Affiliate{ID: affiliateID}, nil)
		w, _ := s.do(http.MethodPut, "/protected/affiliates/"+affiliateID.String(), `{"given_names":"Maria"}`)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("missing body", func() {
		w, _ := s.do(http.MethodPost, "/protected/affiliates", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *RosterHandlerSuite) TestInternalErrorsStayOpaque() {
	s.service.EXPECT().ListPlaces(gomock.Any()).Return(nil, dErrors.New(dErrors.CodeInternal, "pq: connection refused"))
	w, body := s.do(http.MethodGet, "/protected/places", "")
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "pq:")
	s.Equal("internal_error", body["error"])
}
