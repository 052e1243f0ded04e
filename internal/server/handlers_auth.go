package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/gate"
	"github.com/muffakiribnhamid/Scholarly/internal/identity"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type authResponse struct {
	User     *identity.Identity `json:"user"`
	Redirect string             `json:"redirect"`
}

// handleRegister creates the credential record and signs the new user in.
// The profile document is created later, by setup.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := s.ids.SignUp(ctx, req.Email, req.Password, req.DisplayName); err != nil {
		switch {
		case errors.Is(err, identity.ErrEmailInUse):
			c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		case errors.Is(err, identity.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			s.log.Error("sign up failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not create account"})
		}
		return
	}

	// Creating the account also starts the session, so sign in to mint the
	// token the follow-up setup request will present.
	id, err := s.ids.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		s.log.Error("post-registration sign in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "account created but sign in failed"})
		return
	}

	scope := s.flags.For(id.UID)
	if err := scope.MarkAccountCreated(); err != nil {
		s.log.Warn("flag write failed", zap.String("uid", id.UID), zap.Error(err))
	}
	if err := scope.MarkLoggedIn(); err != nil {
		s.log.Warn("flag write failed", zap.String("uid", id.UID), zap.Error(err))
	}

	s.log.Info("account created", zap.String("uid", id.UID))
	c.JSON(http.StatusCreated, authResponse{User: id, Redirect: gate.RouteSetupStudent})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	id, err := s.ids.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		s.log.Error("sign in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not sign in"})
		return
	}

	scope := s.flags.For(id.UID)
	if err := scope.MarkLoggedIn(); err != nil {
		s.log.Warn("flag write failed", zap.String("uid", id.UID), zap.Error(err))
	}

	// A returning user lands on setup, which forwards to the dashboard when
	// the profile is already in place.
	c.JSON(http.StatusOK, authResponse{User: id, Redirect: gate.RouteSetupStudent})
}

type logoutResponse struct {
	Redirect string `json:"redirect"`
}

// handleLogout revokes the session and clears every flag except the
// onboarding one, which outlives the account session.
func (s *Server) handleLogout(c *gin.Context) {
	id := callerIdentity(c)

	if err := s.ids.SignOut(c.Request.Context(), id.UID); err != nil {
		s.log.Error("sign out failed", zap.String("uid", id.UID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not sign out"})
		return
	}
	if err := s.flags.For(id.UID).Logout(); err != nil {
		s.log.Warn("flag clear failed", zap.String("uid", id.UID), zap.Error(err))
	}

	c.JSON(http.StatusOK, logoutResponse{Redirect: gate.RouteLogin})
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, callerIdentity(c))
}

type gateRequest struct {
	Current string `form:"current"`
}

type gateResponse struct {
	Next string `json:"next"`
}

// handleGate answers "where should this user be", given the screen they
// are mounting. Unauthenticated callers are allowed; the decision simply
// sees a signed-out state.
func (s *Server) handleGate(c *gin.Context) {
	var req gateRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.Current == "" {
		req.Current = gate.RouteWelcome
	}

	// Before an account exists the onboarding flag is device-level, so the
	// signed-out state still sees it.
	st := gate.State{Onboarded: s.flags.For("").Onboarded()}
	if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
		if id, err := s.ids.CurrentUser(c.Request.Context(), token); err == nil {
			scope := s.flags.For(id.UID)
			st = gate.State{
				SignedIn:       true,
				Onboarded:      scope.Onboarded(),
				AccountCreated: scope.AccountCreated(),
				AccountSetup:   scope.AccountSetup(),
			}
		}
	}

	c.JSON(http.StatusOK, gateResponse{Next: gate.Next(st, req.Current)})
}

// handleOnboard marks the device as past the welcome screen. No account is
// required; the flag is what sends a returning visitor straight to account
// creation.
func (s *Server) handleOnboard(c *gin.Context) {
	if err := s.flags.For("").MarkOnboarded(); err != nil {
		s.log.Warn("flag write failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not save onboarding state"})
		return
	}
	c.JSON(http.StatusOK, gateResponse{Next: gate.RouteCreateAccount})
}
