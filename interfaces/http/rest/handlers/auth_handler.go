package handlers

import (
	"fmt"
	"net/http"
	"time"

	"numtree-backend/application/commands"
	"numtree-backend/application/commands/bus"
	"numtree-backend/application/queries"
	querybus "numtree-backend/application/queries/bus"
	"numtree-backend/pkg/common"
	pkgerrors "numtree-backend/pkg/errors"

	"go.uber.org/zap"
)

// CookieOptions controls the session cookie set on sign-up, login and register
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// AuthHandler handles account HTTP requests
type AuthHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	cookie     CookieOptions
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cookie CookieOptions,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "jwt"
	}
	return &AuthHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		cookie:     cookie,
		errors:     errs,
		logger:     logger,
	}
}

// SignUpRequest is the body of POST /api/auth/sign-up
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /api/auth/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := common.ParseJSONBody(w, r, &req, common.DefaultMaxBodyBytes); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.SignUpCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.ParseJSONBody(w, r, &req, common.DefaultMaxBodyBytes); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusCreated, result)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.commandBus.Send(r.Context(), commands.RegisterUserCommand{UserID: user.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.sendToken(w, r, http.StatusOK, result)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetCurrentUserQuery{UserID: user.UserID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if err := common.RespondSuccess(w, http.StatusOK, common.Envelope{"user": result}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// sendToken sets the session cookie and writes {status, token, data:{user}}
func (h *AuthHandler) sendToken(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	issued, ok := result.(*commands.AuthResult)
	if !ok {
		h.errors.Handle(w, r, pkgerrors.NewInternalError(fmt.Sprintf("unexpected auth result %T", result)))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    issued.Token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		Expires:  time.Now().Add(h.cookie.MaxAge),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	if err := common.RespondSuccess(w, status, common.Envelope{
		"token": issued.Token,
		"data":  map[string]interface{}{"user": issued.User},
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
