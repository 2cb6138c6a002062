package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/services"
	"github.com/antoniorme/minis-padel/utils"
)

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   []byte
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   []byte(jwtSecret),
	}
}

// Register godoc
// @Summary      Register an organizer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      services.RegisterInput  true  "Organizer"
// @Success      201    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      409    {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput

	err := readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" || input.Name == "" {
		badRequestResponse(w, r, errors.New("name, email, and password are required"))
		return
	}

	organizer, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, jsonResponse{"organizer": organizer})
}

// Login godoc
// @Summary      Log in and receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      models.Credentials  true  "Credentials"
// @Success      200    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.Credentials

	err := readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	organizer, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	tokenString, err := utils.GenerateJWT(h.jwtSecret, organizer.ID, time.Now())
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	respond(w, r, http.StatusOK, jsonResponse{"token": tokenString})
}

// Me godoc
// @Summary      Current organizer
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := organizerID(w, r)
	if !ok {
		return
	}
	organizer, err := h.authService.Me(r.Context(), ownerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"organizer": organizer})
}
