package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/erp-api/internal/auth"
	"github.com/hongminglow/erp-api/internal/events"
	"github.com/hongminglow/erp-api/internal/http/respond"
	"github.com/hongminglow/erp-api/internal/models/dto"
	"github.com/hongminglow/erp-api/internal/storage"
)

const (
	minPasswordLength  = 6
	invalidCredentials = "invalid email or password"
)

// AuthHandler owns the register and login endpoints.
type AuthHandler struct {
	users  UserDirectory
	tokens *auth.TokenManager
	events events.Publisher
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users UserDirectory, tokens *auth.TokenManager, publisher events.Publisher) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, events: publisher}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !requireFields(w, "name", req.Name, "email", req.Email, "password", req.Password) {
		return
	}
	if err := validateCredentials(req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	id, err := h.users.CreateUser(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), passwordHash)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusBadRequest, "a user with this email already exists")
			return
		}
		writeStoreError(w, "create user", err)
		return
	}

	user := dto.UserView{ID: id, Name: strings.TrimSpace(req.Name), Email: strings.ToLower(strings.TrimSpace(req.Email))}
	publish(r.Context(), h.events, events.New(events.UserRegistered, id, user))
	respond.JSON(w, http.StatusCreated, respond.Fields{"message": "User registered successfully", "user": user})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, ok := h.users.FindUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if !ok {
		log.Printf("login failed: unknown account")
		respond.Error(w, http.StatusUnauthorized, invalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, invalidCredentials)
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Printf("login failed: sign token: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, respond.Fields{"token": token, "user": dto.NewUserView(user)})
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return errors.New("email is not valid")
	}
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
