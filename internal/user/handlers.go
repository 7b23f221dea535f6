package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antonminaichev/mediexpress/internal/middleware"
	"github.com/antonminaichev/mediexpress/internal/types/user"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	return r
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrInvalidEmail):
			code = http.StatusBadRequest
		case errors.Is(err, ErrUserExists):
			code = http.StatusConflict
		}
		http.Error(w, err.Error(), code)
		return
	}

	token, u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "login after registration failed", http.StatusInternalServerError)
		return
	}
	writeAuth(w, http.StatusCreated, token, u)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	token, u, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	writeAuth(w, http.StatusOK, token, u)
}

// Me must sit behind middleware.JWTMiddleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	cur := middleware.UserFromContext(r.Context())
	if cur == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := h.svc.Me(r.Context(), cur.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(u)
}

func writeAuth(w http.ResponseWriter, status int, token string, u *user.User) {
	w.Header().Set("Authorization", "Bearer "+token)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(authResp{Token: token, User: u})
}
