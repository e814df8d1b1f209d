package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"storefront/pkg/otel"
	"storefront/pkg/session"
)

type ctxKey int

const (
	userKey ctxKey = iota + 1
	sessionKey
)

func traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.InjectTracing(r.Context(), tracer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authMiddleware resolves the session cookie and attaches the username and
// session ID to the request context.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session_id")
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := sessions.Validate(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, session.ErrNoSession) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			log.Error(r.Context(), "validate session", "error", err)
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, sessionKey, c.Value)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey).(string)
	return sid
}

// loginRequest represents login credentials.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginHandler opens a session and its cart.
// @Summary Login
// @Description Authenticates the user, sets the session cookie and creates the session cart
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200
// @Router /login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}
	sid, err := sessions.Start(ctx, req.Username)
	if err != nil {
		log.Error(ctx, "start session", "error", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: sid, Path: "/", Expires: time.Now().Add(time.Hour), HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

// logoutHandler ends the session and tears down its cart.
// @Summary Logout
// @Success 204
// @Security ApiKeyAuth
// @Router /logout [post]
func logoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "logoutHandler")
	defer span.End()

	if err := sessions.End(ctx, sessionID(ctx)); err != nil {
		log.Error(ctx, "end session", "error", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}
