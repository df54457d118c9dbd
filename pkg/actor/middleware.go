package actor

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims the auth service issues for pharmacy users.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	RoleName   string `json:"role_name"`
	IDSucursal *int64 `json:"id_sucursal,omitempty"`
	Superuser  bool   `json:"superuser,omitempty"`
}

// Middleware extracts the acting user from the request and places it in the
// request context.
//
// Two sources are accepted, in order:
//   - X-User-* headers injected by the API gateway after it validated the token
//   - a bearer token verified locally with the shared HMAC secret
//
// Requests with neither are rejected; /health is exempt for monitoring.
func Middleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			a := fromHeaders(r)
			if a == nil {
				a = fromBearer(r, jwtSecret)
			}
			if a == nil {
				http.Error(w, `{"error":"missing or invalid credentials"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
		})
	}
}

func fromHeaders(r *http.Request) *Actor {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return nil
	}

	a := &Actor{
		ID:       userID,
		Email:    r.Header.Get("X-User-Email"),
		RoleName: r.Header.Get("X-User-Role"),
	}

	if v := r.Header.Get("X-User-Sucursal"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			a.IDSucursal = &id
		}
	}
	if r.Header.Get("X-User-Superuser") == "true" {
		a.Superuser = true
	}

	return a
}

func fromBearer(r *http.Request, secret string) *Actor {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil
	}
	tokenString := strings.TrimPrefix(auth, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil
	}

	return &Actor{
		ID:         claims.Subject,
		Email:      claims.Email,
		RoleName:   claims.RoleName,
		IDSucursal: claims.IDSucursal,
		Superuser:  claims.Superuser,
	}
}
