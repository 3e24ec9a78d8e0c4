package httpx

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/go-sample-storefront/internal/cart"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Cart-Session"
	SessionCookie = "cart_session"
)

// sessionID reads the caller's session from the header, then the cookie.
// Anything that is not a uuid gets a fresh id.
func sessionID(r *http.Request) (id string, minted bool) {
	id = strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = strings.TrimSpace(c.Value)
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		return cart.NewSessionID(), true
	}
	return id, false
}

func echoSession(w http.ResponseWriter, id string, minted bool) {
	w.Header().Set(SessionHeader, id)
	if minted {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
