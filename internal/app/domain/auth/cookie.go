package auth

import "net/http"

// CookieSpec is the wire representation of a session token: a cookie
// set or clear instruction. The issuer and the request gate are the
// only writers; a clear must use the same attribute set as the
// original set or browsers keep the stale cookie.
type CookieSpec struct {
	Name     string
	Value    string
	MaxAge   int
	Secure   bool
	SameSite http.SameSite
}

// NewSessionCookie builds the set instruction for a freshly minted
// token. Over secure transport the cookie is Secure with
// SameSite=None to allow cross-site embedding; over plain HTTP it
// degrades to Lax so local development still works.
func NewSessionCookie(name, token string, maxAge int, secure bool) CookieSpec {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	return CookieSpec{
		Name:     name,
		Value:    token,
		MaxAge:   maxAge,
		Secure:   secure,
		SameSite: sameSite,
	}
}

// NewClearCookie builds the matching clear instruction (empty value,
// zero max-age, identical policy attributes).
func NewClearCookie(name string, secure bool) CookieSpec {
	spec := NewSessionCookie(name, "", 0, secure)
	spec.MaxAge = -1
	return spec
}

// Apply writes the cookie onto the response. HttpOnly and Path=/ are
// invariant for session cookies.
func (s CookieSpec) Apply(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    s.Value,
		MaxAge:   s.MaxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.SameSite,
		Path:     "/",
	})
}

// IsSecureRequest reports whether the request arrived over secure
// transport, either directly or behind a TLS-terminating proxy.
func IsSecureRequest(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
