package web

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/service/auth"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
	csrfTokenCookie    = "csrf_token"
	csrfTokenHeader    = "X-CSRF-Token"
)

// generateCSRFToken creates a secure, random token for CSRF (Cross-Site Request Forgery) protection.
// The token is used in the "Double Submit Cookie" pattern: sent in a readable
// cookie, it must come back in the X-CSRF-Token header of state-changing requests.
func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// sha256hex computes SHA-256 hash of string / Calcule le hash SHA-256 d'une chaîne
func sha256hex(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// clientHashes returns the hashed client IP and User-Agent bound to refresh tokens.
func clientHashes(r *http.Request, conf *config.Config) (ipHash, uaHash string) {
	ip := getIPWithTrustedProxies(r, conf.Security.TrustedProxies)
	return sha256hex(ip), sha256hex(r.Header.Get("User-Agent"))
}

func newCookie(conf *config.Config, name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     conf.Auth.CookiePath,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   conf.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Domain:   conf.Auth.CookieDomain,
	}
	if maxAge < 0 {
		c.MaxAge = -1
	}
	return c
}

// setAuthCookies sets access and refresh token cookies / Définit les cookies d'accès et de rafraîchissement
func setAuthCookies(w http.ResponseWriter, conf *config.Config, pair *auth.TokenPair) {
	http.SetCookie(w, newCookie(conf, accessTokenCookie, pair.AccessToken, conf.Auth.AccessTokenDuration, true))
	http.SetCookie(w, newCookie(conf, refreshTokenCookie, pair.RefreshToken, conf.Auth.RefreshTokenDuration, true))
}

// rotateCSRFToken generates new CSRF token / Génère un nouveau token CSRF
// The cookie is readable by JavaScript so the SPA can echo it in the header.
func rotateCSRFToken(w http.ResponseWriter, conf *config.Config) error {
	token, err := generateCSRFToken()
	if err != nil {
		return err
	}
	http.SetCookie(w, newCookie(conf, csrfTokenCookie, token, conf.Auth.RefreshTokenDuration, false))
	return nil
}

// clearAuthCookies expires every auth cookie / Expire tous les cookies d'authentification
func clearAuthCookies(w http.ResponseWriter, conf *config.Config) {
	http.SetCookie(w, newCookie(conf, accessTokenCookie, "", -1, true))
	http.SetCookie(w, newCookie(conf, refreshTokenCookie, "", -1, true))
	http.SetCookie(w, newCookie(conf, csrfTokenCookie, "", -1, false))
}
