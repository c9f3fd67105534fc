package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Session tokens are self-contained: base64url over
// "identity|expiryMillis|hexSignature", signed with HMAC-SHA256. No
// server-side session table exists, so a token is valid until its embedded
// expiry passes.

func IssueToken(secret, identity string, ttl time.Duration) string {
	return IssueTokenWithExpiry(secret, identity, time.Now().Add(ttl))
}

func IssueTokenWithExpiry(secret, identity string, expiry time.Time) string {
	payload := identity + "|" + strconv.FormatInt(expiry.UnixMilli(), 10)
	token := payload + "|" + signPayload(secret, payload)
	return base64.RawURLEncoding.EncodeToString([]byte(token))
}

// VerifyToken reports whether token is well-formed, unexpired, bound to the
// expected identity, and carries a valid signature. Every failure mode is a
// plain false; callers cannot tell a tampered token from an expired one.
func VerifyToken(secret, identity, token string) bool {
	if token == "" {
		return false
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}

	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return false
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || expiry <= time.Now().UnixMilli() {
		return false
	}

	if parts[0] != identity {
		return false
	}

	expected := signPayload(secret, parts[0]+"|"+parts[1])
	if len(parts[2]) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(parts[2]), []byte(expected)) == 1
}

func signPayload(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// TokenFromRequest returns the session cookie value, or "" when the cookie
// is absent. An absent cookie verifies identically to an empty token.
func TokenFromRequest(r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func IsAuthenticated(r *http.Request, secret, identity, cookieName string) bool {
	return VerifyToken(secret, identity, TokenFromRequest(r, cookieName))
}

// SessionCookie stores the token for the dashboard client. The attribute set
// (HttpOnly, SameSite=Lax, Path=/, Max-Age=TTL, Secure in production) is part
// of the browser contract and must not change.
func SessionCookie(name, token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}

// ExpiredSessionCookie tells the client to drop the token immediately.
// Tokens are never revoked server-side before their natural expiry.
func ExpiredSessionCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	}
}
