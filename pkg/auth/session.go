// Package auth resolves who is calling the inventory API and from where.
//
// Identity comes from a server-side session cookie or a bearer token.
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption. Production deployments
// must use cryptographically random keys generated with:
//
//	openssl rand -base64 32
package auth

import (
	"bytes"
	"context"
	"encoding/base32"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionName is the cookie carrying the encrypted session ID.
	SessionName = "stockledger_session"
	// SessionEmployeeKey is the session value holding the employee ID.
	SessionEmployeeKey = "employee_id"

	defaultKeyPrefix = "stockledger:session:"
	defaultMaxAge    = 12 * 60 * 60 // one shift
)

// SessionIdentity resolves the employee stored in a session cookie.
type SessionIdentity struct {
	store sessions.Store
}

// NewSessionIdentity reads sessions from store. Sessions are issued by the
// staff sign-in service sharing the same Redis and keys.
func NewSessionIdentity(store sessions.Store) *SessionIdentity {
	return &SessionIdentity{store: store}
}

func (s *SessionIdentity) EmployeeID(r *http.Request) (string, error) {
	if _, err := r.Cookie(SessionName); err != nil {
		return "", ErrNoCredentials
	}
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if session.IsNew {
		return "", fmt.Errorf("%w: session expired or unknown", ErrInvalidCredentials)
	}
	id, ok := session.Values[SessionEmployeeKey].(string)
	if !ok {
		return "", fmt.Errorf("%w: session has no %s", ErrInvalidCredentials, SessionEmployeeKey)
	}
	return checkEmployeeID(id)
}

// RedisStore is a sessions.Store keeping session values in Redis; only an
// encrypted session ID travels in the cookie. Every successful load slides
// the Redis TTL forward by MaxAge.
type RedisStore struct {
	client    redis.UniversalClient
	codecs    []securecookie.Codec
	options   *sessions.Options
	keyPrefix string
}

// StoreOption customises a RedisStore.
type StoreOption func(*RedisStore)

// WithKeyPrefix overrides the Redis key prefix.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// WithMaxAge overrides the session lifetime.
func WithMaxAge(d time.Duration) StoreOption {
	return func(s *RedisStore) { s.options.MaxAge = int(d.Seconds()) }
}

// NewSessionStore creates a Redis-backed session store. secureCookie should
// be true everywhere except local development over plain HTTP.
//
//	store := auth.NewSessionStore(
//	    app.Redis.Client(),
//	    []byte(cfg.SessionAuthKey),
//	    []byte(cfg.SessionEncryptionKey),
//	    cfg.Environment == config.EnvProduction,
//	)
func NewSessionStore(client redis.UniversalClient, authKey, encryptionKey []byte, secureCookie bool, opts ...StoreOption) *RedisStore {
	s := &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(authKey, encryptionKey),
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		},
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a session for the given name, cached per request.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie yields a fresh session with IsNew set. Redis failures are
// returned so callers do not mistake an outage for a signed-out user.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	session.ID = id
	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	session.IsNew = !found
	return session, nil
}

// Save persists the session and writes the encrypted cookie. A negative
// MaxAge deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), s.key(session.ID)).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
			"=",
		)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.client.Set(r.Context(), s.key(session.ID), buf.Bytes(), ttl).Err(); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	data, err := s.client.GetEx(ctx, s.key(session.ID), ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&session.Values); err != nil {
		return false, fmt.Errorf("decode session values: %w", err)
	}
	return true, nil
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}
