// Package auth is the session authority: it verifies credentials, issues
// signed bearer tokens and resolves them back to accounts on protected
// requests. Sessions are stateless; nothing is stored server-side.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/arrowflix/internal/apperror"
	"github.com/patric-chuzhbe/arrowflix/internal/logger"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
	"github.com/patric-chuzhbe/arrowflix/internal/passwords"
	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

// Client-facing messages. "Invalid credentials" is shared by the unknown
// email and wrong password paths so that accounts cannot be enumerated.
const (
	MsgCredentialsRequired = "Email and password required"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgMissingToken        = "Missing token"
	MsgInvalidToken        = "Invalid token"
)

// dummyPassword is hashed once and compared against when the email is
// unknown, so both login failure paths spend the same bcrypt time.
const dummyPassword = "arrowflix-dummy-password"

type userKeeper interface {
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

type authRecorder interface {
	AuthAttempt(operation, outcome string)
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserKey is the context key under which AuthenticateUser stores the *user.User.
const UserKey ContextKey = "user"

// Auth handles credential checks and token management.
type Auth struct {
	// db resolves emails and token subjects to accounts.
	db userKeeper

	hasher passwords.Hasher

	// signingSecretKey is the HMAC key used to sign and verify JWTs.
	signingSecretKey []byte

	tokenTTL time.Duration
	now      func() time.Time
	recorder authRecorder

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Auth)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

// WithTokenTTL overrides DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) Option {
	return func(a *Auth) {
		a.tokenTTL = ttl
	}
}

// WithRecorder attaches a metrics recorder for login and validation outcomes.
func WithRecorder(recorder authRecorder) Option {
	return func(a *Auth) {
		a.recorder = recorder
	}
}

// New creates the session authority.
func New(
	db userKeeper,
	hasher passwords.Hasher,
	signingSecretKey []byte,
	options ...Option,
) *Auth {
	a := &Auth{
		db:               db,
		hasher:           hasher,
		signingSecretKey: signingSecretKey,
		tokenTTL:         DefaultTokenTTL,
		now:              time.Now,
		recorder:         nopRecorder{},
	}
	for _, option := range options {
		option(a)
	}

	return a
}

// Login checks the credentials and returns a freshly signed token together
// with the account.
func (a *Auth) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		a.recorder.AuthAttempt("login", "invalid")
		return "", nil, apperror.NewValidation(MsgCredentialsRequired)
	}

	usr, found, err := a.db.GetUserByEmail(ctx, email)
	if err != nil {
		a.recorder.AuthAttempt("login", "error")
		return "", nil, err
	}

	if !found {
		a.hasher.Verify(password, a.dummyDigest())
		a.recorder.AuthAttempt("login", "failure")
		return "", nil, apperror.NewAuth(MsgInvalidCredentials, nil)
	}

	if !a.hasher.Verify(password, usr.PasswordHash) {
		a.recorder.AuthAttempt("login", "failure")
		return "", nil, apperror.NewAuth(MsgInvalidCredentials, nil)
	}

	token, err := IssueToken(NewClaims(usr.ID, usr.Email, a.now(), a.tokenTTL), a.signingSecretKey)
	if err != nil {
		a.recorder.AuthAttempt("login", "error")
		return "", nil, err
	}

	logger.Log.Infow("user logged in", "user_id", usr.ID)
	a.recorder.AuthAttempt("login", "success")

	return token, usr, nil
}

// Validate resolves a bearer token to its account. Malformed, tampered,
// expired tokens and tokens whose subject no longer exists are all AuthErrors.
func (a *Auth) Validate(ctx context.Context, tokenString string) (*user.User, error) {
	if tokenString == "" {
		a.recorder.AuthAttempt("validate", "failure")
		return nil, apperror.NewAuth(MsgMissingToken, nil)
	}

	claims, err := VerifyToken(tokenString, a.signingSecretKey, a.now())
	if err != nil {
		a.recorder.AuthAttempt("validate", "failure")
		return nil, apperror.NewAuth(MsgInvalidToken, err)
	}

	usr, found, err := a.db.GetUserByID(ctx, claims.Subject)
	if err != nil {
		a.recorder.AuthAttempt("validate", "error")
		return nil, err
	}
	if !found {
		a.recorder.AuthAttempt("validate", "failure")
		return nil, apperror.NewAuth(MsgInvalidToken, errors.New("token subject not found"))
	}

	a.recorder.AuthAttempt("validate", "success")

	return usr, nil
}

// Me projects the authenticated account to its public view.
func (a *Auth) Me(usr *user.User) user.PublicView {
	return usr.Public()
}

// AuthenticateUser is an HTTP middleware that requires a valid
// "Authorization: Bearer <token>" header and stores the resolved account in
// the request context. Otherwise it answers 401.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		usr, err := a.Validate(request.Context(), bearerToken(request))
		if err != nil {
			logger.Log.Debugln("Error calling the `a.Validate()`: ", zap.Error(err))
			writeError(response, err)
			return
		}

		ctx := context.WithValue(request.Context(), UserKey, usr)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserFromContext returns the account stored by AuthenticateUser.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	usr, ok := ctx.Value(UserKey).(*user.User)
	return usr, ok && usr != nil
}

func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}

func writeError(response http.ResponseWriter, err error) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(apperror.SafeCode(err))
	_ = json.NewEncoder(response).Encode(models.ErrorResponse{Message: apperror.SafeMessage(err)})
}

func (a *Auth) dummyDigest() string {
	a.dummyOnce.Do(func() {
		digest, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.hasher.Hash()`: ", zap.Error(err))
			return
		}
		a.dummyHash = digest
	})

	return a.dummyHash
}

type nopRecorder struct{}

func (nopRecorder) AuthAttempt(string, string) {}
