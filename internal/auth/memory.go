package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
	tokenLen      = 32

	// MinPasswordLength matches the hosted provider's default policy
	MinPasswordLength = 6

	memorySessionLifetime = time.Hour
)

type memoryAccount struct {
	user User
	hash string
}

// MemoryProvider is a process-local Provider for development and tests.
// Accounts and sessions are lost on restart.
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount // key: lower-cased email
	access   map[string]string         // access token -> email
	refresh  map[string]string         // refresh token -> email
	now      func() time.Time
	logger   *zap.Logger
}

// NewMemoryProvider creates an empty MemoryProvider
func NewMemoryProvider(logger *zap.Logger) *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]*memoryAccount),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		now:      time.Now,
		logger:   logger,
	}
}

// SignUp creates an account and signs it in
func (p *MemoryProvider) SignUp(ctx context.Context, email, password string) (*Session, error) {
	key := normalizeEmail(email)
	if key == "" || !strings.Contains(key, "@") {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Unable to validate email address: invalid format"}
	}
	if len(password) < MinPasswordLength {
		return nil, &Error{Status: http.StatusUnprocessableEntity, Message: fmt.Sprintf("Password should be at least %d characters.", MinPasswordLength)}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[key]; exists {
		return nil, &Error{Status: http.StatusUnprocessableEntity, Message: "User already registered"}
	}

	acct := &memoryAccount{
		user: User{ID: uuid.NewString(), Email: key},
		hash: hash,
	}
	p.accounts[key] = acct

	p.logger.Info("Account created", zap.String("email", key))

	return p.issueLocked(acct)
}

// SignIn verifies the password and issues a session
func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	key := normalizeEmail(email)

	p.mu.Lock()
	acct, ok := p.accounts[key]
	p.mu.Unlock()

	invalid := &Error{Status: http.StatusBadRequest, Message: "Invalid login credentials"}
	if !ok {
		return nil, invalid
	}

	match, err := VerifyPassword(password, acct.hash)
	if err != nil {
		p.logger.Error("Error verifying password", zap.String("email", key), zap.Error(err))
		return nil, invalid
	}
	if !match {
		p.logger.Warn("Failed sign-in attempt", zap.String("email", key))
		return nil, invalid
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.issueLocked(acct)
}

// SignOut revokes the access token and every refresh token of its account
func (p *MemoryProvider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.access[accessToken]
	if !ok {
		return nil
	}
	delete(p.access, accessToken)
	for token, owner := range p.refresh {
		if owner == email {
			delete(p.refresh, token)
		}
	}
	return nil
}

// Refresh exchanges a refresh token for a new session. Refresh tokens are single use.
func (p *MemoryProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.refresh[refreshToken]
	if !ok {
		return nil, &Error{Status: http.StatusBadRequest, Message: "Invalid Refresh Token"}
	}
	delete(p.refresh, refreshToken)

	return p.issueLocked(p.accounts[email])
}

// User resolves an access token to its account
func (p *MemoryProvider) User(accessToken string) (User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.access[accessToken]
	if !ok {
		return User{}, false
	}
	return p.accounts[email].user, true
}

func (p *MemoryProvider) issueLocked(acct *memoryAccount) (*Session, error) {
	access, err := randomToken()
	if err != nil {
		return nil, err
	}
	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}

	p.access[access] = acct.user.Email
	p.refresh[refresh] = acct.user.Email

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    p.now().Add(memorySessionLifetime),
		User:         acct.user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomToken() (string, error) {
	b := make([]byte, tokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashPassword creates an Argon2id hash of the password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// Encode as: $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads, b64Salt, b64Hash), nil
}

// VerifyPassword verifies a password against an Argon2id hash
func VerifyPassword(password, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("not an argon2id hash")
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(decodedHash)))

	return subtle.ConstantTimeCompare(decodedHash, computed) == 1, nil
}
