package usecase

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"skillbridge/internal/domain/user"
	"skillbridge/internal/pkg/jwt"
	ucauth "skillbridge/internal/usecase/auth"

	"github.com/google/uuid"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]user.User
	names map[uuid.UUID]*string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]user.User{}, names: map[uuid.UUID]*string{}}
}

func (m *memUsers) CreateWithProfile(_ context.Context, u user.User, fullName *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	m.names[u.ID] = fullName
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memUsers) MarkEmailVerified(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return false, user.ErrNotFound
	}
	if u.Verified() {
		return false, nil
	}
	u.EmailVerifiedAt = &at
	m.byID[id] = u
	return true, nil
}

func (m *memUsers) Count(context.Context) (int, error) { return len(m.byID), nil }

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (d *memDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = until
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}

func (d *memDenylist) Claim(_ context.Context, jti string, until time.Time) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.revoked[jti]; ok {
		return false, nil
	}
	d.revoked[jti] = until
	return true, nil
}

type captureMailer struct {
	links []string
}

func (m *captureMailer) SendVerification(_ context.Context, _ string, link string) error {
	m.links = append(m.links, link)
	return nil
}

type authFixture struct {
	uc     *Auth
	users  *memUsers
	deny   *memDenylist
	mailer *captureMailer
	jwt    *jwt.HMACService
}

func newAuthFixture(requireVerified bool) authFixture {
	f := authFixture{
		users:  newMemUsers(),
		deny:   &memDenylist{revoked: map[string]time.Time{}},
		mailer: &captureMailer{},
		jwt:    jwt.NewHMACService("access-secret", "refresh-secret", "verify-secret", 15*time.Minute, 24*time.Hour, time.Hour),
	}
	f.uc = NewAuthUsecase(AuthDeps{
		Users:           f.users,
		JWT:             f.jwt,
		Denylist:        f.deny,
		Mailer:          f.mailer,
		RequireVerified: requireVerified,
		CallbackURL:     "http://app.test/auth/callback",
		Logger:          log.New(&bytes.Buffer{}, "", 0),
	})
	return f
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return u.Query().Get("token")
}

func TestAuth_RegisterSendsVerificationLink(t *testing.T) {
	f := newAuthFixture(true)

	u, err := f.uc.Register(context.Background(), ucauth.RegisterInput{Email: " New@Example.Test ", Password: "password123", FullName: "Ada"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if u.Email != "new@example.test" || u.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", u)
	}
	if len(f.mailer.links) != 1 || !strings.HasPrefix(f.mailer.links[0], "http://app.test/auth/callback?token=") {
		t.Fatalf("unexpected verification links %v", f.mailer.links)
	}

	if _, err := f.uc.Register(context.Background(), ucauth.RegisterInput{Email: "new@example.test", Password: "password123"}); !errors.Is(err, ucauth.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
	if _, err := f.uc.Register(context.Background(), ucauth.RegisterInput{Email: "other@example.test", Password: "short"}); !errors.Is(err, ucauth.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuth_LoginRequiresVerifiedEmail(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()

	if _, err := f.uc.Register(ctx, ucauth.RegisterInput{Email: "a@example.test", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := f.uc.Login(ctx, ucauth.LoginInput{Email: "a@example.test", Password: "password123"}); !errors.Is(err, ucauth.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}

	res, err := f.uc.VerifyEmail(ctx, tokenFromLink(t, f.mailer.links[0]))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.AlreadyConfirmed || res.Email != "a@example.test" {
		t.Fatalf("unexpected verify result %+v", res)
	}

	again, err := f.uc.VerifyEmail(ctx, tokenFromLink(t, f.mailer.links[0]))
	if err != nil || !again.AlreadyConfirmed {
		t.Fatalf("expected second verify to report already confirmed, got %+v err=%v", again, err)
	}

	_, sess, err := f.uc.Login(ctx, ucauth.LoginInput{Email: "A@example.test", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" || !sess.ExpiresAt.Before(sess.RefreshExpiresAt) {
		t.Fatalf("unexpected session %+v", sess)
	}

	if _, _, err := f.uc.Login(ctx, ucauth.LoginInput{Email: "a@example.test", Password: "wrong-password"}); !errors.Is(err, ucauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.uc.Login(ctx, ucauth.LoginInput{Email: "nobody@example.test", Password: "password123"}); !errors.Is(err, ucauth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuth_VerifyRejectsOtherTokenTypes(t *testing.T) {
	f := newAuthFixture(true)

	access, err := f.jwt.GenerateAccessToken(uuid.New(), "a@example.test")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := f.uc.VerifyEmail(context.Background(), access.Value); !errors.Is(err, ErrVerificationInvalid) {
		t.Fatalf("expected ErrVerificationInvalid, got %v", err)
	}
	if _, err := f.uc.VerifyEmail(context.Background(), "  "); !errors.Is(err, ErrVerificationInvalid) {
		t.Fatalf("expected ErrVerificationInvalid for blank token, got %v", err)
	}
}

func TestAuth_RefreshRotatesAndLogoutRevokes(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	if _, err := f.uc.Register(ctx, ucauth.RegisterInput{Email: "r@example.test", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, first, err := f.uc.Login(ctx, ucauth.LoginInput{Email: "r@example.test", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	second, err := f.uc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.AccessToken == "" {
		t.Fatalf("expected a new access token")
	}

	if _, err := f.uc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected rotated token to be rejected, got %v", err)
	}
	if _, err := f.uc.Refresh(ctx, second.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected access token to be rejected as refresh token, got %v", err)
	}
	if _, err := f.uc.Refresh(ctx, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	before := len(f.deny.revoked)
	if err := f.uc.Logout(ctx, second.RefreshToken, second.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.deny.revoked) != before+2 {
		t.Fatalf("expected both tokens revoked, revoked=%d before=%d", len(f.deny.revoked), before)
	}
	if _, err := f.uc.Refresh(ctx, second.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected logged out refresh token to be rejected, got %v", err)
	}
}

func TestAuth_ResendVerificationIsSilent(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()

	if err := f.uc.ResendVerification(ctx, "ghost@example.test"); err != nil {
		t.Fatalf("expected nil error for unknown address, got %v", err)
	}
	if len(f.mailer.links) != 0 {
		t.Fatalf("expected no mail for unknown address")
	}

	if _, err := f.uc.Register(ctx, ucauth.RegisterInput{Email: "s@example.test", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.uc.ResendVerification(ctx, "s@example.test"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if len(f.mailer.links) != 2 {
		t.Fatalf("expected a second verification mail, got %d", len(f.mailer.links))
	}
}

func TestAuth_ConcurrentRefreshRedeemsOnce(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	if _, err := f.uc.Register(ctx, ucauth.RegisterInput{Email: "c@example.test", Password: "password123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, sess, err := f.uc.Login(ctx, ucauth.LoginInput{Email: "c@example.test", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.uc.Refresh(ctx, sess.RefreshToken)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInvalidRefreshToken):
				rejected++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || rejected != callers-1 {
		t.Fatalf("expected exactly one redemption, got successes=%d rejected=%d", successes, rejected)
	}
}

func TestVerificationLink(t *testing.T) {
	if got := verificationLink("http://x/cb?next=/jobs", "a b"); got != "http://x/cb?next=/jobs&token=a+b" {
		t.Fatalf("unexpected link %q", got)
	}
	if got := verificationLink("", "tok"); got != "tok" {
		t.Fatalf("unexpected link %q", got)
	}
}
