package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domainauth "stayhub/internal/domain/auth"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type fakeUsers struct {
	byID map[domainuser.ID]*domainuser.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[domainuser.ID]*domainuser.User)}
}

func (f *fakeUsers) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUsers) ByContact(_ context.Context, contact string) (*domainuser.User, error) {
	for _, u := range f.byID {
		if u.Contact == contact {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (f *fakeUsers) Insert(_ context.Context, u *domainuser.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) CreditIncome(context.Context, domainuser.ID, money.Money) error { return nil }
func (f *fakeUsers) AppendBooking(context.Context, domainuser.ID, string) error     { return nil }
func (f *fakeUsers) AppendListing(context.Context, domainuser.ID, string) error     { return nil }
func (f *fakeUsers) SetWallet(context.Context, domainuser.ID, string) error         { return nil }

type fakeSessions struct {
	byToken map[domainauth.Token]*domainauth.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: make(map[domainauth.Token]*domainauth.Session)}
}

func (f *fakeSessions) Save(_ context.Context, s *domainauth.Session) error {
	f.byToken[s.Token] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s, ok := f.byToken[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessions) Delete(_ context.Context, token domainauth.Token) error {
	delete(f.byToken, token)
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID domainuser.ID) error {
	for token, s := range f.byToken {
		if s.UserID == userID {
			delete(f.byToken, token)
		}
	}
	return nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type sequentialTokens struct{ n int }

func (t *sequentialTokens) NewToken() (string, error) {
	t.n++
	return fmt.Sprintf("token-%d", t.n), nil
}

func newTestService() (*Service, *fakeUsers, *fakeSessions) {
	users := newFakeUsers()
	sessions := newFakeSessions()
	svc := &Service{
		Users:     users,
		Sessions:  sessions,
		Passwords: plainHasher{},
		Tokens:    &sequentialTokens{},
		Currency:  "USD",
	}
	return svc, users, sessions
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	svc, users, sessions := newTestService()

	res, err := svc.Register(context.Background(), RegisterParams{
		Contact:  "  Host@Example.COM ",
		Name:     "Ada",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.User.Contact != "host@example.com" {
		t.Errorf("contact = %q, want lowercased trimmed form", res.User.Contact)
	}
	if res.Token == "" {
		t.Fatal("no session token issued")
	}
	if _, ok := users.byID[res.User.ID]; !ok {
		t.Error("user was not persisted")
	}
	session, ok := sessions.byToken[domainauth.Token(res.Token)]
	if !ok {
		t.Fatal("session was not persisted")
	}
	if session.UserID != res.User.ID {
		t.Errorf("session user = %s, want %s", session.UserID, res.User.ID)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterParams{
		Contact:  "host@example.com",
		Name:     "Ada",
		Password: "short",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestRegisterRejectsDuplicateContact(t *testing.T) {
	svc, _, _ := newTestService()

	params := RegisterParams{Contact: "host@example.com", Name: "Ada", Password: "correct horse"}
	if _, err := svc.Register(context.Background(), params); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), RegisterParams{
		Contact:  "HOST@example.com",
		Name:     "Grace",
		Password: "correct horse",
	})
	if !errors.Is(err, ErrContactTaken) {
		t.Fatalf("err = %v, want ErrContactTaken", err)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _, _ := newTestService()

	params := RegisterParams{Contact: "host@example.com", Name: "Ada", Password: "correct horse"}
	if _, err := svc.Register(context.Background(), params); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err := svc.Login(context.Background(), LoginParams{Contact: "host@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Error("no token issued on login")
	}

	_, err = svc.Login(context.Background(), LoginParams{Contact: "host@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	_, err = svc.Login(context.Background(), LoginParams{Contact: "ghost@example.com", Password: "correct horse"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown contact err = %v, want ErrInvalidCredentials", err)
	}
}

func TestResolveTokenDropsExpiredSessions(t *testing.T) {
	svc, _, sessions := newTestService()

	res, err := svc.Register(context.Background(), RegisterParams{
		Contact:  "host@example.com",
		Name:     "Ada",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	resolved, err := svc.ResolveToken(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if resolved.User.ID != res.User.ID {
		t.Errorf("resolved user = %s, want %s", resolved.User.ID, res.User.ID)
	}

	sessions.byToken[domainauth.Token(res.Token)].ExpiresAt = time.Now().Add(-time.Minute)
	_, err = svc.ResolveToken(context.Background(), res.Token)
	if !errors.Is(err, domainauth.ErrSessionNotFound) {
		t.Fatalf("expired session err = %v, want ErrSessionNotFound", err)
	}
	if _, ok := sessions.byToken[domainauth.Token(res.Token)]; ok {
		t.Error("expired session should be deleted")
	}
}

func TestLogoutIgnoresEmptyToken(t *testing.T) {
	svc, _, sessions := newTestService()

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout with empty token: %v", err)
	}

	res, err := svc.Register(context.Background(), RegisterParams{
		Contact:  "host@example.com",
		Name:     "Ada",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.Logout(context.Background(), res.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := sessions.byToken[domainauth.Token(res.Token)]; ok {
		t.Error("session should be removed on logout")
	}
}
