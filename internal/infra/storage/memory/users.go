package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domainauth "stayhub/internal/domain/auth"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[domainuser.ID]*domainuser.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[domainuser.ID]*domainuser.User)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) ByContact(ctx context.Context, contact string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if strings.EqualFold(u.Contact, contact) {
			return cloneUser(u), nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) Insert(ctx context.Context, u *domainuser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[u.ID] = cloneUser(u)
	return nil
}

func (r *UserRepository) CreditIncome(ctx context.Context, id domainuser.ID, amount money.Money) error {
	return r.mutate(id, func(u *domainuser.User) {
		u.Income = money.Money{Amount: u.Income.Amount + amount.Amount, Currency: amount.Currency}
	})
}

func (r *UserRepository) AppendBooking(ctx context.Context, id domainuser.ID, bookingRef string) error {
	return r.mutate(id, func(u *domainuser.User) {
		u.Bookings = append(u.Bookings, bookingRef)
	})
}

func (r *UserRepository) AppendListing(ctx context.Context, id domainuser.ID, listingRef string) error {
	return r.mutate(id, func(u *domainuser.User) {
		u.Listings = append(u.Listings, listingRef)
	})
}

func (r *UserRepository) SetWallet(ctx context.Context, id domainuser.ID, walletID string) error {
	return r.mutate(id, func(u *domainuser.User) {
		u.WalletID = walletID
	})
}

func (r *UserRepository) mutate(id domainuser.ID, fn func(*domainuser.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneUser(u *domainuser.User) *domainuser.User {
	cp := *u
	cp.Bookings = append([]string(nil), u.Bookings...)
	cp.Listings = append([]string(nil), u.Listings...)
	return &cp
}

type SessionStore struct {
	mu    sync.RWMutex
	items map[domainauth.Token]*domainauth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[domainauth.Token]*domainauth.Session)}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.items[session.Token] = &cp
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.items {
		if session.UserID == userID {
			delete(s.items, token)
		}
	}
	return nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
var _ domainauth.SessionStore = (*SessionStore)(nil)
