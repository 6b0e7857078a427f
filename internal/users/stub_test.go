package users_test

import (
	"context"
	"sort"
	"sync"

	"github.com/gatekeep/gatekeep/internal/shared"
	"github.com/gatekeep/gatekeep/internal/users"
)

type stubRepo struct {
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]*users.User
	createErr error
}

func newStubRepo(seed ...users.User) *stubRepo {
	r := &stubRepo{byID: map[int64]*users.User{}}
	for i := range seed {
		u := seed[i]
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
		r.byID[u.ID] = &u
	}
	return r
}

func (r *stubRepo) Create(ctx context.Context, in users.NewUser) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.byID {
		if u.Email == in.Email {
			return nil, shared.ErrDuplicateUser
		}
	}
	r.nextID++
	u := &users.User{ID: r.nextID, Name: in.Name, Email: in.Email, Mobile: in.Mobile, DocumentPath: in.DocumentPath}
	r.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *stubRepo) FindByID(ctx context.Context, id int64) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubRepo) ListNonAdmin(ctx context.Context) ([]users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]users.User, 0, len(r.byID))
	for _, u := range r.byID {
		if !u.IsAdmin {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubRepo) SetPassword(ctx context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return shared.ErrUserNotFound
	}
	u.PasswordHash = &hash
	u.Revision++
	return nil
}

func (r *stubRepo) UpdateProfile(ctx context.Context, in users.ProfileUpdate) (users.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email != in.Email {
			continue
		}
		u.Name = in.Name
		u.Mobile = in.Mobile
		if in.PasswordHash != nil {
			h := *in.PasswordHash
			u.PasswordHash = &h
		}
		u.Revision++
		return users.UpdateResult{Matched: true}, nil
	}
	return users.UpdateResult{}, nil
}

func strPtr(s string) *string { return &s }
