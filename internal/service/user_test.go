package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/model"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
)

type userRepo struct {
	mu         sync.Mutex
	users      map[uuid.UUID]model.User
	lastFilter model.UserFilter
}

func newUserRepo(users ...model.User) *userRepo {
	r := &userRepo{users: make(map[uuid.UUID]model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}

	return r
}

func (r *userRepo) Pool() *pgxpool.Pool {
	return nil
}

func (r *userRepo) Insert(_ context.Context, _ repository.RepoExtension, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = *user

	return user, nil
}

func (r *userRepo) SelectByID(_ context.Context, _ repository.RepoExtension, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserDoesNotExist
	}

	return &u, nil
}

func (r *userRepo) SelectByEmail(_ context.Context, _ repository.RepoExtension, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}

	return nil, apperrors.ErrUserDoesNotExist
}

func (r *userRepo) List(_ context.Context, _ repository.RepoExtension, filter model.UserFilter) ([]model.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastFilter = filter

	var out []model.User

	for _, u := range r.users {
		excluded := false
		for _, email := range filter.ExcludeEmails {
			if u.Email == email {
				excluded = true
			}
		}

		if !excluded {
			out = append(out, u)
		}
	}

	return out, len(out), nil
}

func (r *userRepo) Update(_ context.Context, _ repository.RepoExtension, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return nil, apperrors.ErrUserDoesNotExist
	}

	r.users[user.ID] = *user

	return user, nil
}

func (r *userRepo) SetActive(_ context.Context, _ repository.RepoExtension, id uuid.UUID, active bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserDoesNotExist
	}

	u.IsActive = active
	r.users[id] = u

	return &u, nil
}

type membershipRepo struct{}

func (membershipRepo) Insert(_ context.Context, _ repository.RepoExtension, m *model.UserOrganization) (*model.UserOrganization, error) {
	return m, nil
}

func newTestUserService(users *userRepo, orgs *orgRepo, syncer Syncer, adminEmails ...string) *UserService {
	return NewUserService(zap.NewNop(), users, membershipRepo{}, orgs, syncer, adminEmails)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  error
	}{
		{name: "ok", password: "s3cretpass", confirm: "s3cretpass"},
		{name: "exactly eight", password: "12345678", confirm: "12345678"},
		{name: "too short", password: "short", confirm: "short", wantErr: apperrors.ErrPasswordTooShort},
		{name: "length counts runes", password: "пароль1", confirm: "пароль1", wantErr: apperrors.ErrPasswordTooShort},
		{name: "mismatch", password: "s3cretpass", confirm: "s3cretpasS", wantErr: apperrors.ErrPasswordMismatch},
		{name: "short wins over mismatch", password: "abc", confirm: "abd", wantErr: apperrors.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password, tt.confirm)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserCreateRejectedBeforeWrite(t *testing.T) {
	existing := fakeUser()
	active := fakeOrganization()
	inactive := fakeOrganization()
	inactive.IsActive = false

	tests := []struct {
		name    string
		req     model.UserCreateRequest
		wantErr error
	}{
		{
			name: "password mismatch",
			req: model.UserCreateRequest{
				Email: "new@acme.io", Password: "password1", ConfirmPassword: "password2",
				OrganizationID: active.ID.String(),
			},
			wantErr: apperrors.ErrPasswordMismatch,
		},
		{
			name: "email taken case insensitive",
			req: model.UserCreateRequest{
				Email: strings.ToUpper(existing.Email), Password: "password1", ConfirmPassword: "password1",
				OrganizationID: active.ID.String(),
			},
			wantErr: apperrors.ErrUserAlreadyExists,
		},
		{
			name: "organization inactive",
			req: model.UserCreateRequest{
				Email: "new@acme.io", Password: "password1", ConfirmPassword: "password1",
				OrganizationID: inactive.ID.String(),
			},
			wantErr: apperrors.ErrOrganizationInactive,
		},
		{
			name: "organization missing",
			req: model.UserCreateRequest{
				Email: "new@acme.io", Password: "password1", ConfirmPassword: "password1",
				OrganizationID: uuid.NewString(),
			},
			wantErr: apperrors.ErrOrganizationInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newUserRepo(existing)
			syncer := newFakeSyncer()
			s := newTestUserService(users, newOrgRepo(active, inactive), syncer)

			_, err := s.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Len(t, users.users, 1)
			assert.Empty(t, syncer.calls)
		})
	}
}

func TestUserUpdatePersistsWhenSyncFails(t *testing.T) {
	existing := fakeUser()
	users := newUserRepo(existing)
	s := newTestUserService(users, newOrgRepo(), &failingSyncer{})

	first := "Grace"
	resp, err := s.Update(context.Background(), existing.ID, model.UserUpdateRequest{FirstName: &first})
	require.NoError(t, err)

	assert.Equal(t, "Grace", resp.FirstName)
	assert.Equal(t, "Grace "+*existing.LastName, resp.FullName)

	stored, err := users.SelectByID(context.Background(), nil, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", stored.FirstName)
	require.NotNil(t, stored.FullName)
	assert.Equal(t, "Grace "+*existing.LastName, *stored.FullName)
}

func TestUserUpdateEmailConflict(t *testing.T) {
	a := fakeUser()
	b := fakeUser()
	syncer := newFakeSyncer()
	s := newTestUserService(newUserRepo(a, b), newOrgRepo(), syncer)

	_, err := s.Update(context.Background(), a.ID, model.UserUpdateRequest{Email: &b.Email})
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
	assert.Empty(t, syncer.calls)
}

func TestUserUpdateSameEmailAllowed(t *testing.T) {
	a := fakeUser()
	syncer := newFakeSyncer()
	s := newTestUserService(newUserRepo(a), newOrgRepo(), syncer)

	email := strings.ToUpper(a.Email)
	_, err := s.Update(context.Background(), a.ID, model.UserUpdateRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, []string{"user.update"}, syncer.methods())
}

func TestUserDeactivateAndReactivate(t *testing.T) {
	existing := fakeUser()
	users := newUserRepo(existing)
	syncer := newFakeSyncer()
	s := newTestUserService(users, newOrgRepo(), syncer)

	_, err := s.Reactivate(context.Background(), existing.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyActive)

	require.NoError(t, s.Deactivate(context.Background(), existing.ID))

	resp, err := s.Reactivate(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	assert.Equal(t, []string{"user.deactivate", "user.reactivate"}, syncer.methods())
}

func TestUserListExcludesAdmins(t *testing.T) {
	admin := fakeUser()
	regular := fakeUser()
	users := newUserRepo(admin, regular)
	s := newTestUserService(users, newOrgRepo(), newFakeSyncer(), admin.Email)

	page, err := s.List(context.Background(), model.UserQueryParams{})
	require.NoError(t, err)

	require.Len(t, page.Users, 1)
	assert.Equal(t, regular.ID, page.Users[0].ID)
	assert.Equal(t, []string{admin.Email}, users.lastFilter.ExcludeEmails)
	assert.Equal(t, DefaultListLimit, page.Limit)
}
