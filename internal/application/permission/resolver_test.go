package permission

import (
	"context"
	"testing"

	"github.com/drughub-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRoleStore struct{ mock.Mock }

func (m *mockRoleStore) GetByIDs(ctx context.Context, ids []string) ([]domain.Role, error) {
	args := m.Called(ctx, ids)
	if r, _ := args.Get(0).([]domain.Role); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestResolve_UnionsAndDeduplicates(t *testing.T) {
	us, rs := &mockUserStore{}, &mockRoleStore{}
	us.On("GetByID", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", RoleIDs: []string{"r1", "r2"}}, nil)
	rs.On("GetByIDs", mock.Anything, []string{"r1", "r2"}).Return([]domain.Role{
		{RoleID: "r1", Name: "clerk", Permissions: []string{"view_orders", "view_profile"}},
		{RoleID: "r2", Name: "stock", Permissions: []string{"edit_products", "view_orders"}},
	}, nil)

	perms := NewResolver(us, rs).Resolve(context.Background(), "u1")
	assert.Equal(t, []string{"edit_products", "view_orders", "view_profile"}, perms)
}

func TestResolve_UnknownAccountIsEmptySet(t *testing.T) {
	us, rs := &mockUserStore{}, &mockRoleStore{}
	us.On("GetByID", mock.Anything, "ghost").Return(nil, nil)

	perms := NewResolver(us, rs).Resolve(context.Background(), "ghost")
	assert.NotNil(t, perms)
	assert.Empty(t, perms)
	rs.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestResolve_NoRolesIsEmptySet(t *testing.T) {
	us, rs := &mockUserStore{}, &mockRoleStore{}
	us.On("GetByID", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	perms := NewResolver(us, rs).Resolve(context.Background(), "u1")
	assert.Empty(t, perms)
}

func TestResolve_StoreFailureDegradesToEmptySet(t *testing.T) {
	us, rs := &mockUserStore{}, &mockRoleStore{}
	us.On("GetByID", mock.Anything, "u1").Return(nil, domain.ErrStoreUnavailable)

	perms := NewResolver(us, rs).Resolve(context.Background(), "u1")
	assert.NotNil(t, perms)
	assert.Empty(t, perms)
}

func TestResolve_RoleStoreFailureDegradesToEmptySet(t *testing.T) {
	us, rs := &mockUserStore{}, &mockRoleStore{}
	us.On("GetByID", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", RoleIDs: []string{"r1"}}, nil)
	rs.On("GetByIDs", mock.Anything, []string{"r1"}).Return(nil, domain.ErrStoreUnavailable)

	perms := NewResolver(us, rs).Resolve(context.Background(), "u1")
	assert.Empty(t, perms)
}
