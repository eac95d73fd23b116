package access

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/qbic/datamanager/internal/domain/access"
	"github.com/qbic/datamanager/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockACL struct {
	mock.Mock
}

func (m *mockACL) Grant(ctx context.Context, entries ...access.Entry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *mockACL) Deny(ctx context.Context, entry access.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockACL) DenyAll(ctx context.Context, projectID uuid.UUID, sid string, principal bool) error {
	return m.Called(ctx, projectID, sid, principal).Error(0)
}

func (m *mockACL) FindByProject(ctx context.Context, projectID uuid.UUID) ([]access.Entry, error) {
	args := m.Called(ctx, projectID)
	entries, _ := args.Get(0).([]access.Entry)
	return entries, args.Error(1)
}

func (m *mockACL) Exists(ctx context.Context, projectID uuid.UUID, sids []string, permission access.Permission) (bool, error) {
	args := m.Called(ctx, projectID, sids, permission)
	return args.Bool(0), args.Error(1)
}

func (m *mockACL) ProjectIDs(ctx context.Context, sids []string, permission access.Permission) ([]uuid.UUID, error) {
	args := m.Called(ctx, sids, permission)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *mockACL) AllProjectIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *mockACL) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	return m.Called(ctx, projectID).Error(0)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func TestService_GrantCreator(t *testing.T) {
	acl := new(mockACL)
	svc := NewService(acl, nil, zap.NewNop())
	projectID, userID := uuid.New(), uuid.New()

	acl.On("Grant", mock.Anything, mock.MatchedBy(func(entries []access.Entry) bool {
		return len(entries) == 3 && entries[2].Permission == access.PermissionAdmin && entries[0].Sid == userID.String()
	})).Return(nil)

	require.NoError(t, svc.GrantCreator(context.Background(), projectID, userID))
	acl.AssertExpectations(t)
}

func TestService_Grant(t *testing.T) {
	acl := new(mockACL)
	pub := &recordingPublisher{}
	svc := NewService(acl, pub, zap.NewNop())
	projectID, userID := uuid.New(), uuid.New()

	acl.On("Grant", mock.Anything, []access.Entry{
		access.UserEntry(projectID, userID, access.PermissionRead),
		access.UserEntry(projectID, userID, access.PermissionWrite),
	}).Return(nil)

	require.NoError(t, svc.Grant(context.Background(), projectID, userID, access.PermissionWrite))
	require.Len(t, pub.events, 1)
	granted := pub.events[0].(*access.AccessGrantedEvent)
	assert.Equal(t, userID, granted.UserID)
	assert.Equal(t, access.PermissionWrite, granted.Permission)
}

func TestService_Listings(t *testing.T) {
	acl := new(mockACL)
	svc := NewService(acl, nil, zap.NewNop())
	projectID, alice, bob := uuid.New(), uuid.New(), uuid.New()

	acl.On("FindByProject", mock.Anything, projectID).Return([]access.Entry{
		access.UserEntry(projectID, alice, access.PermissionRead),
		access.UserEntry(projectID, alice, access.PermissionWrite),
		access.UserEntry(projectID, bob, access.PermissionRead),
		access.AuthorityEntry(projectID, "ROLE_PROJECT_MANAGER", access.PermissionWrite),
		{ProjectID: projectID, Sid: "not-a-uuid", Principal: true, Permission: access.PermissionRead},
	}, nil)

	users, err := svc.ListUserIDs(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice, bob}, users)

	writers, err := svc.ListUserIDsWithPermission(context.Background(), projectID, access.PermissionWrite)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice}, writers)

	authorities, err := svc.ListAuthorities(context.Background(), projectID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_PROJECT_MANAGER"}, authorities)

	readers, err := svc.ListAuthoritiesForPermission(context.Background(), projectID, access.PermissionRead)
	require.NoError(t, err)
	assert.Empty(t, readers)
}

func TestService_Permissions(t *testing.T) {
	projectID, userID := uuid.New(), uuid.New()
	user := access.Subject{UserID: userID, Authorities: []string{"ROLE_USER"}}
	admin := access.Subject{UserID: uuid.New(), Authorities: []string{access.AdminAuthority}}

	t.Run("admin holds everything", func(t *testing.T) {
		acl := new(mockACL)
		svc := NewService(acl, nil, zap.NewNop())

		ok, err := svc.HasPermission(context.Background(), admin, projectID, access.PermissionAdmin)
		require.NoError(t, err)
		assert.True(t, ok)

		ids, err := svc.AccessibleProjectIDs(context.Background(), admin, access.PermissionRead)
		require.NoError(t, err)
		assert.Nil(t, ids)
		acl.AssertNotCalled(t, "Exists")
	})

	t.Run("user without entry is denied", func(t *testing.T) {
		acl := new(mockACL)
		svc := NewService(acl, nil, zap.NewNop())
		acl.On("Exists", mock.Anything, projectID, user.Sids(), access.PermissionWrite).Return(false, nil)

		err := svc.Require(context.Background(), user, projectID, access.PermissionWrite)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("no accessible projects is empty, not nil", func(t *testing.T) {
		acl := new(mockACL)
		svc := NewService(acl, nil, zap.NewNop())
		acl.On("ProjectIDs", mock.Anything, user.Sids(), access.PermissionRead).Return(nil, nil)

		ids, err := svc.AccessibleProjectIDs(context.Background(), user, access.PermissionRead)
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})
}
