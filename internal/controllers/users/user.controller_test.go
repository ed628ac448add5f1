package userController

import (
	"context"
	"errors"
	"testing"
	"time"

	. "resona/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*User
	steps *[]string
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetBySpotifyID(_ context.Context, _ string) (*User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindOrCreateSpotifyUser(_ context.Context, _ SpotifyProfile) (*User, error) {
	return nil, errors.New("not used")
}

func (f *fakeUserRepo) Delete(_ context.Context, _ *gorm.DB, user *User) error {
	delete(f.users, user.ID)
	*f.steps = append(*f.steps, "user")
	return nil
}

func (f *fakeUserRepo) ClearUserCache(_ context.Context, _ *User) error {
	*f.steps = append(*f.steps, "clear-cache")
	return nil
}

type fakeEraseEventRepo struct {
	count int
	steps *[]string
}

func (f *fakeEraseEventRepo) ExistsAt(
	_ context.Context,
	_ *gorm.DB,
	_ uuid.UUID,
	_ time.Time,
) (bool, error) {
	return false, nil
}

func (f *fakeEraseEventRepo) Create(_ context.Context, _ *gorm.DB, _ *PlayEvent) error {
	f.count++
	return nil
}

func (f *fakeEraseEventRepo) GetRecent(
	_ context.Context,
	_ *gorm.DB,
	_ uuid.UUID,
	_ int,
) ([]*PlayEvent, error) {
	return nil, nil
}

func (f *fakeEraseEventRepo) CacheRecent(_ context.Context, _ uuid.UUID, _ []*PlayEvent) {}

func (f *fakeEraseEventRepo) DistinctArtists(_ context.Context, _ uuid.UUID) ([]string, error) {
	return nil, nil
}

func (f *fakeEraseEventRepo) SumDurationSeconds(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeEraseEventRepo) DeleteAllForUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) error {
	f.count = 0
	*f.steps = append(*f.steps, "events")
	return nil
}

func (f *fakeEraseEventRepo) ClearRecentCache(_ context.Context, _ uuid.UUID) {}

type fakeEraseSyncRunRepo struct {
	count int
	steps *[]string
}

func (f *fakeEraseSyncRunRepo) Create(_ context.Context, _ *gorm.DB, _ *SyncRun) error {
	f.count++
	return nil
}

func (f *fakeEraseSyncRunRepo) DeleteAllForUser(_ context.Context, _ *gorm.DB, _ uuid.UUID) error {
	f.count = 0
	*f.steps = append(*f.steps, "sync-runs")
	return nil
}

type fakeSessions struct {
	destroyed []string
}

func (f *fakeSessions) Destroy(_ context.Context, sessionID string) error {
	f.destroyed = append(f.destroyed, sessionID)
	return nil
}

type fakeTransactor struct {
	calls int
	err   error
}

func (f *fakeTransactor) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx, nil)
}

type erasureFixture struct {
	controller *UserController
	user       *User
	userRepo   *fakeUserRepo
	events     *fakeEraseEventRepo
	syncRuns   *fakeEraseSyncRunRepo
	sessions   *fakeSessions
	tx         *fakeTransactor
	steps      *[]string
}

func newErasureFixture() *erasureFixture {
	steps := &[]string{}

	user := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		SpotifyUserID: "spotify-123",
		DisplayName:   "Listener",
	}

	userRepo := &fakeUserRepo{
		users: map[uuid.UUID]*User{user.ID: user},
		steps: steps,
	}
	events := &fakeEraseEventRepo{count: 3, steps: steps}
	syncRuns := &fakeEraseSyncRunRepo{count: 2, steps: steps}
	sessions := &fakeSessions{}
	tx := &fakeTransactor{}

	return &erasureFixture{
		controller: &UserController{
			userRepo:      userRepo,
			playEventRepo: events,
			syncRunRepo:   syncRuns,
			sessions:      sessions,
			transaction:   tx,
			log:           logger.New("userController"),
		},
		user:     user,
		userRepo: userRepo,
		events:   events,
		syncRuns: syncRuns,
		sessions: sessions,
		tx:       tx,
		steps:    steps,
	}
}

func TestGetProfile(t *testing.T) {
	f := newErasureFixture()

	profile, err := f.controller.GetProfile(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "spotify-123", profile.ID)
	assert.Equal(t, "Listener", profile.DisplayName)
}

func TestGetProfile_UnknownUser(t *testing.T) {
	f := newErasureFixture()

	_, err := f.controller.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMyData_ErasesEverythingInOneTransaction(t *testing.T) {
	f := newErasureFixture()

	err := f.controller.DeleteMyData(context.Background(), f.user, "session-abc")
	require.NoError(t, err)

	assert.Equal(t, 1, f.tx.calls, "all deletes must share one transaction")
	assert.Equal(
		t,
		[]string{"events", "sync-runs", "user", "clear-cache"},
		*f.steps,
		"child rows go first, cache cleanup after the transaction",
	)
	assert.Zero(t, f.events.count)
	assert.Zero(t, f.syncRuns.count)
	assert.Equal(t, []string{"session-abc"}, f.sessions.destroyed)
}

func TestDeleteMyData_ThenProfileReadIsNotFound(t *testing.T) {
	f := newErasureFixture()

	require.NoError(t, f.controller.DeleteMyData(context.Background(), f.user, "session-abc"))

	_, err := f.controller.GetProfile(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMyData_TransactionFailureErasesNothing(t *testing.T) {
	f := newErasureFixture()
	f.tx.err = gorm.ErrInvalidTransaction

	err := f.controller.DeleteMyData(context.Background(), f.user, "session-abc")
	require.Error(t, err)

	assert.Empty(t, *f.steps, "no deletes may land outside the failed transaction")
	assert.Equal(t, 3, f.events.count)
	assert.Empty(t, f.sessions.destroyed, "session survives a failed erasure")

	profile, profileErr := f.controller.GetProfile(context.Background(), f.user.ID)
	require.NoError(t, profileErr)
	assert.Equal(t, "spotify-123", profile.ID)
}
