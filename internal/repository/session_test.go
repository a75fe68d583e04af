package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/apperror"
	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/testing/suite"
)

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, time.Hour)

	// Given: a session in the middle of a game
	session := entity.NewSession("s1")
	session.State = entity.StateCities
	session.Cities = entity.NewCitiesGame("Москва")

	// When: CreateOrUpdate is called
	err := sessionRepo.CreateOrUpdate(ctx, session)

	// Then: the session is stored with a TTL
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "session:s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// Given: a stored session with an active game
		session := entity.NewSession("s1")
		session.State = entity.StateCities
		session.Cities = entity.NewCitiesGame("Москва")

		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: GetByID is called with the existing ID
		retrieved, err := sessionRepo.GetByID(ctx, "s1")

		// Then: the game state survives the round trip
		require.NoError(t, err)
		assert.Equal(t, entity.StateCities, retrieved.State)
		require.NotNil(t, retrieved.Cities)
		assert.Equal(t, []string{"Москва"}, retrieved.Cities.UsedCities)
		assert.True(t, retrieved.Cities.Active)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// When: GetByID is called with an unknown ID
		_, err := sessionRepo.GetByID(ctx, "missing")

		// Then: ErrSessionNotFound is returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Storage, 0)

	// Given: a stored session
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, entity.NewSession("s1")))

	// When: DeleteByID is called
	err := sessionRepo.DeleteByID(ctx, "s1")

	// Then: the session is gone
	require.NoError(t, err)

	_, err = sessionRepo.GetByID(ctx, "s1")
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)
}
