package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/irene-skills/internal/entity"
	"github.com/rocketscienceinc/irene-skills/testing/suite"
)

func newLibraryRepository(t *testing.T) (context.Context, LibraryRepository) {
	t.Helper()

	ctx, db := suite.NewSQLite(t)

	return ctx, NewLibraryRepository(db.Connection)
}

func TestLibraryRepository_Replace(t *testing.T) {
	t.Run("Stores tracks and artists", func(t *testing.T) {
		ctx, repo := newLibraryRepository(t)

		// Given: a scan result
		tracks := []entity.Track{
			{Path: "/m/a.mp3", Artist: "Eminem", Title: "Lose Yourself"},
			{Path: "/m/b.mp3", Artist: "Кино", Title: "Кукушка"},
		}

		// When: the index is replaced
		err := repo.Replace(ctx, tracks, []string{"Кино", "Eminem"})

		// Then: artists and tracks are readable
		require.NoError(t, err)

		artists, err := repo.PureArtists(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Eminem", "Кино"}, artists)

		count, err := repo.CountTracks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Drops the previous index", func(t *testing.T) {
		ctx, repo := newLibraryRepository(t)

		// Given: an existing index
		require.NoError(t, repo.Replace(ctx, []entity.Track{{Path: "/m/a.mp3", Artist: "A", Title: "a"}}, []string{"A"}))

		// When: it is replaced with an empty scan
		require.NoError(t, repo.Replace(ctx, nil, nil))

		// Then: nothing remains
		artists, err := repo.PureArtists(ctx)
		require.NoError(t, err)
		assert.Empty(t, artists)

		count, err := repo.CountTracks(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
