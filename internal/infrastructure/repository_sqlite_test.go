package infrastructure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yt-playlist-go/internal/domain"
)

func setupTestRepo(t *testing.T) (*SQLiteRepository, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "repo-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func entry(id, title string) domain.PlaylistEntry {
	return domain.PlaylistEntry{ID: id, Title: title}
}

func TestCreateBatch_AndFindByPlaylist(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	pl := domain.NewPlaylist("https://www.youtube.com/playlist?list=PL1", domain.QualityHigh, "")
	require.NoError(t, repo.CreatePlaylist(pl))

	downloads := []*domain.Download{
		domain.NewDownload(pl.ID, entry("c", "Third"), 3),
		domain.NewDownload(pl.ID, entry("a", "First"), 1),
		domain.NewDownload(pl.ID, entry("b", "Second"), 2),
	}
	require.NoError(t, repo.CreateBatch(downloads))

	found, err := repo.FindByPlaylist(pl.ID)
	require.NoError(t, err)
	require.Len(t, found, 3)

	// Playlist order, not insertion order
	assert.Equal(t, 1, found[0].Index)
	assert.Equal(t, 2, found[1].Index)
	assert.Equal(t, 3, found[2].Index)
}

func TestFindPending_OrdersByPlaylistAndIndex(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	dl2 := domain.NewDownload("pl-a", entry("b", "Second"), 2)
	dl1 := domain.NewDownload("pl-a", entry("a", "First"), 1)
	done := domain.NewDownload("pl-a", entry("c", "Done"), 3)
	done.MarkCompleted("/tmp/file.mp4")

	require.NoError(t, repo.Create(dl2))
	require.NoError(t, repo.Create(dl1))
	require.NoError(t, repo.Create(done))

	pending, err := repo.FindPending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, dl1.ID, pending[0].ID)
	assert.Equal(t, dl2.ID, pending[1].ID)
}

func TestClaimForProcessing(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	dl := domain.NewDownload("pl-a", entry("a", "First"), 1)
	require.NoError(t, repo.Create(dl))

	claimed, err := repo.ClaimForProcessing(dl.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	found, err := repo.FindByID(dl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, found.Status)
	assert.NotNil(t, found.StartedAt)

	// Only one caller wins the claim
	claimed, err = repo.ClaimForProcessing(dl.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestClaimForProcessing_LosesToCancel(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	dl := domain.NewDownload("pl-a", entry("a", "First"), 1)
	require.NoError(t, repo.Create(dl))

	dl.MarkCancelled()
	require.NoError(t, repo.Update(dl))

	claimed, err := repo.ClaimForProcessing(dl.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	found, err := repo.FindByID(dl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, found.Status)
}

func TestResetOrphanedProcessing(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	stuck := domain.NewDownload("pl-a", entry("a", "Stuck"), 1)
	stuck.MarkProcessing()
	require.NoError(t, repo.Create(stuck))

	fine := domain.NewDownload("pl-a", entry("b", "Fine"), 2)
	fine.MarkCompleted("/tmp/file.mp4")
	require.NoError(t, repo.Create(fine))

	n, err := repo.ResetOrphanedProcessing()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := repo.FindByID(stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, found.Status)
}

func TestGetStats(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	queued := domain.NewDownload("pl-a", entry("a", "A"), 1)
	require.NoError(t, repo.Create(queued))

	completed := domain.NewDownload("pl-a", entry("b", "B"), 2)
	completed.MarkCompleted("/tmp/b.mp4")
	require.NoError(t, repo.Create(completed))

	failed := domain.NewDownload("pl-a", entry("c", "C"), 3)
	failed.MarkFailed(assert.AnError)
	require.NoError(t, repo.Create(failed))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Queued)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Processing)
}

func TestFindPlaylistByURL(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	url := "https://www.youtube.com/playlist?list=PL2"
	pl := domain.NewPlaylist(url, domain.Quality360p, "")
	require.NoError(t, repo.CreatePlaylist(pl))

	found, err := repo.FindPlaylistByURL(url)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, pl.ID, found.ID)

	missing, err := repo.FindPlaylistByURL("https://www.youtube.com/playlist?list=NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPlaylistProgress(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	pl := domain.NewPlaylist("https://www.youtube.com/playlist?list=PL3", domain.QualityHigh, "")
	require.NoError(t, repo.CreatePlaylist(pl))

	a := domain.NewDownload(pl.ID, entry("a", "A"), 1)
	a.MarkCompleted("/tmp/a.mp4")
	b := domain.NewDownload(pl.ID, entry("b", "B"), 2)
	b.MarkFailed(assert.AnError)
	c := domain.NewDownload(pl.ID, entry("c", "C"), 3)
	require.NoError(t, repo.CreateBatch([]*domain.Download{a, b, c}))

	progress, err := repo.PlaylistProgress(pl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), progress.Total)
	assert.Equal(t, int64(1), progress.Completed)
	assert.Equal(t, int64(1), progress.Failed)
	assert.False(t, progress.Done(), "one download still queued")

	c.MarkCancelled()
	require.NoError(t, repo.Update(c))

	progress, err = repo.PlaylistProgress(pl.ID)
	require.NoError(t, err)
	assert.True(t, progress.Done())
}

func TestUpdatePlaylist(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	pl := domain.NewPlaylist("https://www.youtube.com/playlist?list=PL4", domain.Quality720p, "")
	require.NoError(t, repo.CreatePlaylist(pl))

	pl.MarkReady("Go Tutorials", "/downloads/Go Tutorials", 10)
	require.NoError(t, repo.UpdatePlaylist(pl))

	found, err := repo.FindPlaylistByID(pl.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlaylistReady, found.Status)
	assert.Equal(t, "Go Tutorials", found.Title)
	assert.Equal(t, 10, found.EntryCount)
}
