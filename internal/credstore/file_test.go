package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_File_SurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveProfile(context.Background(), testProfile()))
	require.NoError(t, store.SaveAccessToken(context.Background(), "access-1"))
	require.NoError(t, store.SaveRefreshToken(context.Background(), "refresh-1"))

	// New store over the same dir models a process restart
	reopened, err := NewFile(dir)
	require.NoError(t, err)

	profile, err := reopened.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)

	access, err := reopened.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)
}

func Test_File_Permissions(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	store, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveAccessToken(context.Background(), "secret"))

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm(), "session dir must be owner only")

	fileInfo, err := os.Stat(filepath.Join(dir, sessionFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm(), "session file must be owner only")
}

func Test_File_EmptyTokenStillCountsStored(t *testing.T) {
	t.Parallel()

	store, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.SaveAccessToken(context.Background(), ""))

	access, err := store.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", access)
}

func Test_SealedFile_WrongPassphrase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := NewSealedFile(dir, "right passphrase")
	require.NoError(t, err)
	require.NoError(t, store.SaveAccessToken(context.Background(), "secret-token"))

	wrong, err := NewSealedFile(dir, "wrong passphrase")
	require.NoError(t, err)

	_, err = wrong.AccessToken(context.Background())
	require.Error(t, err, "wrong passphrase must not read the session")
	assert.NotErrorIs(t, err, ErrNotStored)
}

func Test_SealedFile_SurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := NewSealedFile(dir, "passphrase")
	require.NoError(t, err)
	require.NoError(t, store.SaveRefreshToken(context.Background(), "refresh-1"))

	reopened, err := NewSealedFile(dir, "passphrase")
	require.NoError(t, err)

	refresh, err := reopened.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh)
}

func Test_SealedFile_RequiresPassphrase(t *testing.T) {
	t.Parallel()

	_, err := NewSealedFile(t.TempDir(), "")
	assert.Error(t, err)
}

func Test_SealedFile_ContentNotPlaintext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSealedFile(dir, "passphrase")
	require.NoError(t, err)
	require.NoError(t, store.SaveAccessToken(context.Background(), "super-secret-token"))

	raw, err := os.ReadFile(filepath.Join(dir, sessionFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-token")
}
