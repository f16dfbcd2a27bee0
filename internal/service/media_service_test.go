package service

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stemsi/school-directory/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMediaService(t *testing.T, at time.Time) *MediaService {
	t.Helper()
	cfg := testutil.GetTestConfig(t)
	s := NewMediaService(cfg)
	s.now = func() time.Time { return at }
	return s
}

func TestMediaSaveNamesFileByTimestampAndOriginalName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	s := newTestMediaService(t, at)

	path, err := s.SaveUpload(testutil.FileHeader(t, "logo.png", testutil.PNG))
	require.NoError(t, err)

	assert.Equal(t, "/schoolImages/1700000000123-logo.png", path)
	data, err := os.ReadFile(filepath.Join(s.dir, "1700000000123-logo.png"))
	require.NoError(t, err)
	assert.Equal(t, testutil.PNG, data)
}

func TestMediaSaveStripsDirectories(t *testing.T) {
	s := newTestMediaService(t, time.UnixMilli(1))

	cases := []struct {
		in   string
		want string
	}{
		{"../../etc/passwd", "/schoolImages/1-passwd"},
		{`C:\Users\me\photo.jpg`, "/schoolImages/1-photo.jpg"},
		{"", "/schoolImages/1-upload"},
	}
	for _, tc := range cases {
		path, err := s.Save(tc.in, bytes.NewReader(testutil.PNG))
		require.NoError(t, err)
		assert.Equal(t, tc.want, path, "input %q", tc.in)
	}
}

func TestMediaSaveRefusesToOverwriteOnCollision(t *testing.T) {
	s := newTestMediaService(t, time.UnixMilli(42))

	_, err := s.Save("logo.png", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	_, err = s.Save("logo.png", bytes.NewReader([]byte("second")))
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(s.dir, "42-logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestMediaSaveUploadRejectsLargeFiles(t *testing.T) {
	s := newTestMediaService(t, time.UnixMilli(1))
	s.maxBytes = 4

	_, err := s.SaveUpload(testutil.FileHeader(t, "logo.png", testutil.PNG))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	entries, _ := os.ReadDir(s.dir)
	assert.Empty(t, entries)
}
