// Package testutil holds fixtures shared by package tests: a migrated SQLite
// store and multipart school forms.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/database"
	"github.com/stemsi/school-directory/internal/model"
	"github.com/stemsi/school-directory/internal/repository"
	"github.com/stretchr/testify/require"
)

// PNG is a tiny payload standing in for an uploaded image.
var PNG = []byte("\x89PNG\r\n\x1a\n-test-image-")

// GetTestConfig returns a config using SQLite in a temp dir and a temp media dir.
func GetTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		GinMode:        "test",
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(dir, "schools.db"),
		MaxDBConns:     1,
		MediaDir:       filepath.Join(dir, "schoolImages"),
		MaxUploadBytes: 1024 * 1024,
	}
}

// NewSQLiteRepository migrates cfg's SQLite database and returns a store on it.
func NewSQLiteRepository(t *testing.T, cfg *config.Config) *repository.SQLSchoolRepository {
	t.Helper()

	require.NoError(t, database.MigrateUp(cfg.DatabaseDriver, cfg.DatabaseURL))

	db, err := database.NewSQLDB(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	repo := repository.NewSQLSchoolRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// OakHill is the canonical registration used across tests.
func OakHill() model.SchoolFields {
	return model.SchoolFields{
		Name:    "Oak Hill",
		Address: "12 Elm St",
		City:    "Springfield",
		State:   "IL",
		Contact: "555-0100",
		EmailID: "a@b.com",
	}
}

// NumberedSchool returns distinct fields for the n-th test school.
func NumberedSchool(n int) model.SchoolFields {
	return model.SchoolFields{
		Name:    fmt.Sprintf("School %d", n),
		Address: fmt.Sprintf("%d Main St", n),
		City:    "Springfield",
		State:   "IL",
		Contact: fmt.Sprintf("555-%04d", n),
		EmailID: fmt.Sprintf("school%d@example.com", n),
	}
}

// FormValues converts fields to the multipart text values of POST /add-school.
func FormValues(f model.SchoolFields) map[string]string {
	return map[string]string{
		"name":     f.Name,
		"address":  f.Address,
		"city":     f.City,
		"state":    f.State,
		"contact":  f.Contact,
		"email_id": f.EmailID,
	}
}

// MultipartForm encodes values plus an optional image part. An empty filename
// omits the image.
func MultipartForm(t *testing.T, values map[string]string, filename string, image []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

// FileHeader produces a parsed multipart file header for service-level tests.
func FileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	body, contentType := MultipartForm(t, nil, filename, data)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["image"][0]
}
