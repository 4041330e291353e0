package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenskings/sound-service/internal/models"
	"github.com/lenskings/sound-service/internal/storage"
	"github.com/lenskings/sound-service/internal/upload"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.LocalStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := storage.NewLocalStore("")
	require.NoError(t, err)
	storage.Initialize(store)

	r := gin.New()
	// stand-in for the OIDC middleware
	authed := func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Set("user_email", "a@b.com")
		c.Next()
	}

	r.GET("/api/categories", ListCategories)
	r.GET("/api/categories/:category/files", ListCategoryFiles)
	r.GET("/api/files/recent", RecentFiles)
	r.GET("/api/files/:id", GetFileInfo)
	r.GET("/api/profile/files", authed, MyUploads)
	return r, store
}

func seedConfirmed(t *testing.T, store *storage.LocalStore, title, userID, email string, category models.Category, ts time.Time) models.UploadRecord {
	t.Helper()
	rec := models.UploadRecord{
		Title:       title,
		Category:    category,
		FileName:    title + ".sty",
		StoragePath: "uploads/" + category.String() + "/" + userID + "/" + title,
		UserID:      userID,
		UserEmail:   email,
		Timestamp:   ts,
	}
	require.NoError(t, store.CreatePending(context.Background(), &rec))
	require.NoError(t, store.Confirm(context.Background(), rec.ID, "https://blobs.example.com/"+rec.StoragePath))
	return rec
}

func doGet(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	body := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

// fakeBlobStore stands in for MinIO at the HTTP boundary.
type fakeBlobStore struct {
	objects  map[string][]byte
	putCalls int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(_ context.Context, path string, r io.Reader, size int64, _ string, onProgress func(transferred, total int64)) error {
	f.putCalls++
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[path] = data
	if onProgress != nil {
		onProgress(size, size)
	}
	return nil
}

func (f *fakeBlobStore) RetrievalURL(_ context.Context, path string) (string, error) {
	return "https://blobs.example.com/" + path, nil
}

// countingStore tracks how often the workflow reaches the catalog.
type countingStore struct {
	*storage.LocalStore
	pendingCalls int
}

func (s *countingStore) CreatePending(ctx context.Context, rec *models.UploadRecord) error {
	s.pendingCalls++
	return s.LocalStore.CreatePending(ctx, rec)
}

func withFakeBlobs(t *testing.T, f *fakeBlobStore) {
	t.Helper()
	orig := blobCollaborator
	blobCollaborator = func() upload.BlobStore { return f }
	t.Cleanup(func() { blobCollaborator = orig })
}

func newUploadRouter(t *testing.T) (*gin.Engine, *countingStore, *fakeBlobStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	local, err := storage.NewLocalStore("")
	require.NoError(t, err)
	cs := &countingStore{LocalStore: local}
	storage.Initialize(cs)

	blobs := newFakeBlobStore()
	withFakeBlobs(t, blobs)

	r := gin.New()
	authed := func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Set("user_email", "a@b.com")
		c.Next()
	}
	r.POST("/api/uploads", authed, UploadFile)
	return r, cs, blobs
}

func postUpload(t *testing.T, r *gin.Engine, fields map[string]string, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	return w
}

func TestUploadFileSuccess(t *testing.T) {
	r, cs, blobs := newUploadRouter(t)

	w := postUpload(t, r, map[string]string{
		"title":    "Gospel Shout",
		"category": "styles",
	}, "shout.sff2", []byte("sff2 style payload bytes"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	var rec models.UploadRecord
	require.NoError(t, json.Unmarshal(body["file"], &rec))

	assert.Equal(t, models.StatusConfirmed, rec.Status)
	assert.Equal(t, "Gospel-Shout.sff2", rec.FileName)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, "a@b.com", rec.UserEmail)
	assert.Equal(t, "https://blobs.example.com/uploads/styles/u1/Gospel-Shout.sff2", rec.DownloadURL)

	assert.Equal(t, 1, blobs.putCalls)
	assert.Equal(t, []byte("sff2 style payload bytes"), blobs.objects[rec.StoragePath])

	listed, err := cs.ListCategory(context.Background(), models.CategoryStyles, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, rec.ID, listed[0].ID)
}

func TestUploadFileMissingTitle(t *testing.T) {
	r, cs, blobs := newUploadRouter(t)

	w := postUpload(t, r, map[string]string{
		"title":    "   ",
		"category": "styles",
	}, "shout.sff2", []byte("payload"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title")

	// no side effect of any kind
	assert.Zero(t, cs.pendingCalls)
	assert.Zero(t, blobs.putCalls)
}

func TestUploadFileMissingFile(t *testing.T) {
	r, cs, blobs := newUploadRouter(t)

	w := postUpload(t, r, map[string]string{
		"title":    "Gospel Shout",
		"category": "styles",
	}, "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no file selected")

	assert.Zero(t, cs.pendingCalls)
	assert.Zero(t, blobs.putCalls)
}

func TestUploadFileUnknownCategory(t *testing.T) {
	r, cs, blobs := newUploadRouter(t)

	w := postUpload(t, r, map[string]string{
		"title":    "Gospel Shout",
		"category": "drums",
	}, "shout.sff2", []byte("payload"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown category")

	assert.Zero(t, cs.pendingCalls)
	assert.Zero(t, blobs.putCalls)
}

func TestUploadFileUnauthenticated(t *testing.T) {
	_, cs, blobs := newUploadRouter(t)

	// same handler without the auth middleware attached
	bare := gin.New()
	bare.POST("/api/uploads", UploadFile)

	w := postUpload(t, bare, map[string]string{
		"title":    "Gospel Shout",
		"category": "styles",
	}, "shout.sff2", []byte("payload"))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, cs.pendingCalls)
	assert.Zero(t, blobs.putCalls)
}

func TestListCategoryFiles(t *testing.T) {
	r, store := newTestRouter(t)
	now := time.Now().UTC()
	seedConfirmed(t, store, "Gospel Shout", "u1", "a@b.com", models.CategoryStyles, now.Add(-time.Hour))
	newest := seedConfirmed(t, store, "Praise Break", "u2", "c@d.com", models.CategoryStyles, now)
	seedConfirmed(t, store, "Strings", "u1", "a@b.com", models.CategoryVoices, now)

	w, body := doGet(t, r, "/api/categories/styles/files")
	require.Equal(t, http.StatusOK, w.Code)

	var files []models.UploadRecord
	require.NoError(t, json.Unmarshal(body["files"], &files))
	require.Len(t, files, 2)
	assert.Equal(t, newest.ID, files[0].ID)
}

func TestListCategoryFilesAcceptsLegacySpelling(t *testing.T) {
	r, store := newTestRouter(t)
	seedConfirmed(t, store, "Pad Kit", "u1", "a@b.com", models.CategoryMultipads, time.Now().UTC())

	w, body := doGet(t, r, "/api/categories/Multipads/files")
	require.Equal(t, http.StatusOK, w.Code)

	var files []models.UploadRecord
	require.NoError(t, json.Unmarshal(body["files"], &files))
	assert.Len(t, files, 1)
}

func TestListCategoryFilesUnknownCategory(t *testing.T) {
	r, _ := newTestRouter(t)
	w, _ := doGet(t, r, "/api/categories/drums/files")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategoryFilesSearch(t *testing.T) {
	r, store := newTestRouter(t)
	now := time.Now().UTC()
	seedConfirmed(t, store, "Gospel Shout", "u1", "organist@church.org", models.CategoryStyles, now)
	seedConfirmed(t, store, "Praise Break", "u2", "drummer@band.com", models.CategoryStyles, now)

	w, body := doGet(t, r, "/api/categories/styles/files?search=GOSPEL")
	require.Equal(t, http.StatusOK, w.Code)

	var files []models.UploadRecord
	require.NoError(t, json.Unmarshal(body["files"], &files))
	require.Len(t, files, 1)
	assert.Equal(t, "Gospel Shout", files[0].Title)
}

func TestRecentFiles(t *testing.T) {
	r, store := newTestRouter(t)
	now := time.Now().UTC()
	for i := 0; i < 8; i++ {
		seedConfirmed(t, store, "Beat", "u1", "a@b.com", models.CategoryAudiobeats, now.Add(time.Duration(-i)*time.Minute))
	}

	w, body := doGet(t, r, "/api/files/recent")
	require.Equal(t, http.StatusOK, w.Code)

	var files []models.UploadRecord
	require.NoError(t, json.Unmarshal(body["files"], &files))
	assert.Len(t, files, 6) // default limit
}

func TestGetFileInfo(t *testing.T) {
	r, store := newTestRouter(t)
	rec := seedConfirmed(t, store, "Gospel Shout", "u1", "a@b.com", models.CategoryStyles, time.Now().UTC())

	w, body := doGet(t, r, "/api/files/"+rec.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.UploadRecord
	require.NoError(t, json.Unmarshal(body["file"], &got))
	assert.Equal(t, rec.ID, got.ID)
	assert.NotEmpty(t, got.DownloadURL)

	w, _ = doGet(t, r, "/api/files/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetFileInfoHidesPending(t *testing.T) {
	r, store := newTestRouter(t)
	rec := models.UploadRecord{Title: "Half Done", Category: models.CategoryStyles, UserID: "u1"}
	require.NoError(t, store.CreatePending(context.Background(), &rec))

	w, _ := doGet(t, r, "/api/files/"+rec.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMyUploads(t *testing.T) {
	r, store := newTestRouter(t)
	now := time.Now().UTC()
	seedConfirmed(t, store, "Mine", "u1", "a@b.com", models.CategoryStyles, now)
	seedConfirmed(t, store, "Theirs", "u2", "c@d.com", models.CategoryStyles, now)

	w, body := doGet(t, r, "/api/profile/files")
	require.Equal(t, http.StatusOK, w.Code)

	var files []models.UploadRecord
	require.NoError(t, json.Unmarshal(body["files"], &files))
	require.Len(t, files, 1)
	assert.Equal(t, "Mine", files[0].Title)
}

func TestListCategories(t *testing.T) {
	r, store := newTestRouter(t)
	seedConfirmed(t, store, "S1", "u1", "a@b.com", models.CategoryStyles, time.Now().UTC())

	w, body := doGet(t, r, "/api/categories")
	require.Equal(t, http.StatusOK, w.Code)

	var stats []models.CategoryStats
	require.NoError(t, json.Unmarshal(body["categories"], &stats))
	require.Len(t, stats, 5)
}
