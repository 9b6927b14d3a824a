package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"lilypad/internal/config"
	"lilypad/internal/engine"
	"lilypad/internal/media"
	"lilypad/internal/middleware"
	"lilypad/internal/utils"
	"lilypad/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestServer(t *testing.T, uploader *media.Uploader) *Server {
	t.Helper()
	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector()
	hub := websocket.NewHub()
	go hub.Run()
	eng := engine.NewEngine(system, nil, hub, metrics)
	return NewServer(system, eng, metrics, hub, uploader)
}

func newTestUploader(t *testing.T) *media.Uploader {
	t.Helper()
	uploader, err := media.NewUploader(context.Background(), &config.MediaConfig{
		Bucket: "test-bucket",
		Region: "us-east-1",
	})
	if err != nil {
		t.Fatalf("Failed to build uploader: %v", err)
	}
	return uploader
}

func imageMessageRequest(t *testing.T, userID, toID uuid.UUID, imageSize int) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("toId", toID.String()); err != nil {
		t.Fatalf("Failed to write field: %v", err)
	}
	part, err := writer.CreateFormFile("image", "photo.jpg")
	if err != nil {
		t.Fatalf("Failed to create file part: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte{0xAB}, imageSize)); err != nil {
		t.Fatalf("Failed to write image bytes: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/messages/image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(middleware.SetUserIDInContext(req.Context(), userID))
}

// A body over the upload cap must be rejected before anything reaches the
// storage path.
func TestImageMessageRejectsOversizedBody(t *testing.T) {
	server := newTestServer(t, newTestUploader(t))

	req := imageMessageRequest(t, uuid.New(), uuid.New(), maxImageUploadBytes+1)
	rec := httptest.NewRecorder()
	server.HandleImageMessage()(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImageMessageWithoutStorageConfigured(t *testing.T) {
	server := newTestServer(t, nil)

	req := imageMessageRequest(t, uuid.New(), uuid.New(), 16)
	rec := httptest.NewRecorder()
	server.HandleImageMessage()(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImageMessageRequiresAuth(t *testing.T) {
	server := newTestServer(t, newTestUploader(t))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	assert.NoError(t, writer.WriteField("toId", uuid.New().String()))
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/messages/image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.HandleImageMessage()(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
