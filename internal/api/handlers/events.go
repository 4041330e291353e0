package handlers

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/lenskings/sound-service/internal/api/handlers/util"
	"github.com/lenskings/sound-service/internal/configuration"
)

type UploadCreatedEvent struct {
	UploadID    string `json:"upload_id"`
	StoragePath string `json:"storage_path"`
	Category    string `json:"category"`
}

// HandleUploadCreated reacts to a confirmed upload by scheduling a malware
// scan of the stored object.
func HandleUploadCreated(msg *nats.Msg) {
	log.Println("[NATS] Received uploads.created")

	var payload UploadCreatedEvent
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Printf("[NATS] uploads.created: invalid payload: %v", err)
		_ = msg.Nak()
		return
	}
	if payload.UploadID == "" || payload.StoragePath == "" {
		log.Printf("[NATS] uploads.created: missing upload_id or storage_path")
		_ = msg.Nak()
		return
	}

	log.Printf("[NATS] Upload created: %s (%s)", payload.UploadID, payload.Category)

	cfg := configuration.Load()
	go util.ScanUpload(payload.UploadID, payload.StoragePath, cfg.CLAMAVURL)

	_ = msg.Ack()
}
