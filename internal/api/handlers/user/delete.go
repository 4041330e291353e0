package user

import (
	"context"
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/lenskings/sound-service/internal/services"
	"github.com/lenskings/sound-service/internal/storage"
)

type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}

// HandleUserDeleted removes everything a deleted identity left behind: the
// catalog records first (which yields the blob paths), then the blobs.
func HandleUserDeleted(msg *nats.Msg) {
	var payload UserDeletedPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Printf("[NATS] users.deleted: invalid JSON: %v", err)
		nak(msg)
		return
	}

	userID := payload.UserID
	if userID == "" {
		log.Printf("[NATS] users.deleted: missing user_id")
		nak(msg)
		return
	}

	log.Printf("[NATS] Processing users.deleted for user_id: %s", userID)

	store := storage.GetStore()
	if store == nil {
		log.Printf("[NATS] Catalog store not available")
		nak(msg)
		return
	}

	paths, err := store.DeleteAllForUser(context.Background(), userID)
	if err != nil {
		log.Printf("[NATS] Failed to delete records: %v", err)
		nak(msg)
		return
	}
	log.Printf("[NATS] Deleted %d upload records for user %s", len(paths), userID)

	minioSvc := services.GetMinioService()
	if minioSvc == nil {
		log.Printf("[NATS] MinIO service not available — skipping object deletion")
	} else {
		for _, path := range paths {
			if err := minioSvc.DeleteFile(path); err != nil {
				log.Printf("[NATS] Failed to delete MinIO object %s: %v", path, err)
				nak(msg)
				return
			}
		}
		log.Printf("[NATS] Deleted %d MinIO objects", len(paths))
	}

	log.Printf("[NATS] Successfully cleaned up user %s", userID)
	ack(msg)
}

// ack safely acknowledges the message
func ack(msg *nats.Msg) {
	if err := msg.Ack(); err != nil {
		log.Printf("[NATS] Failed to ack message: %v", err)
	}
}

// nak negatively acknowledges (retry)
func nak(msg *nats.Msg) {
	if err := msg.Nak(); err != nil {
		log.Printf("[NATS] Failed to nak message: %v", err)
	}
}
