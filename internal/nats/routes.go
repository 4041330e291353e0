package nats

import (
	"github.com/nats-io/nats.go"

	"github.com/lenskings/sound-service/internal/api/handlers"
	"github.com/lenskings/sound-service/internal/api/handlers/user"
)

// Routes maps event subjects to their durable consumers.
func Routes() map[string]nats.MsgHandler {
	return map[string]nats.MsgHandler{

		// User events
		"users.deleted": user.HandleUserDeleted,

		// Upload events
		"uploads.created": handlers.HandleUploadCreated,
	}
}
