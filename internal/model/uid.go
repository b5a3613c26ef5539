package model

import (
	"strconv"

	"github.com/google/uuid"
)

// EventNamespace scopes the name-based UUIDs derived for board events.
var EventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Tiliavir/resource-board/event"))

// EventUID returns a stable UUID for the event id within periodKey. The same
// pair always yields the same UUID, so re-exports and re-publishes are idempotent.
func EventUID(periodKey string, id int64) uuid.UUID {
	return uuid.NewSHA1(EventNamespace, []byte(periodKey+"/"+strconv.FormatInt(id, 10)))
}
