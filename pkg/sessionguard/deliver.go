package sessionguard

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/interviewkit/pkg/broadcast"
)

// deliver hands every message of sub to h in order until sub is closed.
// Changes lost to a full subscriber buffer are reported at Warn: one of them
// may have been a sign-out the guard never saw.
func deliver(ctx context.Context, sub broadcast.Subscriber[Change], h ChangeHandler, log *slog.Logger) {
	var reported uint64
	report := func() {
		dropped := sub.Dropped()
		if dropped <= reported {
			return
		}
		log.WarnContext(ctx, "session changes dropped, subscriber buffer full",
			slog.Uint64("dropped", dropped-reported))
		reported = dropped
	}

	for msg := range sub.Receive() {
		h(ctx, msg.Data)
		report()
	}
	report()
}
