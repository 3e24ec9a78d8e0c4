package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-sample-storefront/internal/apperr"
)

const streamBuffer = 16

// stream pushes the cart as server-sent events: the current state first, then
// one event per mutation until the client goes away.
func (h *CartHandler) stream(w http.ResponseWriter, r *http.Request) {
	ctx, id, store, err := h.open(w, r)
	if err != nil {
		writeError(ctx, h.Log, w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(ctx, h.Log, w, apperr.New(apperr.CodeInternal, "streaming unsupported"))
		return
	}

	sub := store.Subscribe(streamBuffer)
	defer func() {
		sub.Close()
		if n := sub.Dropped(); n > 0 {
			h.Log.Event(ctx).Int64("dropped", n).Msg("cart stream fell behind")
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, newCartResp(id, store.Lines(), nil)); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeEvent(w, newCartResp(id, ev.Lines, ev.Notifications)); err != nil {
				h.Log.Debug(ctx, "cart stream write failed")
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: cart\ndata: %s\n\n", b)
	return err
}
