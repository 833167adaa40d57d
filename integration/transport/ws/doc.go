// Package ws adapts a gorilla WebSocket connection to the dispatcher's
// Transport interface.
//
// It is the push-capable transport of the live sub-channel: text frames in
// both directions, a write mutex so live pages can push from application
// goroutines while the dispatcher answers requests, and close-error
// normalization so the dispatcher sees a plain io.EOF on every orderly end
// of stream.
//
//	http.HandleFunc("/bridge", func(w http.ResponseWriter, r *http.Request) {
//		t, err := ws.Upgrade(w, r, ws.WithAllowAnyOrigin())
//		if err != nil {
//			return
//		}
//		go d.Serve(r.Context(), t)
//	})
package ws
