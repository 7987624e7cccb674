package api

import (
	"fmt"
	"net/http"
)

// handleSSE opens the Server-Sent Events stream for the authenticated
// user. Events arrive on the broker channel until the client disconnects.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	caller, err := s.callerFromContext(r)
	if err != nil {
		s.errorJSON(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	if s.config.FrontendURL != "" {
		w.Header().Set("Access-Control-Allow-Origin", s.config.FrontendURL)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorJSON(w, fmt.Errorf("streaming unsupported"))
		return
	}

	clientChan := s.broker.Subscribe(caller.ID)
	defer s.broker.Unsubscribe(caller.ID, clientChan)

	for {
		select {
		case message, open := <-clientChan:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
