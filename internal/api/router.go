package api

import (
	"net/http"
	"strings"
)

func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.HandleHealth(w, r)
	})

	mux.HandleFunc("/assistant/", func(w http.ResponseWriter, r *http.Request) {
		// /assistant/state | /show | /hide | /settings | /activity |
		// /position[/reset] | /speak | /speak/stop | /events
		path := strings.TrimSuffix(r.URL.Path, "/")
		rest := strings.TrimPrefix(path, "/assistant/")
		parts := strings.Split(rest, "/")
		if len(parts) == 0 || parts[0] == "" {
			http.NotFound(w, r)
			return
		}
		tail := ""
		if len(parts) > 1 {
			tail = parts[1]
		}

		switch parts[0] {
		case "state":
			switch r.Method {
			case http.MethodGet:
				h.HandleGetState(w, r)
			case http.MethodPost:
				h.HandleSetState(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		case "show":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleShow(w, r)
			return
		case "hide":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleHide(w, r)
			return
		case "settings":
			switch r.Method {
			case http.MethodGet:
				h.HandleGetSettings(w, r)
			case http.MethodPut:
				h.HandleUpdateSettings(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		case "activity":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleActivity(w, r)
			return
		case "position":
			if tail == "reset" {
				if r.Method != http.MethodPost {
					http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
					return
				}
				h.HandleResetPosition(w, r)
				return
			}
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleGetPosition(w, r)
			return
		case "speak":
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			if tail == "stop" {
				h.HandleStopSpeech(w, r)
				return
			}
			h.HandleSpeak(w, r)
			return
		case "events":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleListEvents(w, r)
			return
		default:
			http.NotFound(w, r)
			return
		}
	})

	mux.HandleFunc("/tour/", func(w http.ResponseWriter, r *http.Request) {
		// /tour/start | /next | /prev | /skip | /repeat | /mute | /status | /reset
		action := strings.TrimPrefix(strings.TrimSuffix(r.URL.Path, "/"), "/tour/")

		if action == "status" {
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			h.HandleTourStatus(w, r)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		switch action {
		case "start":
			h.HandleTourStart(w, r)
		case "next":
			h.HandleTourNext(w, r)
		case "prev":
			h.HandleTourPrev(w, r)
		case "skip":
			h.HandleTourSkip(w, r)
		case "repeat":
			h.HandleTourRepeat(w, r)
		case "mute":
			h.HandleTourMute(w, r)
		case "reset":
			h.HandleTourReset(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	return mux
}
