package websocket

import "github.com/stemsi/qbank-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStatus Event = "status"
	EventDone   Event = "done"
	EventError  Event = "error"
	EventPong   Event = "pong"
)

// StatusResponse carries an import job status. Event is EventDone for the
// final message of a stream.
type StatusResponse struct {
	Event  Event                  `json:"event"`
	Status *model.ImportJobStatus `json:"status"`
}

// NewStatusResponse wraps a status, marking finished jobs as done.
func NewStatusResponse(st *model.ImportJobStatus) StatusResponse {
	ev := EventStatus
	if st.State == model.JobStateDone {
		ev = EventDone
	}
	return StatusResponse{Event: ev, Status: st}
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
