package ravenna

import (
	"github.com/avoip/herald/src/herald/mdns"

	"github.com/dogmatiq/dodeca/logging"
)

// RTSPHandler claims queries for the RAVENNA RTSP service subtype.
//
// The RTSP service instances are advertised by the HTTPAdvertiser alongside
// the HTTP instances; this handler exists so that direct queries for the
// RTSP subtype are recognized rather than logged as unhandled.
type RTSPHandler struct {
	logger logging.Logger
}

// NewRTSPHandler returns a handler that claims RAVENNA RTSP queries.
func NewRTSPHandler(logger logging.Logger) *RTSPHandler {
	if logger == nil {
		logger = logging.DefaultLogger
	}

	return &RTSPHandler{logger}
}

// HandleQuestion claims queries for the RAVENNA RTSP service subtype without
// producing answers.
func (h *RTSPHandler) HandleQuestion(q *mdns.Question, _ mdns.AnswerList) mdns.Disposition {
	if !q.Name.Equal(rtspService) {
		return mdns.NotYetHandled
	}

	logging.Debug(h.logger, "claiming RAVENNA RTSP query")

	return mdns.Handled
}

// HandleReply is a no-op; the handler only claims questions.
func (h *RTSPHandler) HandleReply([]mdns.Reply) mdns.Disposition {
	return mdns.NotYetHandled
}
