package realtime

import (
	"errors"

	"github.com/rs/zerolog/log"
)

var (
	// ErrSessionClosed is returned when sending to a session whose
	// connection has already gone away
	ErrSessionClosed = errors.New("session closed")
	// ErrSendBufferFull is returned when a slow client has not drained
	// its outbound queue
	ErrSendBufferFull = errors.New("session send buffer full")
)

// Session is a single live client connection. Send must not block.
type Session interface {
	ID() string
	Send(event string, payload any) error
	Close() error
}

// DeliveryReport records the per-session outcome of one push
type DeliveryReport struct {
	Delivered []string         `json:"delivered"`
	Failed    map[string]error `json:"-"`
}

// Attempted returns how many sessions the push was addressed to
func (r DeliveryReport) Attempted() int {
	return len(r.Delivered) + len(r.Failed)
}

// deliver pushes event to every session and records each outcome.
// Failures are logged and never returned to the caller.
func deliver(sessions []Session, event string, payload any) DeliveryReport {
	report := DeliveryReport{Delivered: make([]string, 0, len(sessions))}
	for _, s := range sessions {
		if err := s.Send(event, payload); err != nil {
			if report.Failed == nil {
				report.Failed = make(map[string]error)
			}
			report.Failed[s.ID()] = err
			log.Warn().
				Err(err).
				Str("session_id", s.ID()).
				Str("event", event).
				Msg("push to session failed")
			continue
		}
		report.Delivered = append(report.Delivered, s.ID())
	}
	return report
}
