// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package eventlog

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vigil/internal/logging"
	"github.com/tomtom215/vigil/internal/metrics"
	"github.com/tomtom215/vigil/internal/notification"
)

// Source is the part of a transport channel the ingestor needs.
type Source interface {
	OnMessage(func(frame []byte))
	OnError(func(err error))
}

// Ingestor turns raw transport frames into log pushes. Frames that fail to
// decode, and errors reported by the transport itself, are pushed as
// TransportError notifications so the failure is visible in the log.
type Ingestor struct {
	log     *Log
	decoder *notification.Decoder
	logger  zerolog.Logger
}

// NewIngestor creates an Ingestor feeding log.
func NewIngestor(log *Log, decoder *notification.Decoder) *Ingestor {
	return &Ingestor{
		log:     log,
		decoder: decoder,
		logger:  logging.WithComponent("ingestor"),
	}
}

// Attach registers the ingestor's handlers on src.
func (i *Ingestor) Attach(src Source) {
	src.OnMessage(i.HandleFrame)
	src.OnError(i.HandleError)
}

// HandleFrame decodes one frame and pushes the result.
func (i *Ingestor) HandleFrame(frame []byte) {
	n, err := i.decoder.Decode(frame)
	if err != nil {
		reason := "malformed"
		if errors.Is(err, notification.ErrUnknownKind) {
			reason = "unknown_kind"
		}
		metrics.DecodeFailures.WithLabelValues("notification", reason).Inc()
		i.logger.Warn().Err(err).Int("frame_bytes", len(frame)).Msg("Undecodable notification frame")
		n = notification.NewTransportError(err, frame)
	}
	i.push(n)
}

// HandleError records a transport-level failure.
func (i *Ingestor) HandleError(err error) {
	i.push(notification.NewTransportError(err, nil))
}

func (i *Ingestor) push(n notification.Notification) {
	if err := i.log.Push(n); err != nil {
		i.logger.Error().Err(err).Str("kind", string(n.Kind())).Msg("Notification log push failed")
	}
}
