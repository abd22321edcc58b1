// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tdh3

import (
	"fmt"
	"time"
)

// Event is one decoded packet, decode error or stream-level anomaly
type Event struct {
	Offset    time.Duration
	Packet    *Packet
	Err       error
	Anomalies []ValidationError
}

// Analysis is the result of replaying a capture
type Analysis struct {
	Events []Event
	Stats  *Statistics
}

// Anomalous reports whether the capture contains any error or anomaly
func (a *Analysis) Anomalous() bool {
	return a.Stats.Errors() > 0
}

// Analyze replays a capture through the decoder and validators. Received
// bytes before the first packet are handshake traffic; afterwards each one
// acknowledges the outstanding packet.
func Analyze(c *Capture) *Analysis {
	decoder := NewDecoder()
	validator := NewSequenceValidator()
	stats := NewStatistics()
	analysis := &Analysis{Stats: stats}

	pending := 0
	lastIndex := 0
	transferring := false
	var last time.Duration

	for _, frame := range c.Frames {
		last = frame.Offset

		switch frame.Dir {
		case DirRx:
			for _, b := range frame.Data {
				if !transferring {
					if b == SentinelByte {
						stats.Sentinels++
					}
					continue
				}
				if pending > 0 {
					stats.Ack(b)
					pending--
				}
			}

		case DirTx:
			for _, b := range frame.Data {
				packet, err := decoder.DecodeByte(b)
				if err != nil {
					stats.Update(nil, err, nil)
					analysis.Events = append(analysis.Events, Event{Offset: frame.Offset, Err: err})
					continue
				}
				if packet == nil {
					continue
				}

				transferring = true
				anomalies := validator.Check(packet)
				if pending > 0 {
					anomalies = append(anomalies, missingAck(lastIndex))
				}
				pending = 1
				lastIndex = packet.Index()

				stats.Update(packet, nil, anomalies)
				analysis.Events = append(analysis.Events, Event{
					Offset:    frame.Offset,
					Packet:    packet,
					Anomalies: anomalies,
				})
			}
		}
	}

	var trailing []ValidationError
	if pending > 0 {
		trailing = append(trailing, ValidationError{
			Type:    AnomalyMissingAck,
			Message: fmt.Sprintf("Capture ended before block %d was acknowledged", lastIndex),
			Details: map[string]interface{}{"index": lastIndex},
		})
	}
	trailing = append(trailing, validator.Finish()...)
	if len(trailing) > 0 {
		stats.countAnomalies(trailing)
		analysis.Events = append(analysis.Events, Event{Offset: last, Anomalies: trailing})
	}

	stats.InitSequences = uint64(decoder.InitCount())
	stats.Duration = last
	return analysis
}

func missingAck(index int) ValidationError {
	return ValidationError{
		Type:    AnomalyMissingAck,
		Message: fmt.Sprintf("Block %d was never acknowledged", index),
		Details: map[string]interface{}{"index": index},
	}
}
