// Package publisher emits location and ETA snapshot events on NATS for
// downstream consumers. The feed is optional; a nil *Publisher is inert.
package publisher

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"trip-coordinator/internal/itinerary"
)

type Publisher struct {
	nc          *nats.Conn
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewPublisher(url string, logSubjects bool, m PublisherMetrics) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("trip-coordinator"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn().Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &Publisher{nc: nc, logSubjects: logSubjects, metrics: m}, nil
}

func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Drain()
	p.nc.Close()
}

type LocationMessage struct {
	GroupID    string    `json:"groupId"`
	UserID     string    `json:"userId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

type SnapshotMessage struct {
	GroupID      string    `json:"groupId"`
	TaskID       string    `json:"taskId"`
	DistanceKm   float64   `json:"distanceKm"`
	ETAMinutes   int       `json:"etaMinutes"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

// PublishLocation emits one ledger observation on location.<group>.
func (p *Publisher) PublishLocation(update itinerary.LocationUpdate) error {
	if p == nil {
		return nil
	}
	subject := fmt.Sprintf("location.%s", subjectToken(update.GroupID))
	return p.publish(subject, LocationMessage{
		GroupID:    update.GroupID,
		UserID:     update.UserID,
		Lat:        update.Coord.Lat,
		Lng:        update.Coord.Lng,
		RecordedAt: update.RecordedAt,
	})
}

// PublishSnapshot emits one ETA computation on eta.<group>.<task>.
func (p *Publisher) PublishSnapshot(snap itinerary.ETASnapshot) error {
	if p == nil {
		return nil
	}
	subject := fmt.Sprintf("eta.%s.%s", subjectToken(snap.GroupID), subjectToken(snap.TaskID))
	return p.publish(subject, SnapshotMessage{
		GroupID:      snap.GroupID,
		TaskID:       snap.TaskID,
		DistanceKm:   snap.DistanceKm,
		ETAMinutes:   snap.ETAMinutes,
		CalculatedAt: snap.CalculatedAt,
	})
}

func (p *Publisher) publish(subject string, msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Debug().Str("subject", subject).Msg("nats publish")
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
