package engine

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AlexG695/geo-engine-console/internal/metrics"
)

const (
	msgTypeLocationUpdate = "LOCATION_UPDATE"
	msgTypeGeofenceEvent  = "GEOFENCE_EVENT"

	eventEnter = "ENTER"
)

// Message is the closed variant set for decoded push messages.
type Message interface{ isMessage() }

// LocationUpdate is a position/heading delta for one device.
type LocationUpdate struct {
	DeviceID  string  `json:"device_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Heading   float64 `json:"heading"`
}

// GeofenceEvent announces a device entering or exiting a named zone.
type GeofenceEvent struct {
	DeviceID string `json:"device_id" validate:"required"`
	ZoneName string `json:"zone_name"`
	Event    string `json:"event"`
}

// Unknown covers unrecognized types and undecodable payloads. Err is set when
// the payload failed to decode.
type Unknown struct {
	Type string
	Err  error
}

func (LocationUpdate) isMessage() {}
func (GeofenceEvent) isMessage()  {}
func (Unknown) isMessage()        {}

// DecodeMessage decodes one raw push message into its variant. It never
// fails: anything malformed or unrecognized becomes Unknown.
func DecodeMessage(data []byte) Message {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Unknown{Err: &DecodeError{What: "stream message", Err: err}}
	}
	switch head.Type {
	case msgTypeLocationUpdate:
		var m LocationUpdate
		if err := json.Unmarshal(data, &m); err != nil {
			return Unknown{Type: head.Type, Err: &DecodeError{What: "location update", Err: err}}
		}
		return m
	case msgTypeGeofenceEvent:
		var m GeofenceEvent
		if err := json.Unmarshal(data, &m); err != nil {
			return Unknown{Type: head.Type, Err: &DecodeError{What: "geofence event", Err: err}}
		}
		return m
	default:
		return Unknown{Type: head.Type}
	}
}

// Dispatcher routes decoded push messages into the registry and the alert
// feed. Malformed or invalid input is dropped after a log line; nothing that
// arrives on the stream can take the session down.
type Dispatcher struct {
	registry *Registry
	alerts   *AlertFeed
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewDispatcher(registry *Registry, alerts *AlertFeed, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		alerts:   alerts,
		validate: validator.New(),
		log:      log,
	}
}

// Dispatch folds one raw push message into the stores. Messages are applied
// strictly in the order they are handed in; there is no coalescing.
func (d *Dispatcher) Dispatch(data []byte) {
	switch m := DecodeMessage(data).(type) {
	case LocationUpdate:
		if err := d.validate.Struct(m); err != nil {
			d.log.Warnw("dropping invalid location update", "error", err)
			metrics.StreamMessagesTotal.WithLabelValues("location_update", "dropped").Inc()
			return
		}
		d.registry.ApplyUpdate(m.DeviceID, m.Latitude, m.Longitude, m.Heading)
		metrics.StreamMessagesTotal.WithLabelValues("location_update", "applied").Inc()
	case GeofenceEvent:
		if err := d.validate.Struct(m); err != nil {
			d.log.Warnw("dropping invalid geofence event", "error", err)
			metrics.StreamMessagesTotal.WithLabelValues("geofence_event", "dropped").Inc()
			return
		}
		d.alerts.Push(buildAlert(m))
		metrics.StreamMessagesTotal.WithLabelValues("geofence_event", "applied").Inc()
		metrics.AlertsPushedTotal.Inc()
	case Unknown:
		if m.Err != nil {
			d.log.Warnw("dropping undecodable stream message", "type", m.Type, "error", m.Err)
		} else {
			d.log.Debugw("dropping unrecognized stream message", "type", m.Type)
		}
		metrics.StreamMessagesTotal.WithLabelValues("unknown", "dropped").Inc()
	}
}

// buildAlert turns a geofence event into a feed entry. Anything that is not
// an ENTER is treated as an exit.
func buildAlert(ev GeofenceEvent) Alert {
	kind := AlertExit
	title := "Zone exit"
	if ev.Event == eventEnter {
		kind = AlertEnter
		title = "Zone entry"
	}
	return Alert{
		Title: title,
		Body:  fmt.Sprintf("%s in %s", ev.DeviceID, ev.ZoneName),
		Kind:  kind,
	}
}
