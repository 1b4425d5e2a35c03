package mqtt

import (
	"encoding/json"
	"log/slog"
	"time"

	"orchard-bridge/database"
	"orchard-bridge/deadletter"
	"orchard-bridge/models"
	"orchard-bridge/repositories/base"
	"orchard-bridge/services"
)

// Gateway is the telemetry ingestion pipeline: envelope parsing, identity
// resolution and persistence of one raw plus (conditionally) one typed row,
// all inside a single transaction per message. Messages are handled one at
// a time on the delivery callback; a bad message is logged or dead-lettered
// and never stops the pipeline.
type Gateway struct {
	db          *database.Database
	resolver    services.IdentityResolver
	deadLetters deadletter.Sink
	logger      *slog.Logger
	now         func() time.Time
}

// NewGateway creates a new ingestion Gateway.
func NewGateway(db *database.Database, resolver services.IdentityResolver, sink deadletter.Sink, logger *slog.Logger) *Gateway {
	return &Gateway{
		db:          db,
		resolver:    resolver,
		deadLetters: sink,
		logger:      logger.With("component", "gateway"),
		now:         time.Now,
	}
}

// HandleUplink processes one inbound wire message.
func (g *Gateway) HandleUplink(topic string, payload []byte) {
	receivedAt := g.now().UTC()

	var env models.UplinkEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		g.logger.Warn("Malformed uplink payload", "topic", topic, slog.Any("error", err))
		quoted, _ := json.Marshal(string(payload))
		g.deadLetters.Publish(&models.DeadLetter{
			Topic:   topic,
			Reason:  models.DeadLetterMalformedPayload,
			Detail:  err.Error(),
			Payload: quoted,
		})
		return
	}

	devEUI := env.DeviceEUI()
	if devEUI == "" {
		// A message without a device identifier cannot be attributed to
		// anything; discard silently.
		return
	}
	logger := g.logger.With("devEui", devEUI)

	identity, err := g.resolver.Resolve(devEUI)
	if err != nil {
		if base.IsEntityNotFound(err) {
			logger.Warn("Unknown or inactive device, message discarded")
			g.deadLetters.Publish(&models.DeadLetter{
				Topic:   topic,
				DevEUI:  devEUI,
				Reason:  models.DeadLetterUnknownDevice,
				Detail:  err.Error(),
				Payload: payload,
			})
		} else {
			logger.Error("Failed to resolve device identity", slog.Any("error", err))
		}
		return
	}

	// Key rows by the device-reported time when the envelope carries one;
	// the receipt time is kept as an audit column either way.
	recordTime := receivedAt
	if env.Time != nil && !env.Time.IsZero() {
		recordTime = env.Time.UTC()
	}

	objectJSON, err := json.Marshal(env.Object)
	if err != nil {
		logger.Error("Failed to serialize object payload", slog.Any("error", err))
		return
	}

	tx := g.db.UoW.Begin()
	defer func() {
		if r := recover(); r != nil {
			g.db.UoW.Rollback(tx)
			panic(r)
		}
	}()

	rssi, snr := env.Radio()
	uplink := &models.UplinkTelemetry{
		Time:       recordTime,
		SensorID:   identity.SensorID,
		DevEUI:     devEUI,
		FPort:      env.FPort,
		RSSI:       rssi,
		SNR:        snr,
		Payload:    objectJSON,
		ReceivedAt: receivedAt,
	}
	if err := g.db.TelemetryRepo.InsertUplink(tx, uplink); err != nil {
		g.db.UoW.Rollback(tx)
		logger.Error("Failed to insert uplink telemetry", slog.Any("error", err))
		return
	}

	if env.HasSoilMetrics() {
		reading := soilReadingFromEnvelope(&env, identity, recordTime, receivedAt)
		if err := g.db.TelemetryRepo.InsertSoilReading(tx, reading); err != nil {
			g.db.UoW.Rollback(tx)
			logger.Error("Failed to insert soil reading", slog.Any("error", err))
			return
		}
	}

	if err := g.db.UoW.Commit(tx); err != nil {
		logger.Error("Failed to commit uplink transaction", slog.Any("error", err))
		return
	}
	logger.Info("Uplink persisted", "plotId", identity.PlotID, "time", recordTime)
}

// soilReadingFromEnvelope maps the recognized soil metric keys onto a typed
// reading. Keys absent from the payload stay NULL.
func soilReadingFromEnvelope(env *models.UplinkEnvelope, identity *models.SensorIdentity, recordTime, receivedAt time.Time) *models.SoilReading {
	reading := &models.SoilReading{
		Time:       recordTime,
		SensorID:   identity.SensorID,
		PlotID:     identity.PlotID,
		ReceivedAt: receivedAt,
	}
	reading.Moisture, _ = env.Metric("moisture")
	reading.Temperature, _ = env.Metric("temperature")
	reading.EC, _ = env.Metric("ec")
	reading.PH, _ = env.Metric("ph")
	reading.Nitrogen, _ = env.Metric("nitrogen")
	reading.Phosphorus, _ = env.Metric("phosphorus")
	reading.Potassium, _ = env.Metric("potassium")
	return reading
}
