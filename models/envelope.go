package models

import (
	"encoding/json"
	"time"
)

// UplinkEnvelope is the JSON envelope published by the LoRaWAN network
// server. Two generations of the payload format are in the field: the newer
// one nests the device identifier under deviceInfo, the older one carries a
// top-level devEUI.
type UplinkEnvelope struct {
	DeviceInfo struct {
		DevEUI string `json:"devEui"`
	} `json:"deviceInfo"`
	DevEUI string                     `json:"devEUI"`
	Time   *time.Time                 `json:"time"`
	FPort  *int16                     `json:"fPort"`
	RxInfo []RxInfo                   `json:"rxInfo"`
	Object map[string]json.RawMessage `json:"object"`
}

type RxInfo struct {
	RSSI *int16   `json:"rssi"`
	SNR  *float64 `json:"snr"`
}

// DeviceEUI returns the device identifier from whichever envelope shape was
// used, or "" when the message carries none.
func (e *UplinkEnvelope) DeviceEUI() string {
	if e.DeviceInfo.DevEUI != "" {
		return e.DeviceInfo.DevEUI
	}
	return e.DevEUI
}

// Radio returns the radio metrics of the first gateway that received the
// uplink, if any.
func (e *UplinkEnvelope) Radio() (rssi *int16, snr *float64) {
	if len(e.RxInfo) == 0 {
		return nil, nil
	}
	return e.RxInfo[0].RSSI, e.RxInfo[0].SNR
}

// Metric decodes a named numeric value from the object map. The second
// return reports whether the key was present and numeric. Decoding through
// a pointer keeps an explicit null distinct from a real 0.
func (e *UplinkEnvelope) Metric(key string) (*float64, bool) {
	raw, ok := e.Object[key]
	if !ok {
		return nil, false
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// SoilMetricKeys are the recognized soil metrics; a typed soil row is only
// written when the payload carries at least one of them.
var SoilMetricKeys = []string{
	"moisture", "temperature", "ph", "ec", "nitrogen", "phosphorus", "potassium",
}

// HasSoilMetrics reports whether the payload carries any recognized soil
// metric key. Vision- or weather-only payloads return false.
func (e *UplinkEnvelope) HasSoilMetrics() bool {
	for _, key := range SoilMetricKeys {
		if _, ok := e.Object[key]; ok {
			return true
		}
	}
	return false
}
