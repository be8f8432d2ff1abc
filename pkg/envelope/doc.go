// Package envelope encodes and decodes the brefv transport envelope.
//
// An envelope is a JSON object with two fields:
//
//	{"sent_at": "2024-05-01T10:00:00.123456Z", "message": ...}
//
// Inbound envelopes carry one raw NMEA sentence as a base64 string in
// "message". Outbound envelopes carry a decoded record as a JSON object;
// any []byte field of the record is base64 text.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package envelope
