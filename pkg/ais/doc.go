// Package ais decodes reassembled AIS payloads into typed records.
//
// A [Record] is a closed sum type: every supported message kind is a struct
// that embeds [Header], and [Decode] picks the concrete kind from the 6-bit
// message type at the start of the payload.
//
// Supported kinds:
//
//   - [PositionReport]: types 1, 2 and 3 (class A position)
//   - [BaseStationReport]: types 4 and 11
//   - [StaticVoyageData]: type 5
//   - [BinaryBroadcast]: type 8
//   - [StandardClassBPosition]: type 18
//   - [StaticDataReportA], [StaticDataReportB]: type 24
//   - [Report]: every other type go-ais can decode, such as 9, 19, 21 and 27
//
// JSON field names (msg_type, repeat, mmsi, lon, lat, ...) are the ones
// existing consumers of the output topics read. Binary data is carried as
// []byte and is therefore base64 text in JSON. A [Report] flattens the
// go-ais packet fields next to msg_type, repeat and mmsi in snake_case.
//
// Every failure wraps [ErrDecode].
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package ais
