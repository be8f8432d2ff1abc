package ais

// Record is a decoded AIS message. The set of implementations is closed;
// switch on the concrete type to access kind-specific fields.
type Record interface {
	// MMSI returns the source station identifier.
	MMSI() uint32

	// MessageType returns the AIS message type (1..27).
	MessageType() uint8

	record()
}

// Header holds the fields common to every AIS message.
type Header struct {
	Type   uint8  `json:"msg_type"`
	Repeat uint8  `json:"repeat"`
	UserID uint32 `json:"mmsi"`
}

// MMSI returns the source station identifier.
func (h Header) MMSI() uint32 { return h.UserID }

// MessageType returns the AIS message type.
func (h Header) MessageType() uint8 { return h.Type }

func (Header) record() {}

// PositionReport is a class A position report (types 1, 2, 3).
type PositionReport struct {
	Header
	Status   uint8   `json:"status"`
	Turn     int8    `json:"turn"`
	Speed    float64 `json:"speed"`
	Accuracy bool    `json:"accuracy"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Course   float64 `json:"course"`
	Heading  uint16  `json:"heading"`
	Second   uint8   `json:"second"`
	Maneuver uint8   `json:"maneuver"`
	RAIM     bool    `json:"raim"`
	Radio    uint32  `json:"radio"`
}

// BaseStationReport is a base station report (type 4) or UTC date
// response (type 11).
type BaseStationReport struct {
	Header
	Year     uint16  `json:"year"`
	Month    uint8   `json:"month"`
	Day      uint8   `json:"day"`
	Hour     uint8   `json:"hour"`
	Minute   uint8   `json:"minute"`
	Second   uint8   `json:"second"`
	Accuracy bool    `json:"accuracy"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	EPFD     uint8   `json:"epfd"`
	RAIM     bool    `json:"raim"`
	Radio    uint32  `json:"radio"`
}

// StaticVoyageData is static and voyage related data (type 5).
type StaticVoyageData struct {
	Header
	AISVersion  uint8   `json:"ais_version"`
	IMO         uint32  `json:"imo"`
	Callsign    string  `json:"callsign"`
	Shipname    string  `json:"shipname"`
	ShipType    uint8   `json:"ship_type"`
	ToBow       uint16  `json:"to_bow"`
	ToStern     uint16  `json:"to_stern"`
	ToPort      uint8   `json:"to_port"`
	ToStarboard uint8   `json:"to_starboard"`
	EPFD        uint8   `json:"epfd"`
	Month       uint8   `json:"month"`
	Day         uint8   `json:"day"`
	Hour        uint8   `json:"hour"`
	Minute      uint8   `json:"minute"`
	Draught     float64 `json:"draught"`
	Destination string  `json:"destination"`
	DTE         bool    `json:"dte"`
}

// BinaryBroadcast is a binary broadcast message (type 8).
type BinaryBroadcast struct {
	Header
	DAC  uint16 `json:"dac"`
	FID  uint8  `json:"fid"`
	Data []byte `json:"data"`
}

// StandardClassBPosition is a class B position report (type 18).
type StandardClassBPosition struct {
	Header
	Speed    float64 `json:"speed"`
	Accuracy bool    `json:"accuracy"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Course   float64 `json:"course"`
	Heading  uint16  `json:"heading"`
	Second   uint8   `json:"second"`
	CS       bool    `json:"cs"`
	Display  bool    `json:"display"`
	DSC      bool    `json:"dsc"`
	Band     bool    `json:"band"`
	Msg22    bool    `json:"msg22"`
	Assigned bool    `json:"assigned"`
	RAIM     bool    `json:"raim"`
	Radio    uint32  `json:"radio"`
}

// StaticDataReportA is part A of a static data report (type 24).
type StaticDataReportA struct {
	Header
	PartNo   uint8  `json:"partno"`
	Shipname string `json:"shipname"`
}

// StaticDataReportB is part B of a static data report (type 24).
type StaticDataReportB struct {
	Header
	PartNo      uint8  `json:"partno"`
	ShipType    uint8  `json:"ship_type"`
	VendorID    string `json:"vendorid"`
	Model       uint8  `json:"model"`
	Serial      uint32 `json:"serial"`
	Callsign    string `json:"callsign"`
	ToBow       uint16 `json:"to_bow"`
	ToStern     uint16 `json:"to_stern"`
	ToPort      uint8  `json:"to_port"`
	ToStarboard uint8  `json:"to_starboard"`
}
