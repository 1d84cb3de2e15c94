package types

// Version is the canonical project version.
// The CLI, the notification event contract and the logger share it.
const Version = "0.3.0"

// RecordVersion is the transport unit record format version.
// Parsers accept any "1.x" value; the major component gates compatibility.
const RecordVersion = "1.0"
