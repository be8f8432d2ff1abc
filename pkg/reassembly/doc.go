// Package reassembly joins multi-part AIS NMEA sentences into complete
// messages.
//
// AIS payloads longer than one sentence are split by the sender into up to
// nine fragments that share a sequence id and a radio channel. Fragments may
// arrive in any order; a [Reassembler] buffers them per [Key] and yields a
// [Message] once every declared fragment is present.
//
// # Usage
//
//	r := reassembly.New(reassembly.Options{})
//
//	for line := range lines {
//	    msg, ok := r.Ingest(line)
//	    if !ok {
//	        continue // incomplete or malformed
//	    }
//	    // decode msg.Payload ...
//	}
//
// # Buffer Lifetime
//
// A buffer entry exists only while its message is incomplete and is removed
// the instant the last fragment arrives. With zero [Options] entries for
// sequences that never complete are kept for the life of the Reassembler.
// Set Options.MaxPending and/or Options.MaxAge to bound that memory.
//
// # Known Limitations
//
// The slot array for a key is sized once, on its first fragment, to
// max(count, 255). A fragment count that changes between fragments sharing
// a key is not reconciled, and a fragment whose index falls outside the
// allocated slots is refused.
//
// # Concurrency
//
// A Reassembler is safe for concurrent use. The pipeline drives it from a
// single goroutine; the lock exists so that Stats can be read from another.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package reassembly
