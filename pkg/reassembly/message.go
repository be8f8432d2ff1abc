package reassembly

// Message is a complete logical AIS message: every fragment in order.
type Message struct {
	// Fragments holds fragments 1..Count in order.
	Fragments []Fragment

	// Payload is the concatenated payload bits of all fragments.
	Payload []byte

	// Valid is true when every fragment's checksum matched.
	Valid bool
}

// assemble concatenates ordered fragments into a Message.
func assemble(parts []*Fragment) Message {
	size := 0
	for _, p := range parts {
		size += len(p.Payload)
	}

	msg := Message{
		Fragments: make([]Fragment, 0, len(parts)),
		Payload:   make([]byte, 0, size),
		Valid:     true,
	}
	for _, p := range parts {
		msg.Fragments = append(msg.Fragments, *p)
		msg.Payload = append(msg.Payload, p.Payload...)
		msg.Valid = msg.Valid && p.Valid
	}
	return msg
}

// Channel returns the radio channel of the message.
func (m Message) Channel() string {
	if len(m.Fragments) == 0 {
		return ""
	}
	return m.Fragments[0].Channel
}

// Lines returns the raw sentences the message was assembled from.
func (m Message) Lines() []string {
	lines := make([]string, len(m.Fragments))
	for i, f := range m.Fragments {
		lines[i] = string(f.Raw)
	}
	return lines
}
