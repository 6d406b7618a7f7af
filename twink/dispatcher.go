package twink

import "encoding/json"

// Dispatcher decodes inbound frames and routes them to registered callbacks.
// Presence frames are forwarded undecoded; the core does not interpret them.
type Dispatcher struct {
	onChat     func(ChatEvent)
	onReadAck  func(ReadAckEvent)
	onPresence func(json.RawMessage)
	onError    func(error)
}

func (d *Dispatcher) SetOnChat(fn func(ChatEvent))           { d.onChat = fn }
func (d *Dispatcher) SetOnReadAck(fn func(ReadAckEvent))     { d.onReadAck = fn }
func (d *Dispatcher) SetOnPresence(fn func(json.RawMessage)) { d.onPresence = fn }
func (d *Dispatcher) SetOnError(fn func(error))              { d.onError = fn }

func (d *Dispatcher) Dispatch(f Frame) {
	switch f.Type {
	case frameChat:
		if d.onChat == nil {
			return
		}
		var ev ChatEvent
		if err := UnmarshalData(f.Raw, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal chat frame", err))
			return
		}
		d.onChat(ev)
	case frameReadAck:
		if d.onReadAck == nil {
			return
		}
		var ev ReadAckEvent
		if err := UnmarshalData(f.Raw, &ev); err != nil {
			d.fireError(WrapError(ErrorSerialization, "failed to unmarshal read-ack frame", err))
			return
		}
		d.onReadAck(ev)
	case framePresence:
		if d.onPresence == nil {
			return
		}
		d.onPresence(f.Raw)
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
