package wire

import (
	"errors"
	"fmt"
)

// These are the error codes defined by wl_display.error that apply to
// any object.
const (
	ErrorInvalidObject uint32 = 0
	ErrorInvalidMethod uint32 = 1
	ErrorNoMemory      uint32 = 2
)

// UnknownOpError is returned by Object.Dispatch if it is given a
// message with an invalid opcode.
type UnknownOpError struct {
	ID        uint32
	Interface string
	Type      string
	Op        uint16
}

func (err UnknownOpError) Error() string {
	return fmt.Sprintf("unknown %v opcode for %v: %v", err.Type, err.Interface, err.Op)
}

// UnknownSenderIDError is returned by an attempt to dispatch an
// incoming message that indicates a method call on an object that is
// not in the object table.
type UnknownSenderIDError struct {
	Msg *MessageBuffer
}

func (err UnknownSenderIDError) Error() string {
	return fmt.Sprintf("unknown sender object ID: %v", err.Msg.Sender())
}

// ProtocolError is a fatal error caused by a misbehaving peer. It is
// reported to the peer with wl_display.error and terminates only the
// connection that caused it.
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (err *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %v (code %v): %v", err.ObjectID, err.Code, err.Message)
}

// Errorf returns a ProtocolError for the object with the given ID.
func Errorf(id, code uint32, format string, args ...any) *ProtocolError {
	return &ProtocolError{
		ObjectID: id,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// AsProtocolError converts err into a ProtocolError, mapping the
// other error types in this package onto the generic wl_display error
// codes. Errors that are not related to the protocol, such as I/O
// errors, yield false.
func AsProtocolError(err error) (*ProtocolError, bool) {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return perr, true
	}

	var sender UnknownSenderIDError
	if errors.As(err, &sender) {
		return Errorf(sender.Msg.Sender(), ErrorInvalidObject, "%v", sender), true
	}

	var op UnknownOpError
	if errors.As(err, &op) {
		return Errorf(op.ID, ErrorInvalidMethod, "%v", op), true
	}

	var derr *DecodeError
	if errors.As(err, &derr) {
		return Errorf(derr.Sender, ErrorInvalidMethod, "%v", derr), true
	}

	return nil, false
}

// DecodeError is returned when a message's arguments could not be
// decoded.
type DecodeError struct {
	Sender uint32
	Op     uint16
	Err    error
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("decode arguments of opcode %v on object %v: %v", err.Op, err.Sender, err.Err)
}

func (err *DecodeError) Unwrap() error {
	return err.Err
}
