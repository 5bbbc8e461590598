package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrUnknownCodec is returned by CodecFor for an unsupported codec name.
var ErrUnknownCodec = errors.New("unknown storage codec")

// Codec turns values into stored bytes and back.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec stores values as JSON text.
type JSONCodec struct{}

// Name returns "json".
func (JSONCodec) Name() string { return constants.CodecJSON }

// Marshal encodes v as JSON.
func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes JSON data into v.
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// MsgpackCodec stores values as MessagePack.
type MsgpackCodec struct{}

// Name returns "msgpack".
func (MsgpackCodec) Name() string { return constants.CodecMsgpack }

// Marshal encodes v as MessagePack.
func (MsgpackCodec) Marshal(v any) ([]byte, error) { return msgpack.Marshal(v) }

// Unmarshal decodes MessagePack data into v.
func (MsgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

// CodecFor returns the codec with the given name. An empty name selects JSON.
func CodecFor(name string) (Codec, error) {
	switch name {
	case "", constants.CodecJSON:
		return JSONCodec{}, nil
	case constants.CodecMsgpack:
		return MsgpackCodec{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}
