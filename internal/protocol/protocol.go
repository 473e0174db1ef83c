// Package protocol defines the wire types exchanged between client and
// server: a tagged Request variant and three per-operation Response
// variants, rendered with the same self-delimiting JSON codec the storage
// engine uses for its log.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Request is a tagged union of the three client operations. Exactly one
// field is non-nil.
type Request struct {
	Get    *GetRequest    `json:"Get,omitempty"`
	Set    *SetRequest    `json:"Set,omitempty"`
	Remove *RemoveRequest `json:"Remove,omitempty"`
}

type GetRequest struct {
	Key string `json:"key"`
}

type SetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type RemoveRequest struct {
	Key string `json:"key"`
}

// NewGet, NewSet, NewRemove build the corresponding tagged Request.
func NewGet(key string) Request          { return Request{Get: &GetRequest{Key: key}} }
func NewSet(key, value string) Request   { return Request{Set: &SetRequest{Key: key, Value: value}} }
func NewRemove(key string) Request       { return Request{Remove: &RemoveRequest{Key: key}} }

// ResponseGet is Ok(Option<string>) | Err(string) rendered as
// {"Ok":"v"} / {"Ok":null} / {"Err":"msg"}.
type ResponseGet struct {
	isErr    bool
	errMsg   string
	hasValue bool
	value    string
}

// OkGet builds a successful response carrying Some(value) or None.
func OkGet(value string, ok bool) ResponseGet {
	return ResponseGet{hasValue: ok, value: value}
}

// ErrGet builds an error response.
func ErrGet(msg string) ResponseGet { return ResponseGet{isErr: true, errMsg: msg} }

// Result reports the decoded response: (value, found, err).
func (r ResponseGet) Result() (string, bool, error) {
	if r.isErr {
		return "", false, fmt.Errorf("%s", r.errMsg)
	}
	return r.value, r.hasValue, nil
}

func (r ResponseGet) MarshalJSON() ([]byte, error) {
	if r.isErr {
		return json.Marshal(struct {
			Err string `json:"Err"`
		}{r.errMsg})
	}
	if r.hasValue {
		return json.Marshal(struct {
			Ok string `json:"Ok"`
		}{r.value})
	}
	return json.Marshal(struct {
		Ok *string `json:"Ok"`
	}{nil})
}

func (r *ResponseGet) UnmarshalJSON(data []byte) error {
	var probe struct {
		Ok  *string `json:"Ok"`
		Err *string `json:"Err"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("protocol: decode ResponseGet: %w", err)
	}
	switch {
	case probe.Err != nil:
		*r = ErrGet(*probe.Err)
	case probe.Ok != nil:
		*r = OkGet(*probe.Ok, true)
	default:
		*r = OkGet("", false)
	}
	return nil
}

// ResponseSet is Ok(()) | Err(string).
type ResponseSet struct {
	isErr  bool
	errMsg string
}

func OkSet() ResponseSet              { return ResponseSet{} }
func ErrSet(msg string) ResponseSet   { return ResponseSet{isErr: true, errMsg: msg} }
func (r ResponseSet) Result() error {
	if r.isErr {
		return fmt.Errorf("%s", r.errMsg)
	}
	return nil
}

func (r ResponseSet) MarshalJSON() ([]byte, error) {
	if r.isErr {
		return json.Marshal(struct {
			Err string `json:"Err"`
		}{r.errMsg})
	}
	return []byte(`{"Ok":null}`), nil
}

func (r *ResponseSet) UnmarshalJSON(data []byte) error {
	var probe struct {
		Err *string `json:"Err"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("protocol: decode ResponseSet: %w", err)
	}
	if probe.Err != nil {
		*r = ErrSet(*probe.Err)
		return nil
	}
	*r = OkSet()
	return nil
}

// ResponseRemove is Ok(()) | Err(string).
type ResponseRemove struct {
	isErr  bool
	errMsg string
}

func OkRemove() ResponseRemove            { return ResponseRemove{} }
func ErrRemove(msg string) ResponseRemove { return ResponseRemove{isErr: true, errMsg: msg} }
func (r ResponseRemove) Result() error {
	if r.isErr {
		return fmt.Errorf("%s", r.errMsg)
	}
	return nil
}

func (r ResponseRemove) MarshalJSON() ([]byte, error) {
	if r.isErr {
		return json.Marshal(struct {
			Err string `json:"Err"`
		}{r.errMsg})
	}
	return []byte(`{"Ok":null}`), nil
}

func (r *ResponseRemove) UnmarshalJSON(data []byte) error {
	var probe struct {
		Err *string `json:"Err"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("protocol: decode ResponseRemove: %w", err)
	}
	if probe.Err != nil {
		*r = ErrRemove(*probe.Err)
		return nil
	}
	*r = OkRemove()
	return nil
}
