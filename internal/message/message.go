// Package message defines the cursorclip IPC protocol.
//
// All messages are newline-delimited JSON. Variants are externally tagged:
// a variant without fields is a bare JSON string, a variant with fields is a
// single-key object whose value holds the fields.
//
//	"GetHistory"
//	{"SetClipboardById":{"id":7}}
//	{"Error":{"message":"No clipboard item found with ID: 7"}}
package message

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContentType classifies a clipboard entry for display.
type ContentType string

const (
	ContentText     ContentType = "Text"
	ContentURL      ContentType = "Url"
	ContentCode     ContentType = "Code"
	ContentPassword ContentType = "Password"
	ContentFile     ContentType = "File"
	ContentImage    ContentType = "Image"
	ContentOther    ContentType = "Other"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentURL, ContentCode, ContentPassword,
		ContentFile, ContentImage, ContentOther:
		return true
	}
	return false
}

// UnmarshalText rejects unknown content types.
func (t *ContentType) UnmarshalText(b []byte) error {
	ct := ContentType(b)
	if !ct.Valid() {
		return fmt.Errorf("unknown content type %q", b)
	}
	*t = ct
	return nil
}

// Preview is the payload-free projection of a history entry. It is the only
// form of an entry that ever crosses the IPC boundary.
type Preview struct {
	ItemID         uint64      `json:"item_id"`
	ContentPreview string      `json:"content_preview"`
	ContentType    ContentType `json:"content_type"`
	Timestamp      uint64      `json:"timestamp"` // unix seconds
}

// RequestType identifies a client request.
type RequestType string

const (
	RequestGetHistory       RequestType = "GetHistory"
	RequestSetClipboardByID RequestType = "SetClipboardById"
	RequestClearHistory     RequestType = "ClearHistory"
)

// Request is a client → daemon message.
type Request struct {
	Type RequestType
	// ID is set for SetClipboardById only.
	ID uint64
}

type setClipboardFields struct {
	ID uint64 `json:"id"`
}

// MarshalJSON implements json.Marshaler.
func (r Request) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case RequestGetHistory, RequestClearHistory:
		return json.Marshal(string(r.Type))
	case RequestSetClipboardByID:
		return marshalTagged(string(r.Type), setClipboardFields{ID: r.ID})
	default:
		return nil, fmt.Errorf("unknown request type %q", r.Type)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Request) UnmarshalJSON(b []byte) error {
	tag, body, err := splitTagged(b)
	if err != nil {
		return err
	}
	switch RequestType(tag) {
	case RequestGetHistory, RequestClearHistory:
		*r = Request{Type: RequestType(tag)}
	case RequestSetClipboardByID:
		var f setClipboardFields
		if err := decodeFields(tag, body, &f); err != nil {
			return err
		}
		*r = Request{Type: RequestSetClipboardByID, ID: f.ID}
	default:
		return fmt.Errorf("unknown request %q", tag)
	}
	return nil
}

// ResponseType identifies a daemon → client message.
type ResponseType string

const (
	ResponseHistory        ResponseType = "History"
	ResponseNewItem        ResponseType = "NewItem"
	ResponseClipboardSet   ResponseType = "ClipboardSet"
	ResponseHistoryCleared ResponseType = "HistoryCleared"
	ResponseError          ResponseType = "Error"
)

// Response is a daemon → client message: either the reply to a request or
// an unsolicited NewItem push.
type Response struct {
	Type ResponseType

	// History
	Items []Preview
	// NewItem
	Item *Preview
	// Error
	Message string
}

// HistoryResponse wraps a history snapshot.
func HistoryResponse(items []Preview) Response {
	if items == nil {
		items = []Preview{}
	}
	return Response{Type: ResponseHistory, Items: items}
}

// NewItemResponse announces a freshly inserted entry.
func NewItemResponse(p Preview) Response {
	return Response{Type: ResponseNewItem, Item: &p}
}

// ClipboardSetResponse acknowledges SetClipboardById.
func ClipboardSetResponse() Response { return Response{Type: ResponseClipboardSet} }

// HistoryClearedResponse acknowledges ClearHistory.
func HistoryClearedResponse() Response { return Response{Type: ResponseHistoryCleared} }

// ErrorResponse carries a single-line, user-visible failure.
func ErrorResponse(msg string) Response {
	return Response{Type: ResponseError, Message: msg}
}

type historyFields struct {
	Items []Preview `json:"items"`
}

type newItemFields struct {
	Item Preview `json:"item"`
}

type errorFields struct {
	Message string `json:"message"`
}

// MarshalJSON implements json.Marshaler.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ResponseClipboardSet, ResponseHistoryCleared:
		return json.Marshal(string(r.Type))
	case ResponseHistory:
		items := r.Items
		if items == nil {
			items = []Preview{}
		}
		return marshalTagged(string(r.Type), historyFields{Items: items})
	case ResponseNewItem:
		if r.Item == nil {
			return nil, fmt.Errorf("NewItem without item")
		}
		return marshalTagged(string(r.Type), newItemFields{Item: *r.Item})
	case ResponseError:
		return marshalTagged(string(r.Type), errorFields{Message: r.Message})
	default:
		return nil, fmt.Errorf("unknown response type %q", r.Type)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Response) UnmarshalJSON(b []byte) error {
	tag, body, err := splitTagged(b)
	if err != nil {
		return err
	}
	switch ResponseType(tag) {
	case ResponseClipboardSet, ResponseHistoryCleared:
		*r = Response{Type: ResponseType(tag)}
	case ResponseHistory:
		var f historyFields
		if err := decodeFields(tag, body, &f); err != nil {
			return err
		}
		*r = HistoryResponse(f.Items)
	case ResponseNewItem:
		var f newItemFields
		if err := decodeFields(tag, body, &f); err != nil {
			return err
		}
		*r = NewItemResponse(f.Item)
	case ResponseError:
		var f errorFields
		if err := decodeFields(tag, body, &f); err != nil {
			return err
		}
		*r = ErrorResponse(f.Message)
	default:
		return fmt.Errorf("unknown response %q", tag)
	}
	return nil
}

// Encode serialises a request or response without a trailing newline.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeRequest deserialises a request from raw JSON bytes.
func DecodeRequest(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("request decode: %w", err)
	}
	return &r, nil
}

// DecodeResponse deserialises a response from raw JSON bytes.
func DecodeResponse(b []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("response decode: %w", err)
	}
	return &r, nil
}

func marshalTagged(tag string, fields any) ([]byte, error) {
	return json.Marshal(map[string]any{tag: fields})
}

// splitTagged returns the variant name and, for object form, the raw field
// body. A bare string has a nil body.
func splitTagged(b []byte) (string, json.RawMessage, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var tag string
		if err := json.Unmarshal(b, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("expected exactly one variant key, got %d", len(obj))
	}
	for tag, body := range obj {
		return tag, body, nil
	}
	panic("unreachable")
}

func decodeFields(tag string, body json.RawMessage, dst any) error {
	if len(body) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return fmt.Errorf("%s: missing fields", tag)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}
	return nil
}
