package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestWireFormat(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"get history", Request{Type: RequestGetHistory}, `"GetHistory"`},
		{"clear history", Request{Type: RequestClearHistory}, `"ClearHistory"`},
		{"set by id", Request{Type: RequestSetClipboardByID, ID: 7}, `{"SetClipboardById":{"id":7}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.req)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			got, err := DecodeRequest(b)
			require.NoError(t, err)
			assert.Equal(t, tt.req, *got)
		})
	}
}

func TestResponseWireFormat(t *testing.T) {
	p := Preview{ItemID: 3, ContentPreview: "hello", ContentType: ContentText, Timestamp: 1700000000}

	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"history", HistoryResponse([]Preview{p}),
			`{"History":{"items":[{"item_id":3,"content_preview":"hello","content_type":"Text","timestamp":1700000000}]}}`},
		{"empty history", HistoryResponse(nil), `{"History":{"items":[]}}`},
		{"new item", NewItemResponse(p),
			`{"NewItem":{"item":{"item_id":3,"content_preview":"hello","content_type":"Text","timestamp":1700000000}}}`},
		{"clipboard set", ClipboardSetResponse(), `"ClipboardSet"`},
		{"history cleared", HistoryClearedResponse(), `"HistoryCleared"`},
		{"error", ErrorResponse("No clipboard item found with ID: 7"),
			`{"Error":{"message":"No clipboard item found with ID: 7"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Encode(tt.resp)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			got, err := DecodeResponse(b)
			require.NoError(t, err)
			assert.Equal(t, tt.resp, *got)
		})
	}
}

func TestDecodeRequestAcceptsObjectFormForUnitVariants(t *testing.T) {
	for _, in := range []string{`{"GetHistory":null}`, `{"GetHistory":{}}`} {
		got, err := DecodeRequest([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, RequestGetHistory, got.Type)
	}
}

func TestDecodeRequestRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		`"Nope"`,
		`{}`,
		`{"GetHistory":null,"ClearHistory":null}`,
		`{"SetClipboardById":null}`,
		`{"SetClipboardById":{"id":"seven"}}`,
		`not json`,
		`42`,
	} {
		_, err := DecodeRequest([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestContentTypeRejectsUnknown(t *testing.T) {
	var p Preview
	err := json.Unmarshal([]byte(`{"item_id":1,"content_preview":"x","content_type":"Video","timestamp":0}`), &p)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"item_id":1,"content_preview":"x","content_type":"Url","timestamp":0}`), &p)
	require.NoError(t, err)
	assert.Equal(t, ContentURL, p.ContentType)
}
