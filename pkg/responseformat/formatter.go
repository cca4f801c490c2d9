package responseformat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gocarina/gocsv"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrCSVUnsupported is returned when CSV is requested for data with no tabular form
var ErrCSVUnsupported = errors.New("response has no CSV representation")

// Format is a response encoding selected with the format query parameter
type Format string

const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"
	CSV     Format = "csv"
)

// ParseFormat maps a format query value to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", JSON:
		return JSON, nil
	case MsgPack:
		return MsgPack, nil
	case CSV:
		return CSV, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// CSVSource is implemented by responses with a tabular form. CSVRows must
// return a slice of structs carrying csv tags.
type CSVSource interface {
	CSVRows() any
}

// Formatter handles encoding and writing responses in JSON, MessagePack or CSV format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WriteResponse writes the response in the format named by the format query
// parameter. JSON is the default; unknown values also fall back to JSON.
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) error {
	// Set any provided headers first
	for k, v := range headers {
		w.Header().Set(k, v)
	}

	// Always set CORS header
	w.Header().Set("Access-Control-Allow-Origin", "*")

	format, err := ParseFormat(req.URL.Query().Get("format"))
	if err != nil {
		format = JSON
	}

	switch format {
	case MsgPack:
		return f.writeMsgPack(w, data)
	case CSV:
		return f.writeCSV(w, data)
	default:
		return f.writeJSON(w, data)
	}
}

func (f *Formatter) writeJSON(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(data)
}

func (f *Formatter) writeMsgPack(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/x-msgpack")
	encoder := msgpack.NewEncoder(w)
	encoder.SetCustomStructTag("json") // Use json tags for MessagePack
	return encoder.Encode(data)
}

// writeCSV encodes before touching the response so a failure can still be
// reported with an error status by the caller.
func (f *Formatter) writeCSV(w http.ResponseWriter, data any) error {
	src, ok := data.(CSVSource)
	if !ok {
		return ErrCSVUnsupported
	}

	out, err := gocsv.MarshalBytes(src.CSVRows())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCSVUnsupported, err)
	}

	w.Header().Set("Content-Type", "text/csv")
	_, err = w.Write(out)
	return err
}
