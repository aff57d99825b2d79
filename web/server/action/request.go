package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// queryRecord returns the query string parameters of req as a flat record.
// Only the first value of repeated keys is kept.
func queryRecord(req *http.Request) map[string]string {
	record := map[string]string{}
	if req == nil || req.URL == nil {
		return record
	}

	for key, values := range req.URL.Query() {
		if len(values) > 0 {
			record[key] = values[0]
		}
	}

	return record
}

// readJSON decodes the request body as a single JSON value. Bodies larger than
// maxSize bytes are rejected, even if the bytes read so far are valid JSON.
func readJSON(req *http.Request, maxSize int64) (any, error) {
	if req == nil || req.Body == nil || req.Body == http.NoBody {
		return nil, errors.New("empty request body")
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, req.Body, maxSize))

	var data any
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed decoding request body into JSON: %w", err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("failed reading request body: %w", err)
		}
		return nil, errors.New("unexpected data after the JSON value in the request body")
	}

	return data, nil
}
