package ingest

import (
	"bytes"
	"encoding/json"
)

// unmarshalStrict rejects payloads with fields outside the submission
// schema so writer drift surfaces in quarantine instead of silently
// dropping data.
func unmarshalStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
