package source

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/model"
)

// Decode converts raw records into typed records. Seq is set to the
// position of the record in the input, so the stable input order
// survives skipped records. Records that are not JSON objects or carry a
// field of the wrong JSON type are malformed: they are skipped and
// returned as wrapped model.ErrMalformedRecord errors.
func Decode[T any, PT interface {
	*T
	model.Sequenced
}](records []Record) ([]T, []error) {
	out := make([]T, 0, len(records))
	var skipped []error

	for seq, rec := range records {
		var v T
		if err := decodeObject(rec.Data, &v); err != nil {
			err = fmt.Errorf("%w: %s record %d: %v", model.ErrMalformedRecord, rec.Path, rec.Index, err)
			logging.Debug().Err(err).Msg("Skipping record")
			skipped = append(skipped, err)
			continue
		}
		PT(&v).SetSeq(seq)
		out = append(out, v)
	}

	return out, skipped
}

func decodeObject(data json.RawMessage, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("not a json object")
	}
	return json.Unmarshal(data, v)
}
