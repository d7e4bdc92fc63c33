package job

import (
	"encoding/json"
	"fmt"

	"github.com/xraph/replicate"
)

// DecodeOutput converts a job's loosely-typed output into T. T must be a
// JSON-compatible shape; nested maps and slices decode as usual.
func DecodeOutput[T any](output any) (T, error) {
	var out T
	raw, err := json.Marshal(output)
	if err != nil {
		return out, fmt.Errorf("%w: re-encode output: %w", replicate.ErrDecode, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: output as %T: %w", replicate.ErrDecode, out, err)
	}
	return out, nil
}

// Decode is DecodeOutput applied to j.Output.
func Decode[T any](j *Job) (T, error) {
	if j.Output == nil {
		var zero T
		return zero, fmt.Errorf("job %s: %w", j.ID, replicate.ErrNoOutput)
	}
	return DecodeOutput[T](j.Output)
}
