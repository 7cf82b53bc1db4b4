package store

import "errors"

var (
	// ErrDataNotFound is returned when the tabular store does not exist.
	ErrDataNotFound = errors.New("data not found")

	// ErrMalformedData is returned when the store exists but cannot be read as a dataset.
	ErrMalformedData = errors.New("malformed data")
)

// HintRegenerate is the user-facing instruction attached to ErrDataNotFound.
const HintRegenerate = "data not found, run `generate` first to create the dataset"

// UserMessage turns a load error into an actionable message for an operator.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDataNotFound):
		return HintRegenerate
	case errors.Is(err, ErrMalformedData):
		return "dataset is malformed (" + err.Error() + "), regenerate it with `generate`"
	default:
		return err.Error()
	}
}
