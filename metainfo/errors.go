package metainfo

import "github.com/pkg/errors"

// Errors returned by Load are wrapped around one of these, test with errors.Is.
var (
	// The document isn't valid bencode, or a field has the wrong type or an impossible value.
	ErrMalformedMetadata = errors.New("malformed metadata")
	// A required key is absent.
	ErrMissingField = errors.New("missing field")
	// The piece hashes don't agree with the file lengths.
	ErrInconsistentLengths = errors.New("inconsistent lengths")
)

func malformedf(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedMetadata, format, args...)
}

func missingField(key string) error {
	return errors.Wrapf(ErrMissingField, "%q", key)
}
