// ABOUTME: Shared error taxonomy decoupled from the data and tool packages
// ABOUTME: Sentinels drive transport behavior: NotFound stays in-band, InvalidInput aborts

package types

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups whose subject does not exist: an unknown id,
// a missing data file, an absent wiki page, an unranked player. Tool
// handlers report it inside a success payload rather than failing the call.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput marks caller mistakes that abort the call: unknown
// datasets, unparsable regex patterns, contradictory parameter
// combinations, path traversal in a filename.
var ErrInvalidInput = errors.New("invalid input")

// ErrIntegrity marks a refreshed dataset rejected for having implausibly
// few records. The previous snapshot, memory and disk, stays untouched.
var ErrIntegrity = errors.New("integrity check failed")

// UpstreamError reports a non-success HTTP status from a data source.
type UpstreamError struct {
	Source string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Source, e.Status)
}

// IsUpstream reports whether err carries an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
