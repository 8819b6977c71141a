package entropy

import "errors"

// ErrMalformedStream is returned when a decoder detects that the
// bitstream it is reading does not carry a validly terminated CABAC
// sequence: in Decoder.Finish, either the terminating bin decoded as 0
// or the final alignment check failed.
var ErrMalformedStream = errors.New("entropy: malformed or truncated CABAC stream")

// ErrInvalidBin is returned when a caller passes a bin value other
// than 0 or 1 to an encode primitive.
var ErrInvalidBin = errors.New("entropy: bin value must be 0 or 1")

// ErrInvalidProbability is returned when encodeBinProb/decodeBinProb is
// called with a percentage outside (0,100).
var ErrInvalidProbability = errors.New("entropy: probability must be in (0,100)")
