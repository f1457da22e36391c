package errors

// Limits bounds the work a single request may ask for. Zero fields are
// unlimited.
type Limits struct {
	MaxSequences int `toml:"max_sequences" json:"max_sequences"`
	MaxLength    int `toml:"max_length" json:"max_length"`
	// Strict rejects characters outside ACGTN- (either case) instead of
	// reading them as N.
	Strict bool `toml:"strict" json:"strict"`
}

// DefaultLimits returns the limits applied by the CLI and server.
func DefaultLimits() Limits {
	return Limits{MaxSequences: 10000, MaxLength: 100000}
}

// ValidateSequences checks a sequence set against lim.
//
// Validation rules:
//   - At most MaxSequences sequences
//   - No sequence longer than MaxLength characters, gaps included
//   - In strict mode, only ACGTN and '-' in either case
func ValidateSequences(seqs []string, lim Limits) error {
	if lim.MaxSequences > 0 && len(seqs) > lim.MaxSequences {
		return Wrap(ErrCodeInputTooLarge,
			&LimitError{What: "sequence count", Limit: lim.MaxSequences, Got: len(seqs)},
			"input has %d sequences", len(seqs))
	}
	for i, s := range seqs {
		if err := ValidateSequence(s, lim); err != nil {
			return Wrap(GetCode(err), err, "sequence %d", i)
		}
	}
	return nil
}

// ValidateSequence checks a single sequence against lim.
func ValidateSequence(s string, lim Limits) error {
	if lim.MaxLength > 0 && len(s) > lim.MaxLength {
		return Wrap(ErrCodeInputTooLarge,
			&LimitError{What: "sequence length", Limit: lim.MaxLength, Got: len(s)},
			"sequence has %d characters", len(s))
	}
	if !lim.Strict {
		return nil
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n', '-':
		default:
			return New(ErrCodeInvalidInput, "invalid character %q at position %d", s[i], i)
		}
	}
	return nil
}

// ValidateLimits rejects negative bounds.
func ValidateLimits(lim Limits) error {
	if lim.MaxSequences < 0 {
		return New(ErrCodeInvalidConfig, "max_sequences must be >= 0, got %d", lim.MaxSequences)
	}
	if lim.MaxLength < 0 {
		return New(ErrCodeInvalidConfig, "max_length must be >= 0, got %d", lim.MaxLength)
	}
	return nil
}
