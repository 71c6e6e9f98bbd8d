package billing

import (
	"fmt"
	"regexp"
)

// DocumentKind identifies which numbered document family a number belongs to.
type DocumentKind string

const (
	KindInvoice   DocumentKind = "invoice"
	KindQuotation DocumentKind = "quotation"
)

// IsValid checks if the document kind is valid
func (k DocumentKind) IsValid() bool {
	return k == KindInvoice || k == KindQuotation
}

// Prefix returns the single-letter document prefix (I or Q).
func (k DocumentKind) Prefix() string {
	if k == KindQuotation {
		return "Q"
	}
	return "I"
}

// SequenceWidth is the zero-padded width of the per-year counter.
const SequenceWidth = 5

// MaxGenerationAttempts bounds the defensive collision probe in number
// generation. Exceeding it is a fatal condition, not a transient one.
const MaxGenerationAttempts = 10

var sequenceSuffix = regexp.MustCompile(`-(\d{5})$`)

// NumberPrefix returns the year-scoped prefix, e.g. "I-2026-".
func NumberPrefix(kind DocumentKind, year int) string {
	return fmt.Sprintf("%s-%d-", kind.Prefix(), year)
}

// FormatNumber renders a full document number, e.g. "I-2026-00042".
func FormatNumber(kind DocumentKind, year, sequence int) string {
	return fmt.Sprintf("%s%0*d", NumberPrefix(kind, year), SequenceWidth, sequence)
}

// ParseSequence extracts the numeric suffix of a document number. Numbers
// whose suffix is not exactly five digits are ignored by the generator, so
// the second return value reports whether a suffix was found.
func ParseSequence(number string) (int, bool) {
	m := sequenceSuffix.FindStringSubmatch(number)
	if m == nil {
		return 0, false
	}
	var seq int
	fmt.Sscanf(m[1], "%d", &seq)
	return seq, true
}

// MaxSequence returns the highest five-digit suffix among the given numbers,
// or zero when none parse.
func MaxSequence(numbers []string) int {
	max := 0
	for _, n := range numbers {
		if seq, ok := ParseSequence(n); ok && seq > max {
			max = seq
		}
	}
	return max
}

// NumberGenerationError reports that the generator could not produce a free
// number within MaxGenerationAttempts. It indicates severe contention or
// data corruption and must not be silently retried.
type NumberGenerationError struct {
	Kind     DocumentKind
	Prefix   string
	Attempts int
}

func (e *NumberGenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s number with prefix %s after %d attempts",
		e.Kind, e.Prefix, e.Attempts)
}
