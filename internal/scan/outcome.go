package scan

import (
	"fmt"
	"github.com/litetable/litetable-scan/internal/data"
)

// Kind tells what a round trip produced.
type Kind int

const (
	// Delivered carries a non-empty batch and the state to continue from.
	Delivered Kind = iota + 1
	// Exhausted means the range has no further data.
	Exhausted
	// Failed carries a classified error.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one fetch. Failures are values: a background fetch hands its error to
// the consumer the same way it hands over a batch.
type Outcome struct {
	Kind  Kind
	Batch []data.Entry
	State State
	Err   error
}

func delivered(batch []data.Entry, st State) Outcome {
	return Outcome{Kind: Delivered, Batch: batch, State: st}
}

func exhausted(st State) Outcome {
	return Outcome{Kind: Exhausted, State: st.finish()}
}

func failed(st State, err error) Outcome {
	return Outcome{Kind: Failed, State: st, Err: err}
}
