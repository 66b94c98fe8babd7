package testutil

import (
	"context"
	"image"

	"github.com/synospot/synospot/internal/recognize"
)

// FakeResponse is one scripted recognition result.
type FakeResponse struct {
	Tokens []recognize.Token
	Err    error
}

// FakeRecognizer is a scripted recognize.Service. Responses in Queue are
// consumed first, in order; otherwise tokens come from ByAllowlist keyed on
// the requested character set. The confidence floor is honored the way a
// real engine would honor it.
type FakeRecognizer struct {
	ByAllowlist map[string][]recognize.Token
	Queue       []FakeResponse
	Err         error

	Calls  []recognize.Options
	Closed bool
}

// Recognize returns the next scripted response.
func (f *FakeRecognizer) Recognize(ctx context.Context, _ image.Image, opts recognize.Options) ([]recognize.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.Calls = append(f.Calls, opts)

	if len(f.Queue) > 0 {
		resp := f.Queue[0]
		f.Queue = f.Queue[1:]
		if resp.Err != nil {
			return nil, resp.Err
		}
		return applyFloor(resp.Tokens, opts.MinConfidence), nil
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return applyFloor(f.ByAllowlist[opts.Allowlist], opts.MinConfidence), nil
}

// Close records that the service was torn down.
func (f *FakeRecognizer) Close() error {
	f.Closed = true
	return nil
}

func applyFloor(tokens []recognize.Token, floor float64) []recognize.Token {
	out := make([]recognize.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Confidence >= floor {
			out = append(out, t)
		}
	}
	return out
}
