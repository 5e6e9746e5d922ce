package validate

import (
	"context"
	"slices"

	"mdlog/internal/codec"
)

// Census counts records per channel and remembers the first channel each
// symbol was seen on.
type Census struct {
	Layout   codec.Layout
	Records  uint64
	Channels map[int32]uint64
	// FirstChannel maps a symbol to the channel of its first record.
	// Records with an empty symbol are counted but not attributed.
	FirstChannel map[string]int32
}

// SymbolsByFirstChannel groups symbols by their first channel, each group
// sorted.
func (c Census) SymbolsByFirstChannel() map[int32][]string {
	out := make(map[int32][]string)
	for sym, ch := range c.FirstChannel {
		out[ch] = append(out[ch], sym)
	}
	for _, syms := range out {
		slices.Sort(syms)
	}
	return out
}

// SortedChannels lists the channels seen, ascending.
func (c Census) SortedChannels() []int32 {
	chs := make([]int32, 0, len(c.Channels))
	for ch := range c.Channels {
		chs = append(chs, ch)
	}
	slices.Sort(chs)
	return chs
}

// TakeCensus streams every record of src once. Works for every layout.
func TakeCensus(ctx context.Context, src Source) (Census, error) {
	layout := src.Layout()
	c := Census{
		Layout:       layout,
		Channels:     make(map[int32]uint64),
		FirstChannel: make(map[string]int32),
	}

	count := src.Len()
	err := src.Visit(0, count, func(i uint64, rec []byte) error {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		key, err := codec.Peek(layout, rec)
		if err != nil {
			return err
		}
		c.Channels[key.Channel]++
		if len(key.Symbol) == 0 {
			return nil
		}
		if _, ok := c.FirstChannel[string(key.Symbol)]; !ok {
			c.FirstChannel[string(key.Symbol)] = key.Channel
		}
		return nil
	})
	if err != nil {
		return Census{}, err
	}
	c.Records = count
	return c, nil
}
