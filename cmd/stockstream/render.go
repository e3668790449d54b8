package main

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/front-depiction/cli-stock/internal/stats"
	"github.com/front-depiction/cli-stock/internal/view"
)

// clearScreen moves the cursor home and wipes the terminal so each
// frame replaces the previous one.
const clearScreen = "\x1b[H\x1b[2J"

// renderer prints view snapshots as a tabwriter dashboard: a statistics
// table per symbol followed by the recent trade tape. Frames are built
// purely from snapshot data, so byte-identical frames mean nothing
// changed and are skipped instead of rewritten.
type renderer struct {
	out      io.Writer
	enhanced bool
	clear    bool

	mu        sync.Mutex
	lastFrame string
}

func newRenderer(out io.Writer, enhanced bool) *renderer {
	return &renderer{
		out:      out,
		enhanced: enhanced,
		clear:    true,
	}
}

// HandleSnapshot implements view.SnapshotHandler.
func (r *renderer) HandleSnapshot(s view.Snapshot) error {
	frame := r.render(s)

	r.mu.Lock()
	defer r.mu.Unlock()
	if frame == r.lastFrame {
		return nil
	}
	r.lastFrame = frame

	if r.clear {
		if _, err := io.WriteString(r.out, clearScreen); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}
	if _, err := io.WriteString(r.out, frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (r *renderer) render(s view.Snapshot) string {
	var buf bytes.Buffer

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	header := "SYMBOL\tLAST\tCOUNT\tMEAN\tSTDDEV\tMIN\tMAX"
	if r.enhanced {
		header += "\tVOLATILITY\tMOMENTUM\tVELOCITY\tSPREAD\tVWAP"
	}
	fmt.Fprintln(w, header)

	for _, sym := range s.Symbols {
		st := s.Statistics[sym]
		if st.Count == 0 {
			fmt.Fprintf(w, "%s\twaiting\t0\t-\t-\t-\t-", sym)
			if r.enhanced {
				fmt.Fprint(w, "\t-\t-\t-\t-\t-")
			}
			fmt.Fprintln(w)
			continue
		}

		fmt.Fprintf(w, "%s\t%.2f\t%d\t%.2f\t%.4f\t%.2f\t%.2f",
			sym, lastPrice(st), st.Count, st.Mean(), st.StdDev(), st.MinPrice(), st.MaxPrice())
		if r.enhanced {
			fmt.Fprintf(w, "\t%.2f%%\t%+.2f%%\t%.2f/s\t%.2f%%\t%.2f",
				st.Volatility(), st.Momentum(), st.TradeVelocity(), st.SpreadPct(), st.VWAP())
		}
		fmt.Fprintln(w)
	}
	w.Flush()

	if len(s.RecentTrades) > 0 {
		buf.WriteByte('\n')
		tape := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tape, "TIME\tSYMBOL\tPRICE\tVOLUME\tLATENCY")
		for _, t := range s.RecentTrades {
			fmt.Fprintf(tape, "%s\t%s\t%.2f\t%.0f\t%dms\n",
				time.UnixMilli(t.SourceTimestamp).Format("15:04:05.000"),
				t.Symbol, t.Price, t.Volume, t.LatencyMs)
		}
		tape.Flush()
	}

	return buf.String()
}

// lastPrice is the newest windowed price for the symbol.
func lastPrice(st stats.State) float64 {
	if len(st.Points) == 0 {
		return 0
	}
	return st.Points[len(st.Points)-1].Price
}
