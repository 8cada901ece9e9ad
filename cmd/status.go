package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Mohsinsiddi/raisin/internal/chain"
	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/Mohsinsiddi/raisin/internal/raisin"
	"github.com/Mohsinsiddi/raisin/internal/ui"
	"github.com/mattn/go-isatty"
)

// statusPrinter prints one line per protocol stage. On a terminal the
// confirmation wait is a spinner showing the live count.
type statusPrinter struct {
	w       io.Writer
	network *chain.Network
	tty     bool

	mu   sync.Mutex
	spin *ui.Spinner
	step string
}

var _ raisin.Reporter = (*statusPrinter)(nil)

func newStatusPrinter(w io.Writer, network *chain.Network) *statusPrinter {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd())
	}
	return &statusPrinter{w: w, network: network, tty: tty}
}

// Report implements raisin.Reporter.
func (p *statusPrinter) Report(e raisin.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Stage {
	case raisin.StageBuilt:
		fmt.Fprintf(p.w, "%s %s\n", ui.Meta("built     "), e.Call)
	case raisin.StageSubmitted:
		fmt.Fprintf(p.w, "%s %s %s\n", ui.Meta("submitted "), e.Step, ui.Addr(e.Hash.Hex()))
		if link := p.network.TxURL(e.Hash.Hex()); link != "" {
			fmt.Fprintf(p.w, "%s %s\n", ui.Meta("          "), ui.Meta(link))
		}
	case raisin.StageConfirming:
		p.step = e.Step
		msg := fmt.Sprintf("waiting for %d confirmations of %s", e.Depth, e.Step)
		if p.tty {
			p.spin = ui.NewSpinner(p.w, msg)
			p.spin.Start()
		} else {
			fmt.Fprintf(p.w, "%s %s\n", ui.Meta("confirming"), msg)
		}
	case raisin.StageConfirmed:
		p.stopLocked()
		fmt.Fprintln(p.w, ui.Success(fmt.Sprintf("%s confirmed in block %d (%d confirmations)",
			e.Step, e.Receipt.BlockNumber, e.Receipt.Confirmations)))
	case raisin.StageFailed:
		p.stopLocked()
	}
}

// progress is the sender's confirmation callback.
func (p *statusPrinter) progress(tx *contract.PendingTx, confirmations, depth uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := fmt.Sprintf("%s: %d/%d confirmations", p.step, confirmations, depth)
	if p.spin != nil {
		p.spin.Update(msg)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", ui.Meta("confirming"), msg)
}

func (p *statusPrinter) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *statusPrinter) stopLocked() {
	if p.spin != nil {
		p.spin.Stop()
		p.spin = nil
	}
}
