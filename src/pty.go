package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Make decoded text available on a pseudo terminal.
 *
 * Description:	Older terminal programs expect a serial port.  They
 *		can open the slave side printed at startup instead.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"os"

	"github.com/creack/pty"
)

type PtyOutput struct {
	master *os.File
	slave  *os.File
}

func NewPtyOutput() (*PtyOutput, error) {
	var ptmx, pts, err = pty.Open()
	if err != nil {
		return nil, fmt.Errorf("could not create pseudo terminal: %w", err)
	}

	logger.Info("Virtual terminal for decoded text", "device", pts.Name())

	return &PtyOutput{master: ptmx, slave: pts}, nil
}

// Name is the device a client program should open.
func (p *PtyOutput) Name() string {
	return p.slave.Name()
}

// Write never fails for the caller; with nobody reading, output is dropped.
func (p *PtyOutput) Write(b []byte) (int, error) {
	var _, err = p.master.Write(b)
	if err != nil {
		logger.Debug("Pseudo terminal write", "err", err)
	}

	return len(b), nil
}

func (p *PtyOutput) Close() error {
	p.slave.Close() //nolint:gosec

	return p.master.Close()
}
