package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Save decoded text to a log file.
 *
 * Description: One CSV line per line of received text, for easy reading
 *		and later processing.
 *
 *		There are two alternatives here.
 *
 *		-L logfile		Specify full file path.
 *
 *		-l logdir		Daily names will be created here.
 *
 *		Use one or the other but not both.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const textLogHeader = "chan,utime,isotime,source,text\n"

type TextLog struct {
	dailyNames bool
	path       string // Directory when dailyNames, otherwise the file.

	fp        *os.File
	openFname string

	now func() time.Time
}

/*------------------------------------------------------------------
 *
 * Function:	NewTextLog
 *
 * Purpose:	Initialization at start of application.
 *
 * Inputs:	dailyNames	- True if daily names should be generated.
 *				  In this case path is a directory.
 *				  When false, path would be the file name.
 *
 *		path		- Log file name or just directory.
 *				  Use "." for current directory.
 *				  Empty string disables feature.
 *
 * Description:	A directory that doesn't exist is created, one level
 *		only.  If that fails we fall back to ".".
 *
 *------------------------------------------------------------------*/

func NewTextLog(dailyNames bool, path string) *TextLog {
	var l = &TextLog{dailyNames: dailyNames, now: time.Now} //nolint:exhaustruct

	if len(path) == 0 {
		return l
	}

	if !dailyNames {
		logger.Info("Log file", "path", path)
		l.path = path

		return l
	}

	var stat, statErr = os.Stat(path)
	switch {
	case statErr == nil && stat.IsDir():
		l.path = path
	case statErr == nil:
		logger.Error("Log file location is not a directory, using current working directory instead", "path", path)
		l.path = "."
	default:
		var mkdirErr = os.Mkdir(path, 0o755)
		if mkdirErr == nil {
			logger.Info("Log file location has been created", "path", path)
			l.path = path
		} else {
			logger.Error("Failed to create log file location, using current working directory instead", "path", path, "err", mkdirErr)
			l.path = "."
		}
	}

	return l
}

func (l *TextLog) Enabled() bool {
	return len(l.path) > 0
}

func (l *TextLog) open() error {
	var fname = l.path
	if l.dailyNames {
		// Daily names are by UTC date.
		var name = l.now().UTC().Format("2006-01-02.log")

		if l.fp != nil && name != l.openFname {
			l.Close()
		}

		fname = filepath.Join(l.path, name)
		l.openFname = name
	}

	if l.fp != nil {
		return nil
	}

	// Header only if this will be the first line.
	var _, statErr = os.Stat(fname)
	var alreadyThere = statErr == nil

	logger.Info("Opening log file", "path", fname)

	var f, err = os.OpenFile(fname, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644) //nolint:gosec
	if err != nil {
		l.openFname = ""
		return fmt.Errorf("can't open log file %q for write: %w", fname, err)
	}
	l.fp = f

	if !alreadyThere {
		_, err = l.fp.WriteString(textLogHeader)
		if err != nil {
			return fmt.Errorf("writing log header: %w", err)
		}
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Function:	Write
 *
 * Purpose:	Save one line of decoded text.
 *
 * Inputs:	channel	- Radio channel where heard.
 *
 *		source	- Where the audio came from, e.g. file name.
 *
 *		text	- Decoded line, without line ending.
 *
 *------------------------------------------------------------------*/

func (l *TextLog) Write(channel int, source string, text string) error {
	if !l.Enabled() {
		return nil
	}

	var err = l.open()
	if err != nil {
		return err
	}

	var now = l.now().UTC()

	var w = csv.NewWriter(l.fp)
	err = w.Write([]string{
		strconv.Itoa(channel), strconv.FormatInt(now.Unix(), 10), now.Format("2006-01-02T15:04:05Z"),
		source, text,
	})
	if err != nil {
		return fmt.Errorf("CSV write error: %w", err)
	}
	w.Flush()

	return w.Error()
}

// Close any open log file.  Called when exiting or when date changes.
func (l *TextLog) Close() {
	if l.fp == nil {
		return
	}

	logger.Info("Closing log file", "path", l.fp.Name())

	l.fp.Close() //nolint:gosec
	l.fp = nil
}
