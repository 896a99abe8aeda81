package rtty

/*------------------------------------------------------------------
 *
 * Purpose:	Baudot / ITA2 (US-TTY) alphabet for 5 bit teleprinter codes.
 *
 * Description:	Two 32 entry tables, LETTERS and FIGURES.  Two of the
 *		code words don't print anything; they select which
 *		table is used for everything that follows.
 *
 *			27 (11011)	FIGURES shift
 *			31 (11111)	LETTERS shift
 *
 *		Both entries are NUL in both tables.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

// Table selects one of the two Baudot alphabets.
type Table int

const (
	Letters Table = iota
	Figures
)

func (t Table) String() string {
	switch t {
	case Letters:
		return "LTRS"
	case Figures:
		return "FIGS"
	default:
		return fmt.Sprintf("Table(%d)", int(t))
	}
}

const (
	CodeFigures byte = 27
	CodeLetters byte = 31

	codeMask = 0x1f
)

var lettersTable = [32]byte{
	'\000', 'E', '\n', 'A', ' ', 'S', 'I', 'U', '\r', 'D', 'R', 'J', 'N', 'F', 'C', 'K',
	'T', 'Z', 'L', 'W', 'H', 'Y', 'P', 'Q', 'O', 'B', 'G', '\000', 'M', 'X', 'V', '\000',
}

var figuresTable = [32]byte{
	'\000', '3', '\n', '-', ' ', '\a', '8', '7', '\r', '$', '4', '\'', ',', '!', ':', '(',
	'5', '"', ')', '2', '#', '6', '0', '1', '9', '?', '&', '\000', '.', '/', ';', '\000',
}

var ErrUnencodable = errors.New("character has no Baudot code")

// Lookup maps a 5 bit code word to a character in the given table.
// Bits above the low five are ignored.
func Lookup(table Table, code byte) byte {
	if table == Figures {
		return figuresTable[code&codeMask]
	}

	return lettersTable[code&codeMask]
}

// ShiftFor reports the table a shift code selects.
// ok is false for every code that isn't a shift.
func ShiftFor(code byte) (table Table, ok bool) {
	switch code & codeMask {
	case CodeFigures:
		return Figures, true
	case CodeLetters:
		return Letters, true
	default:
		return Letters, false
	}
}

/*------------------------------------------------------------------
 *
 * Name:	EncodeText
 *
 * Purpose:	Convert text to a sequence of Baudot code words.
 *
 * Inputs:	text	- Characters to send.  Lower case letters are
 *			  folded to upper case.
 *
 *		start	- Table the receiver is assumed to be using.
 *
 * Returns:	Code words, with shift codes inserted wherever the
 *		table must change, and the table in effect afterwards.
 *
 * Description:	NUL, LF, space and CR are the same in both tables so
 *		they never cause a shift.
 *
 *------------------------------------------------------------------*/

func EncodeText(text string, start Table) ([]byte, Table, error) {
	var codes = make([]byte, 0, len(text)+4)
	var current = start

	for i := 0; i < len(text); i++ {
		var ch = text[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}

		var lcode, inLetters = reverseLookup(&lettersTable, ch)
		var fcode, inFigures = reverseLookup(&figuresTable, ch)

		switch {
		case inLetters && inFigures:
			codes = append(codes, lcode)
		case inLetters:
			if current != Letters {
				codes = append(codes, CodeLetters)
				current = Letters
			}
			codes = append(codes, lcode)
		case inFigures:
			if current != Figures {
				codes = append(codes, CodeFigures)
				current = Figures
			}
			codes = append(codes, fcode)
		default:
			return nil, current, fmt.Errorf("%q at offset %d: %w", ch, i, ErrUnencodable)
		}
	}

	return codes, current, nil
}

func reverseLookup(table *[32]byte, ch byte) (byte, bool) {
	for code, c := range table {
		// Shift positions are NUL too; only code 0 stands for NUL itself.
		if c == ch && byte(code) != CodeFigures && byte(code) != CodeLetters {
			return byte(code), true
		}
	}

	return 0, false
}

// StripNulls drops the NUL bytes the decoder emits for shift codes.
func StripNulls(b []byte) []byte {
	var out = make([]byte, 0, len(b))
	for _, c := range b {
		if c != 0 {
			out = append(out, c)
		}
	}

	return out
}
