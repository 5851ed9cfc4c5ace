package output

import (
	"encoding/hex"
	"io"
)

// WritePayload writes a commarea in the given format: a canonical hex dump
// for hex, the bytes unchanged for raw.
func WritePayload(w io.Writer, format Format, payload []byte) error {
	if format == FormatRaw {
		_, err := w.Write(payload)
		return err
	}
	d := hex.Dumper(w)
	if _, err := d.Write(payload); err != nil {
		return err
	}
	return d.Close()
}
