package logging

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
)

type simpleRecord struct {
	Level     string          `json:"level"`
	Time      string          `json:"time"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	MaskError string          `json:"mask_error"`
}

// simpleWriter formats logs as: [LEVEL](TIMESTAMP): MESSAGE {DATA}
type simpleWriter struct {
	out io.Writer
}

func (sw *simpleWriter) Write(p []byte) (n int, err error) {
	var rec simpleRecord
	if err := json.Unmarshal(p, &rec); err != nil {
		return sw.out.Write(p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s](%s): %s", strings.ToUpper(rec.Level), rec.Time, rec.Message)
	if len(rec.Data) > 0 {
		b.WriteByte(' ')
		b.Write(rec.Data)
	}
	if rec.MaskError != "" {
		fmt.Fprintf(&b, " (mask_error: %s)", rec.MaskError)
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(sw.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// dualWriter sends each record to the console and to a log file.
type dualWriter struct {
	consoleWriter io.Writer
	fileWriter    io.Writer
}

func (dw *dualWriter) Write(p []byte) (n int, err error) {
	n1, err1 := dw.consoleWriter.Write(p)
	// File writer is attempted even if the console fails.
	n2, err2 := dw.fileWriter.Write(p)

	n = max(n1, n2)
	if err1 != nil {
		return n, err1
	}
	return n, err2
}
