package main

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/danderson/objgraph"
)

// indenter writes lines to out, or to stdout if out is nil, each
// prefixed with the current indentation.
type indenter struct {
	out     io.Writer
	prefix  string
	midLine bool
}

func (i *indenter) f(msg string, args ...any) {
	fmt.Fprintf(i, msg+"\n", args...)
}

func (i *indenter) Write(bs []byte) (int, error) {
	out := i.out
	if out == nil {
		out = os.Stdout
	}
	ret := 0
	for len(bs) > 0 {
		if !i.midLine {
			i.midLine = true
			_, err := io.WriteString(out, i.prefix)
			if err != nil {
				return ret, err
			}
		}

		wr := bs
		idx := bytes.IndexByte(bs, '\n')
		if idx >= 0 {
			i.midLine = false
			wr, bs = bs[:idx+1], bs[idx+1:]
		} else {
			bs = nil
		}

		n, err := out.Write(wr)
		ret += n
		if err != nil {
			return ret, err
		}
	}
	return ret, nil
}

func (i *indenter) indent(n int) {
	i.prefix = strings.Repeat("  ", n)
}

// readAll iterates over the top-level objects of the stream in r. It
// stops after the first error.
func readAll(r io.Reader, opts *objgraph.Options) iter.Seq2[objgraph.Object, error] {
	return func(yield func(objgraph.Object, error) bool) {
		rd, err := objgraph.NewReader(r, opts)
		if err != nil {
			yield(nil, err)
			return
		}
		for {
			obj, err := rd.Read()
			if err == io.EOF {
				return
			}
			if !yield(obj, err) || err != nil {
				return
			}
		}
	}
}
