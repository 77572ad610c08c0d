package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/oy3o/scale"
)

// encMode writes decoded values as Core Deterministic CBOR, so the same
// payload always produces the same bytes. Big integers use the bignum tags
// only when they do not fit a CBOR integer.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("scalec: CBOR encoder initialization failed: " + err.Error())
	}
}

// decodeCmd implements "scalec decode".
func decodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	var typeExpr, format string
	var strict, trailing bool
	fs := newFlagSet("decode", stderr, &opts)
	fs.StringVarP(&typeExpr, "type", "t", "", "type expression, e.g. 'Vec<(u32, bool)>' (required)")
	fs.StringVarP(&format, "format", "f", "json", "output format: json or cbor")
	fs.BoolVar(&strict, "strict", false, "reject compact integers that are not minimally encoded")
	fs.BoolVar(&trailing, "allow-trailing", false, "ignore bytes left after the value")

	input, err := parseFlags(fs, args, stdin)
	if err != nil {
		return helpOK(err)
	}
	logger := opts.logger(stderr)

	if format != "json" && format != "cbor" {
		return fmt.Errorf("unknown format %q (want json or cbor)", format)
	}
	t, err := compile(typeExpr)
	if err != nil {
		return err
	}
	codec, err := t.Codec()
	if err != nil {
		return err
	}
	data, err := parseHexArg(input)
	if err != nil {
		return err
	}

	var ropts []scale.ReaderOption
	if strict {
		ropts = append(ropts, scale.WithStrictCompact())
	}
	if trailing {
		ropts = append(ropts, scale.WithTrailingData())
	}
	v, err := scale.Decode(codec, data, ropts...)
	if err != nil {
		return fmt.Errorf("decode %s: %w", t, err)
	}
	logger.Debug("decoded value", "type", t.String(), "bytes", len(data), "strict", strict)

	if format == "cbor" {
		out, err := encMode.Marshal(v)
		if err != nil {
			return fmt.Errorf("write CBOR: %w", err)
		}
		_, err = stdout.Write(out)
		return err
	}
	return json.NewEncoder(stdout).Encode(v)
}
