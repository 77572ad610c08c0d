package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/oy3o/scale"
	"github.com/oy3o/scale/dynamic"
)

// compactCmd implements "scalec compact".
func compactCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	var decode, strict bool
	fs := newFlagSet("compact", stderr, &opts)
	fs.BoolVarP(&decode, "decode", "d", false, "decode 0x hex instead of encoding an integer")
	fs.BoolVar(&strict, "strict", false, "with --decode, reject non-minimal encodings")

	input, err := parseFlags(fs, args, stdin)
	if err != nil {
		return helpOK(err)
	}
	logger := opts.logger(stderr)

	if decode {
		data, err := parseHexArg(input)
		if err != nil {
			return err
		}
		var ropts []scale.ReaderOption
		if strict {
			ropts = append(ropts, scale.WithStrictCompact())
		}
		v, err := scale.Decode(scale.CompactBig, data, ropts...)
		if err != nil {
			return fmt.Errorf("decode compact: %w", err)
		}
		fmt.Fprintln(stdout, v)
		return nil
	}

	v, ok := new(big.Int).SetString(input, 0)
	if !ok {
		return fmt.Errorf("%q is not an integer", input)
	}
	data, err := scale.Encode(scale.CompactBig, v)
	if err != nil {
		return fmt.Errorf("encode compact: %w", err)
	}
	logger.Debug("encoded compact", "value", v.String(), "bytes", len(data))
	fmt.Fprintln(stdout, dynamic.HexBytes(data))
	return nil
}
