package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/oy3o/scale"
	"github.com/oy3o/scale/dynamic"
)

// encodeCmd implements "scalec encode".
func encodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	var typeExpr, hashAlgo string
	fs := newFlagSet("encode", stderr, &opts)
	fs.StringVarP(&typeExpr, "type", "t", "", "type expression, e.g. 'Vec<(u32, bool)>' (required)")
	fs.StringVar(&hashAlgo, "hash", "", "also print the hash of the encoding (blake2b-256, blake2b-128, blake3)")

	input, err := parseFlags(fs, args, stdin)
	if err != nil {
		return helpOK(err)
	}
	logger := opts.logger(stderr)

	t, err := compile(typeExpr)
	if err != nil {
		return err
	}
	codec, err := t.Codec()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parse JSON value: %w", err)
	}

	data, err := scale.Encode(codec, v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t, err)
	}
	logger.Debug("encoded value", "type", t.String(), "bytes", len(data))
	fmt.Fprintln(stdout, dynamic.HexBytes(data))

	if hashAlgo != "" {
		sum, err := digest(hashAlgo, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, dynamic.HexBytes(sum))
	}
	return nil
}
