// scalec encodes and decodes compact binary payloads against a type
// expression, for inspecting extrinsics, storage values and RPC parameters
// by hand.
//
// Usage:
//
//	scalec encode -t TYPE [--hash ALGO] JSON
//	scalec decode -t TYPE [--format json|cbor] [--strict] HEX
//	scalec compact [--decode] [--strict] VALUE
//	scalec hash [--algo ALGO] HEX
//
// A positional argument of "-" is read from stdin.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/oy3o/scale/dynamic"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errors.New("no command given")
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "encode":
		return encodeCmd(args, stdin, stdout, stderr)
	case "decode":
		return decodeCmd(args, stdin, stdout, stderr)
	case "compact":
		return compactCmd(args, stdin, stdout, stderr)
	case "hash":
		return hashCmd(args, stdin, stdout, stderr)
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	}
	printUsage(stderr)
	return fmt.Errorf("unknown command %q", cmd)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `scalec - encode and decode compact binary payloads

USAGE
    scalec <command> [flags] <value>

COMMANDS
    encode    Encode a JSON value as TYPE and print it as 0x hex
    decode    Decode 0x hex as TYPE and print the value
    compact   Encode an integer in compact form, or decode one with --decode
    hash      Hash 0x hex with blake2b-256, blake2b-128 or blake3

TYPES
    u8 u16 u32 u64 u128 i8 .. i128 bool str Bytes
    Compact<T> Vec<T> Option<T> Result<T, E> [T; N] (A, B, ..)
    Enum{Name, Other: T, ..}

EXAMPLES
    scalec encode -t 'Vec<u32>' '[1, 2, 3]'
    scalec decode -t 'Enum{None, Transfer: (Compact<u128>, [u8; 32])}' 0x01...
    scalec compact 1073741824
    scalec compact --decode --strict 0x0100

ENVIRONMENT
    SCALE_DEBUG    Enable debug logging
`)
}

// options holds the flags every command accepts.
type options struct {
	verbose bool
}

func newFlagSet(name string, stderr io.Writer, opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug detail to stderr")
	return fs
}

func (o *options) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose || os.Getenv("SCALE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// parseFlags parses args and returns the single positional value, reading
// stdin when it is "-". After --help it returns pflag.ErrHelp; see helpOK.
func parseFlags(fs *pflag.FlagSet, args []string, stdin io.Reader) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one value, got %d arguments", fs.Name(), fs.NArg())
	}
	arg := fs.Arg(0)
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(bytes.TrimSpace(data)), nil
}

func helpOK(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

func compile(expr string) (*dynamic.Type, error) {
	if expr == "" {
		return nil, errors.New("--type is required")
	}
	return dynamic.Parse(expr)
}

func parseHexArg(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	var b dynamic.HexBytes
	if err := b.UnmarshalText([]byte(s)); err != nil {
		return nil, fmt.Errorf("parse hex input: %w", err)
	}
	return b, nil
}
