package main

import (
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"

	"github.com/oy3o/scale/dynamic"
)

// digest hashes data with the named algorithm. blake2b-256 is the payload
// hash used for signing long extrinsics; blake2b-128 is the storage key hasher.
func digest(algo string, data []byte) ([]byte, error) {
	switch algo {
	case "blake2b-256":
		sum := blake2b.Sum256(data)
		return sum[:], nil
	case "blake2b-128":
		h, err := blake2b.New(16, nil)
		if err != nil {
			return nil, err
		}
		h.Write(data)
		return h.Sum(nil), nil
	case "blake3":
		sum := blake3.Sum256(data)
		return sum[:], nil
	}
	return nil, fmt.Errorf("unknown hash algorithm %q (want blake2b-256, blake2b-128 or blake3)", algo)
}

// hashCmd implements "scalec hash".
func hashCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	var algo string
	fs := newFlagSet("hash", stderr, &opts)
	fs.StringVarP(&algo, "algo", "a", "blake2b-256", "hash algorithm: blake2b-256, blake2b-128 or blake3")

	input, err := parseFlags(fs, args, stdin)
	if err != nil {
		return helpOK(err)
	}
	data, err := parseHexArg(input)
	if err != nil {
		return err
	}
	sum, err := digest(algo, data)
	if err != nil {
		return err
	}
	opts.logger(stderr).Debug("hashed payload", "algo", algo, "bytes", len(data))
	fmt.Fprintln(stdout, dynamic.HexBytes(sum))
	return nil
}
