package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/vitalvas/httphmac/hmacauth"
)

// runRequest signs and sends a request, verifies the v2 response
// signature and prints the status line and body.
func runRequest(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, f := newFlagSet("request", stderr)
	verify := fs.Bool("verify", true, "verify the response signature (version 2)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	r, signer, err := f.build()
	if err != nil {
		return err
	}

	resp, err := r.Do(ctx, http.DefaultClient)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if v2, ok := signer.(*hmacauth.V2Signer); ok && *verify {
		ok, err := v2.ResponseSigner().Check(r, resp, f.secret)
		if err != nil {
			return err
		}

		if !ok {
			return hmacauth.ErrResponseSignatureInvalid
		}
	}

	fmt.Fprintln(stdout, resp.Status)

	_, err = io.Copy(stdout, resp.Body)

	return err
}
