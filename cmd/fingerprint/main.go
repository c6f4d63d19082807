// Command fingerprint prints the job fingerprint of a credential pair, the
// key under which the server registers, logs and reports its study job.
//
//	fingerprint --identity 13800000000 --secret-stdin < secret.txt
//
// The fingerprint key defaults to $STUDY_STUDY_FINGERPRINT_KEY, matching the
// server's configuration.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/phrazzld/study-runner/internal/fingerprint"
	"github.com/phrazzld/study-runner/internal/study"
)

type options struct {
	identity    string
	secret      string
	secretStdin bool
	key         string
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fingerprint: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("fingerprint", pflag.ContinueOnError)
	fs.StringVar(&opts.identity, "identity", "", "account identity (11 digit mobile number)")
	fs.StringVar(&opts.secret, "secret", "", "account secret; prefer --secret-stdin")
	fs.BoolVar(&opts.secretStdin, "secret-stdin", false, "read the secret from the first line of stdin")
	fs.StringVar(&opts.key, "key", os.Getenv("STUDY_STUDY_FINGERPRINT_KEY"), "fingerprint key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.secretStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read secret: %w", err)
		}
		opts.secret = strings.TrimRight(line, "\r\n")
	}

	cred := study.Credential{Identity: opts.identity, Secret: opts.secret}
	if err := cred.Validate(); err != nil {
		return err
	}

	gen, err := fingerprint.New([]byte(opts.key))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, gen.Fingerprint(cred.Identity, cred.Secret))
	return err
}
