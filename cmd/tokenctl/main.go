package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"petshop-api/internal/auth"
	"petshop-api/internal/config"

	"github.com/alecthomas/kong"
)

type CLI struct {
	EnvFile string `default:".env" help:"Dotenv file to read before the environment."`

	Mint    MintCmd    `cmd:"" help:"Sign an access token for a user id."`
	Inspect InspectCmd `cmd:"" help:"Verify a token and print its claims."`
}

type MintCmd struct {
	UID string `required:"" help:"User id to put in the uid claim."`
}

func (c *MintCmd) Run(m *auth.Manager, out io.Writer) error {
	tok, err := m.Issue(time.Now(), auth.UID(c.UID))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok)
	return err
}

type InspectCmd struct {
	Token string `arg:"" help:"Compact JWS to verify."`
	At    int64  `help:"Verify as of this Unix time instead of now."`
}

var errRejected = errors.New("token rejected")

func (c *InspectCmd) Run(m *auth.Manager, out io.Writer) error {
	now := time.Now()
	if c.At > 0 {
		now = time.Unix(c.At, 0)
	}
	claims, err := m.Verify(c.Token, now)
	if err != nil {
		rej := auth.Reject(err)
		fmt.Fprintf(out, "rejected: %s (%s)\n", rej.Reason, rej.Message)
		return fmt.Errorf("%w: %v", errRejected, err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(claims)
}

func main() {
	var cli CLI
	cliCtx := kong.Parse(&cli,
		kong.Name("tokenctl"),
		kong.Description("Mint and inspect API access tokens with the server's signing key."),
	)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	authCfg, err := config.LoadAuth(cli.EnvFile)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	m, err := auth.NewManager(authCfg)
	if err != nil {
		logger.Error("failed to load signing key", slog.Any("error", err))
		os.Exit(1)
	}

	cliCtx.Bind(m)
	cliCtx.BindTo(os.Stdout, (*io.Writer)(nil))

	if err := cliCtx.Run(); err != nil {
		if !errors.Is(err, errRejected) {
			logger.Error("failed to run CLI", slog.Any("error", err))
		}
		os.Exit(1)
	}
}
