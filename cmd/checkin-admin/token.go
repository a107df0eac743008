package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/clientcheckin/checkin-web/internal/adapters/devauth"
)

type mintOptions struct {
	Subject string
	Email   string
	Name    string
	TTL     time.Duration
}

func parseMintFlags(cmdCtx *commandContext, args []string) (mintOptions, error) {
	fs := flag.NewFlagSet("mint-dev-token", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	dev := cmdCtx.Config.Auth.DevAuth
	var opts mintOptions
	fs.StringVar(&opts.Subject, "subject", dev.Subject, "Token subject")
	fs.StringVar(&opts.Email, "email", dev.Email, "Token email claim")
	fs.StringVar(&opts.Name, "name", dev.Name, "Token name claim")
	fs.DurationVar(&opts.TTL, "ttl", time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return mintOptions{}, err
	}
	if opts.TTL <= 0 {
		return mintOptions{}, fmt.Errorf("--ttl must be positive, got %s", opts.TTL)
	}
	return opts, nil
}

func runMintDevToken(cmdCtx *commandContext, args []string) error {
	opts, err := parseMintFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	key := cmdCtx.Config.Auth.DevAuth.SigningKey
	if key == "" {
		return errors.New("DEV_AUTH_SIGNING_KEY is not set")
	}

	now := time.Now()
	token, err := devauth.Mint([]byte(key), devauth.Claims{
		Email: opts.Email,
		Name:  opts.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   opts.Subject,
			Issuer:    devauth.Issuer,
			Audience:  jwt.ClaimStrings{devauth.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(opts.TTL)),
		},
	})
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "%s\n", token)
}
