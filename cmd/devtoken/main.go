// Command devtoken prints a signed bearer token for a principal, using the
// same JWT_* environment as the server. Intended for local development.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "offsetledger/internal/jwt_token"
	"offsetledger/internal/platform/config"
	"offsetledger/pkg/domain"
)

func main() {
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: devtoken [-ttl 1h] <principal>")
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(raw string, ttl time.Duration) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	principal, err := domain.ParsePrincipal(raw)
	if err != nil {
		return err
	}
	token, err := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience).
		GenerateAccessToken(principal, ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
