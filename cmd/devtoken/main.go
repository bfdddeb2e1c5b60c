// Command devtoken mints access tokens for local development against the
// JWT_SECRET the API is configured with.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/config"
)

func main() {
	userID := flag.String("user", "dev-user", "user id claim")
	email := flag.String("email", "dev@example.com", "email claim")
	name := flag.String("name", "Dev User", "name claim")
	roles := flag.String("roles", auth.RoleCustomer, "comma separated roles")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[DevToken] %v", err)
	}
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatalf("[DevToken] %v", err)
	}

	token, expiresAt, err := auth.NewJWTService(cfg.JWTSecret, *ttl).GenerateAccessToken(auth.Principal{
		UserID: *userID,
		Email:  *email,
		Name:   *name,
		Roles:  strings.Split(*roles, ","),
	})
	if err != nil {
		log.Fatalf("[DevToken] %v", err)
	}

	log.Printf("[DevToken] Token for %s expires at %s", *userID, expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
