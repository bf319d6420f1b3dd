// Command tokengen mints HS256 access tokens for exercising the 2FA API
// locally: the generated token carries the user_id claim the API handlers
// read from the request context.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	secret := flag.String("secret", "very-secure-jwt-secret", "Secret key for signing the token")
	issuer := flag.String("issuer", "harbor-idm", "Issuer of the token")
	userID := flag.String("user-id", "", "User ID claim (defaults to a fresh UUID)")
	expiry := flag.Duration("expiry", 30*time.Minute, "Token expiry duration (e.g., 30m, 1h, 24h)")
	flag.Parse()

	id := *userID
	if id == "" {
		id = uuid.New().String()
	} else if _, err := uuid.Parse(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: user-id must be a UUID: %v\n", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":     *issuer,
		"sub":     id,
		"user_id": id,
		"iat":     now.Unix(),
		"exp":     now.Add(*expiry).Unix(),
	})

	tokenStr, err := token.SignedString([]byte(*secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tokenStr)
	fmt.Fprintf(os.Stderr, "user_id: %s\nexpires: %s\n", id, now.Add(*expiry).Format(time.RFC3339))
}
