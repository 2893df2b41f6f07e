// Command devtoken mints an ID token signed with the service account key.
// The server only accepts it when AUTH_KEY_SOURCE=service-account.
package main

import (
	"flag"
	"fmt"
	"time"

	"finance_tracker/internal/auth"
	"finance_tracker/internal/config"
	"finance_tracker/internal/utils"

	"github.com/sirupsen/logrus"
)

func main() {
	uid := flag.String("uid", "", "subject (user id) of the token")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *uid == "" {
		logrus.Fatal("-uid is required")
	}

	cfg := config.LoadConfig()
	sa, err := auth.LoadServiceAccount(cfg.ServiceAccountPath)
	if err != nil {
		logrus.Fatalf("failed to load service account: %v", err)
	}
	key, err := sa.RSAPrivateKey()
	if err != nil {
		logrus.Fatalf("failed to read signing key: %v", err)
	}

	token, err := utils.GenerateIDToken(key, sa.PrivateKeyID, sa.ProjectID, *uid, *email, *ttl)
	if err != nil {
		logrus.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
