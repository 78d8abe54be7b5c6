// Command issue-token signs a staff bearer token with JWT_SECRET.
//
//	go run ./cmd/issue-token -user 1 -role admin -ttl 12h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/digital-menu/utils"
)

func main() {
	userID := flag.Uint("user", 0, "user id to put in the token")
	role := flag.String("role", "staff", "role: admin, staff or chef")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		utils.ErrorLogger.Fatal("JWT_SECRET is not set")
	}
	if *userID == 0 {
		utils.ErrorLogger.Fatal("-user is required")
	}

	token, err := utils.NewJWTManager(secret).GenerateToken(*userID, *role, *ttl)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
