// Command dashboard-token issues a viewer token for a dashboard protected by
// DASHBOARD_JWT_SECRET.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	libconfig "energyprofile/backend/libs/config"
	"energyprofile/backend/services/dashboard-service/internal/service"
)

type tokenConfig struct {
	Secret string `yaml:"secret" env:"DASHBOARD_JWT_SECRET"`
}

func main() {
	subject := flag.String("subject", "viewer", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	var cfg struct {
		JWT tokenConfig `yaml:"jwt"`
	}
	if err := libconfig.LoadConfig(&cfg); err != nil {
		fail(err)
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		fail(errors.New("DASHBOARD_JWT_SECRET is not set"))
	}

	tokens, err := service.NewTokenService(cfg.JWT.Secret, *ttl)
	if err != nil {
		fail(err)
	}
	token, err := tokens.GenerateToken(*subject)
	if err != nil {
		fail(err)
	}
	fmt.Println(token)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "dashboard-token:", err)
	os.Exit(1)
}
