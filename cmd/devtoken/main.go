// devtoken emite un JWT firmado con JWT_SECRET para probar la API en local.
//
// Uso: go run ./cmd/devtoken -user u-1 -role planner
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/fillplan-api/internal/application/fillplan"
	"github.com/jhoicas/fillplan-api/pkg/config"
	"github.com/jhoicas/fillplan-api/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev-user", "user id (claim sub)")
	role := flag.String("role", fillplan.RolePlanner, "admin | planner | viewer")
	flag.Parse()

	switch *role {
	case fillplan.RoleAdmin, fillplan.RolePlanner, fillplan.RoleViewer:
	default:
		fmt.Fprintf(os.Stderr, "rol desconocido: %s\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.App.Env == "production" {
		fmt.Fprintln(os.Stderr, "devtoken no se usa en production")
		os.Exit(1)
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
