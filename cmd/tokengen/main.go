// tokengen emite tokens Bearer HS256 para desarrollo con el secreto configurado (JWT_SECRET).
//
// Uso: go run ./cmd/tokengen -role MANAGER -sub u1 [-exp 60]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/jwt"
)

func main() {
	role := flag.String("role", string(entity.RoleOperator), "OPERATOR | MANAGER | ADMIN")
	sub := flag.String("sub", "dev-user", "subject del token")
	exp := flag.Int("exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	r, ok := entity.ParseRole(*role)
	if !ok {
		fmt.Fprintf(os.Stderr, "Rol desconocido %q\n", *role)
		os.Exit(2)
	}
	minutes := cfg.JWT.Expiration
	if *exp != 0 {
		minutes = *exp
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *sub, string(r), cfg.JWT.Issuer, minutes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
