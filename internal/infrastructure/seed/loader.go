// Package seed carga datos iniciales (saldos de stock y usuarios) desde un archivo YAML o JSON.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// StockRow saldo inicial de un producto en una bodega.
type StockRow struct {
	ProductID   int64  `mapstructure:"productId"`
	WarehouseID int64  `mapstructure:"warehouseId"`
	Category    string `mapstructure:"category"`
	Quantity    int64  `mapstructure:"quantity"`
}

// UserRow usuario inicial del directorio.
type UserRow struct {
	ID       string `mapstructure:"id"`
	Username string `mapstructure:"username"`
	Name     string `mapstructure:"name"`
	Role     string `mapstructure:"role"`
}

// Data contenido del archivo de semilla.
type Data struct {
	Stock []StockRow `mapstructure:"stock"`
	Users []UserRow  `mapstructure:"users"`
}

// Load lee el archivo (el formato se deduce de la extensión).
func Load(path string) (*Data, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer semilla %s: %w", path, err)
	}
	var d Data
	if err := v.Unmarshal(&d); err != nil {
		return nil, fmt.Errorf("decodificar semilla %s: %w", path, err)
	}
	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("semilla %s: %w", path, err)
	}
	return &d, nil
}

func (d *Data) validate() error {
	seen := make(map[[2]int64]bool, len(d.Stock))
	for i, s := range d.Stock {
		if s.ProductID <= 0 || s.WarehouseID <= 0 {
			return fmt.Errorf("stock[%d]: productId y warehouseId deben ser positivos", i)
		}
		k := [2]int64{s.ProductID, s.WarehouseID}
		if seen[k] {
			return fmt.Errorf("stock[%d]: saldo duplicado para producto %d en bodega %d", i, s.ProductID, s.WarehouseID)
		}
		seen[k] = true
	}
	for i, u := range d.Users {
		if strings.TrimSpace(u.Username) == "" {
			return fmt.Errorf("users[%d]: username vacío", i)
		}
		if _, ok := entity.ParseRole(u.Role); !ok {
			return fmt.Errorf("users[%d]: rol inválido %q", i, u.Role)
		}
	}
	return nil
}

// Balances convierte las filas de stock en saldos.
func (d *Data) Balances(now time.Time) []entity.StockBalance {
	out := make([]entity.StockBalance, 0, len(d.Stock))
	for _, s := range d.Stock {
		out = append(out, entity.StockBalance{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			Category:    strings.ToUpper(strings.TrimSpace(s.Category)),
			Quantity:    s.Quantity,
			UpdatedAt:   now,
		})
	}
	return out
}

// DirectoryUsers convierte las filas de usuarios; sin id se usa "seed-<username>".
func (d *Data) DirectoryUsers(now time.Time) []entity.User {
	out := make([]entity.User, 0, len(d.Users))
	for _, u := range d.Users {
		role, _ := entity.ParseRole(u.Role)
		username := strings.ToLower(strings.TrimSpace(u.Username))
		id := u.ID
		if id == "" {
			id = "seed-" + username
		}
		out = append(out, entity.User{
			ID:        id,
			Username:  username,
			Name:      u.Name,
			Role:      role,
			Status:    entity.UserStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}
