// seed_stock genera un script SQL con los saldos iniciales de stock a partir de un CSV exportado
// del sistema anterior (columnas: product_id, warehouse_id, category, quantity).
//
// Uso: go run ./cmd/seed_stock [-latin1] [-sep ';'] [-out ruta.sql] saldos.csv
// Por defecto escribe: internal/infrastructure/postgres/migrations/002_seed_stock.sql
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type balance struct {
	productID   int64
	warehouseID int64
	category    string
	quantity    int64
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1")
	sep := flag.String("sep", ",", "separador de columnas")
	outFlag := flag.String("out", "", "archivo de salida")
	flag.Parse()

	csvPath := "saldos.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := parseBalances(in, []rune(*sep)[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_stock.sql")
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, csvPath, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d saldos\n", outPath, len(rows))
}

// parseBalances lee el CSV; la primera fila es encabezado si su primera columna no es numérica.
// Filas repetidas (producto, bodega) se suman.
func parseBalances(r io.Reader, sep rune) ([]balance, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 4

	byKey := map[[2]int64]*balance{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			if _, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64); err != nil {
				continue
			}
		}
		b, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		k := [2]int64{b.productID, b.warehouseID}
		if prev, ok := byKey[k]; ok {
			prev.quantity += b.quantity
			continue
		}
		byKey[k] = &b
	}

	out := make([]balance, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].productID != out[j].productID {
			return out[i].productID < out[j].productID
		}
		return out[i].warehouseID < out[j].warehouseID
	})
	return out, nil
}

func parseRow(rec []string) (balance, error) {
	productID, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil || productID <= 0 {
		return balance{}, fmt.Errorf("product_id inválido %q", rec[0])
	}
	warehouseID, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
	if err != nil || warehouseID <= 0 {
		return balance{}, fmt.Errorf("warehouse_id inválido %q", rec[1])
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
	if err != nil {
		return balance{}, fmt.Errorf("quantity inválida %q", rec[3])
	}
	return balance{
		productID:   productID,
		warehouseID: warehouseID,
		category:    strings.ToUpper(strings.TrimSpace(rec[2])),
		quantity:    qty,
	}, nil
}

func writeSQL(w io.Writer, source string, rows []balance) error {
	var sb strings.Builder
	sb.WriteString("-- Saldos iniciales de stock\n")
	fmt.Fprintf(&sb, "-- Generado desde %s\n\n", filepath.Base(source))
	if len(rows) == 0 {
		sb.WriteString("-- (sin filas)\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}
	sb.WriteString("INSERT INTO stock (product_id, warehouse_id, category, quantity) VALUES\n")
	for i, b := range rows {
		fmt.Fprintf(&sb, "  (%d, %d, '%s', %d)", b.productID, b.warehouseID, escapeSQL(b.category), b.quantity)
		if i < len(rows)-1 {
			sb.WriteString(",\n")
		} else {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("ON CONFLICT (product_id, warehouse_id) DO UPDATE\n")
	sb.WriteString("  SET category = EXCLUDED.category, quantity = EXCLUDED.quantity, updated_at = now();\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
