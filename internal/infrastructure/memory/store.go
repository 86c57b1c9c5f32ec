// Package memory implementa los repositorios sobre mapas en memoria protegidos por un RWMutex.
// Las lecturas trabajan sobre copias; las transacciones toman el lock de escritura y deshacen
// sus cambios si la función devuelve error.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.MovementRepository = (*MovementRepo)(nil)
	_ repository.DocumentRepository = (*DocumentRepo)(nil)
	_ repository.StockRepository    = (*StockRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.TxRunner           = (*Store)(nil)
)

type stockKey struct {
	productID   int64
	warehouseID int64
}

// Store almacenamiento compartido por todos los repositorios en memoria.
type Store struct {
	mu        sync.RWMutex
	movements map[string]*entity.Movement
	documents map[string]*entity.Document
	stock     map[stockKey]*entity.StockBalance
	users     map[string]*entity.User // por username
	seq       int64                   // orden de inserción
	order     map[string]int64
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		movements: make(map[string]*entity.Movement),
		documents: make(map[string]*entity.Document),
		stock:     make(map[stockKey]*entity.StockBalance),
		users:     make(map[string]*entity.User),
		order:     make(map[string]int64),
	}
}

// tx registra deshacer-acciones mientras el Store está bloqueado por Run.
type tx struct {
	undo []func()
}

func (t *tx) record(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

func (t *tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

// Run ejecuta fn con el lock de escritura tomado. Si fn falla se deshacen sus cambios.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	docRepo repository.DocumentRepository,
	stockRepo repository.StockRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{}
	err := fn(&MovementRepo{s: s, tx: t}, &DocumentRepo{s: s, tx: t}, &StockRepo{s: s, tx: t})
	if err != nil {
		t.rollback()
	}
	return err
}

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Documents repositorio de documentos fuera de transacción.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{s: s} }

// Stock repositorio de saldos fuera de transacción.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// Users repositorio del directorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// read/write toman el lock salvo dentro de Run, donde ya está tomado.
func (s *Store) read(t *tx, fn func()) {
	if t == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

func (s *Store) write(t *tx, fn func()) {
	if t == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

func (s *Store) nextSeq(id string, t *tx) {
	s.seq++
	s.order[id] = s.seq
	t.record(func() { delete(s.order, id) })
}

// ─── Movimientos ────────────────────────────────────────────────────────────

// MovementRepo repositorio de movimientos en memoria.
type MovementRepo struct {
	s  *Store
	tx *tx
}

// Create inserta un movimiento nuevo.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	var err error
	r.s.write(r.tx, func() {
		if _, exists := r.s.movements[m.ID]; exists {
			err = domain.Business("movement " + m.ID + " already exists")
			return
		}
		r.s.movements[m.ID] = m.Clone()
		r.s.nextSeq(m.ID, r.tx)
		id := m.ID
		r.tx.record(func() { delete(r.s.movements, id) })
	})
	return err
}

// GetByID devuelve una copia o (nil, nil).
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	r.s.read(r.tx, func() { out = r.s.movements[id].Clone() })
	return out, nil
}

// GetForUpdate igual que GetByID; la exclusión la da el lock de Run.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza el movimiento existente.
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	var err error
	r.s.write(r.tx, func() {
		prev, ok := r.s.movements[m.ID]
		if !ok {
			err = domain.NotFound("movement", m.ID)
			return
		}
		r.s.movements[m.ID] = m.Clone()
		r.tx.record(func() { r.s.movements[prev.ID] = prev })
	})
	return err
}

// List devuelve copias en orden de creación.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	out := []*entity.Movement{}
	r.s.read(r.tx, func() {
		for _, m := range r.s.movements {
			if filter.Status != "" && m.Status != filter.Status {
				continue
			}
			if filter.Type != "" && m.Type != filter.Type {
				continue
			}
			out = append(out, m.Clone())
		}
		sort.Slice(out, func(i, j int) bool { return r.s.order[out[i].ID] < r.s.order[out[j].ID] })
	})
	return out, nil
}

// ─── Documentos ─────────────────────────────────────────────────────────────

// DocumentRepo repositorio de documentos en memoria.
type DocumentRepo struct {
	s  *Store
	tx *tx
}

// Create inserta un documento nuevo.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	var err error
	r.s.write(r.tx, func() {
		if _, exists := r.s.documents[d.ID]; exists {
			err = domain.Business("document " + d.ID + " already exists")
			return
		}
		r.s.documents[d.ID] = d.Clone()
		r.s.nextSeq(d.ID, r.tx)
		id := d.ID
		r.tx.record(func() { delete(r.s.documents, id) })
	})
	return err
}

// GetByID devuelve una copia o (nil, nil).
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	var out *entity.Document
	r.s.read(r.tx, func() { out = r.s.documents[id].Clone() })
	return out, nil
}

// GetForUpdate igual que GetByID dentro de Run.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza el documento existente.
func (r *DocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	var err error
	r.s.write(r.tx, func() {
		prev, ok := r.s.documents[d.ID]
		if !ok {
			err = domain.NotFound("document", d.ID)
			return
		}
		r.s.documents[d.ID] = d.Clone()
		r.tx.record(func() { r.s.documents[prev.ID] = prev })
	})
	return err
}

// List devuelve copias en orden de creación.
func (r *DocumentRepo) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	out := []*entity.Document{}
	r.s.read(r.tx, func() {
		for _, d := range r.s.documents {
			if filter.Status != "" && d.Status != filter.Status {
				continue
			}
			if filter.Type != "" && d.Type != filter.Type {
				continue
			}
			out = append(out, d.Clone())
		}
		sort.Slice(out, func(i, j int) bool { return r.s.order[out[i].ID] < r.s.order[out[j].ID] })
	})
	return out, nil
}

// ─── Stock ──────────────────────────────────────────────────────────────────

// StockRepo saldos por (producto, bodega) en memoria.
type StockRepo struct {
	s  *Store
	tx *tx
}

// List devuelve los saldos que cumplen el filtro. Con WarehouseID se devuelven todos los saldos
// de los productos presentes en esa bodega.
func (r *StockRepo) List(ctx context.Context, filter repository.StockFilter) ([]*entity.StockBalance, error) {
	out := []*entity.StockBalance{}
	r.s.read(r.tx, func() {
		var inWarehouse map[int64]bool
		if filter.WarehouseID != nil {
			inWarehouse = make(map[int64]bool)
			for k := range r.s.stock {
				if k.warehouseID == *filter.WarehouseID {
					inWarehouse[k.productID] = true
				}
			}
		}
		for k, b := range r.s.stock {
			if inWarehouse != nil && !inWarehouse[k.productID] {
				continue
			}
			if filter.Category != "" && b.Category != filter.Category {
				continue
			}
			c := *b
			out = append(out, &c)
		}
	})
	sortBalances(out)
	return out, nil
}

// ListByProduct saldos de un producto en todas las bodegas.
func (r *StockRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.StockBalance, error) {
	out := []*entity.StockBalance{}
	r.s.read(r.tx, func() {
		for k, b := range r.s.stock {
			if k.productID == productID {
				c := *b
				out = append(out, &c)
			}
		}
	})
	sortBalances(out)
	return out, nil
}

// Apply suma delta al saldo; un saldo nuevo hereda la categoría del producto en otras bodegas.
func (r *StockRepo) Apply(ctx context.Context, productID, warehouseID, delta int64, now time.Time) error {
	r.s.write(r.tx, func() {
		key := stockKey{productID, warehouseID}
		if b, ok := r.s.stock[key]; ok {
			prev := *b
			b.Quantity += delta
			b.UpdatedAt = now
			r.tx.record(func() { *b = prev })
			return
		}
		r.s.stock[key] = &entity.StockBalance{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Category:    r.s.categoryOf(productID),
			Quantity:    delta,
			UpdatedAt:   now,
		}
		r.tx.record(func() { delete(r.s.stock, key) })
	})
	return nil
}

func (s *Store) categoryOf(productID int64) string {
	for k, b := range s.stock {
		if k.productID == productID && b.Category != "" {
			return b.Category
		}
	}
	return ""
}

func sortBalances(list []*entity.StockBalance) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].ProductID != list[j].ProductID {
			return list[i].ProductID < list[j].ProductID
		}
		return list[i].WarehouseID < list[j].WarehouseID
	})
}

// SeedStock carga saldos iniciales (reemplaza los existentes con la misma clave).
func (s *Store) SeedStock(balances []entity.StockBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range balances {
		c := b
		s.stock[stockKey{b.ProductID, b.WarehouseID}] = &c
	}
}

// ─── Usuarios ───────────────────────────────────────────────────────────────

// UserRepo directorio de usuarios en memoria.
type UserRepo struct {
	s *Store
}

// Create inserta un usuario; el username es único.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.users[u.Username]; exists {
		return domain.ErrDuplicate
	}
	c := *u
	r.s.users[u.Username] = &c
	r.s.nextSeq("user:"+u.Username, nil)
	return nil
}

// GetByUsername devuelve una copia o (nil, nil).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[username]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

// List paginado en orden de alta.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool {
		return r.s.order["user:"+all[i].Username] < r.s.order["user:"+all[j].Username]
	})
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// SeedUsers carga usuarios iniciales.
func (s *Store) SeedUsers(users []entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		if _, exists := s.users[u.Username]; exists {
			continue
		}
		c := u
		s.users[u.Username] = &c
		s.nextSeq("user:"+u.Username, nil)
	}
}
