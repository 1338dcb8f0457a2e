// Package memory implementa los repositorios y el TxRunner en memoria.
// Lo usan los tests y el modo STORAGE=memory (desarrollo sin Postgres).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/foodstock-api/internal/application/inventory"
	"github.com/jhoicas/foodstock-api/internal/domain/entity"
	"github.com/jhoicas/foodstock-api/internal/domain/repository"
)

// Store estado compartido por los repositorios en memoria.
// Las transacciones se serializan con txMu; mu protege los mapas.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	products    map[string]*entity.Product
	suppliers   map[string]*entity.Supplier
	batches     map[string]*entity.StockBatch
	movements   []*entity.StockMovement
	allocations []entity.MovementAllocation
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		suppliers: make(map[string]*entity.Supplier),
		batches:   make(map[string]*entity.StockBatch),
	}
}

// AddProduct alta directa de un producto (catálogo externo al motor).
func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = copyProduct(p)
}

// AddSupplier alta directa de un proveedor.
func (s *Store) AddSupplier(sup *entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *sup
	s.suppliers[sup.ID] = &c
}

// AddBatch alta directa de un lote (datos heredados o fixtures).
func (s *Store) AddBatch(b *entity.StockBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = copyBatch(b)
}

// Products repositorio de productos sobre el store.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Suppliers repositorio de proveedores sobre el store.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Batches repositorio de lotes sobre el store.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{s: s} }

// Movements repositorio de movimientos sobre el store.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// TxRunner implementa inventory.TxRunner: serializa las transacciones y restaura el estado si fn falla.
type TxRunner struct {
	s *Store
}

var _ inventory.TxRunner = (*TxRunner)(nil)

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn; si devuelve error o el contexto se cancela, descarta todos sus cambios.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	batchRepo repository.StockBatchRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := r.s.snapshot()
	err := fn(&MovementRepo{s: r.s, tx: true}, &BatchRepo{s: r.s, tx: true}, &ProductRepo{s: r.s, tx: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	products    map[string]*entity.Product
	batches     map[string]*entity.StockBatch
	movements   int
	allocations int
}

// snapshot copia lo que una transacción puede modificar. Movimientos y asignaciones son append-only:
// basta con recordar su longitud.
func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		products:    make(map[string]*entity.Product, len(s.products)),
		batches:     make(map[string]*entity.StockBatch, len(s.batches)),
		movements:   len(s.movements),
		allocations: len(s.allocations),
	}
	for id, p := range s.products {
		snap.products[id] = copyProduct(p)
	}
	for id, b := range s.batches {
		snap.batches[id] = copyBatch(b)
	}
	return snap
}

// write aplica fn bajo el candado de datos. Fuera de una transacción también toma txMu
// para no mezclarse con una tx en curso (que podría restaurar su snapshot encima).
func (s *Store) write(inTx bool, fn func()) {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.batches = snap.batches
	s.movements = s.movements[:snap.movements]
	s.allocations = s.allocations[:snap.allocations]
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyBatch(b *entity.StockBatch) *entity.StockBatch {
	c := *b
	return &c
}

func copyMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}
