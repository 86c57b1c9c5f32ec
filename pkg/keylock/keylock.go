// Package keylock serializa secciones críticas por clave (ID de entidad) dentro del proceso.
package keylock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker entrega un mutex por clave; las entradas se liberan cuando nadie las usa.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New construye un Locker vacío.
func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock bloquea la clave y devuelve la función que la libera.
func (l *Locker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
		l.mu.Unlock()
	}
}

// Len número de claves con al menos un poseedor o en espera.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
