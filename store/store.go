// Package store enthält die Repositories. Alle nutzereigenen Daten werden
// ausschließlich über einen Owner-Scope gelesen und geschrieben, sodass jede
// Abfrage die ORCID des angemeldeten Nutzers im Prädikat trägt.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound: Zeile fehlt oder gehört einem anderen Nutzer.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParent: Elternsammlung existiert nicht beim selben Nutzer.
	ErrInvalidParent = errors.New("parent collection not found")
	// ErrCycle: die Änderung würde den Sammlungsbaum zyklisch machen.
	ErrCycle = errors.New("collection cannot be moved below itself")
	// ErrSameAuthor: ein Autor kann nicht mit sich selbst zusammengeführt werden.
	ErrSameAuthor = errors.New("primary and merged author must differ")
	// ErrInvalidProject: Projekt existiert nicht beim selben Nutzer.
	ErrInvalidProject = errors.New("project not found")
)

// Owner ist der Zugriffsbereich eines angemeldeten Nutzers.
type Owner struct {
	db    *gorm.DB
	orcid string
}

// ForOwner bindet db an die ORCID des Nutzers.
func ForOwner(db *gorm.DB, orcid string) Owner {
	return Owner{db: db, orcid: orcid}
}

// ORCID gibt die gebundene ORCID iD zurück.
func (o Owner) ORCID() string { return o.orcid }

func (o Owner) Library() Library         { return Library{o} }
func (o Owner) Notes() Notes             { return Notes{o} }
func (o Owner) Collections() Collections { return Collections{o} }
func (o Owner) Claims() Claims           { return Claims{o} }
func (o Owner) Projects() Projects       { return Projects{o} }
func (o Owner) Materials() Materials     { return Materials{o} }

// scoped startet eine Abfrage, die auf die Zeilen des Nutzers beschränkt ist.
func (o Owner) scoped(ctx context.Context) *gorm.DB {
	return o.db.WithContext(ctx).Where("orcid = ?", o.orcid)
}

// tx führt fn in einer Transaktion mit demselben Scope aus.
func (o Owner) tx(ctx context.Context, fn func(Owner) error) error {
	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Owner{db: tx, orcid: o.orcid})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
