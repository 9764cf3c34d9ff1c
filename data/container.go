// Package data holds the live diagnosis catalog. Reads are lock-free and a
// reload replaces the catalog and its resolver in one atomic store.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/interfaces"
	"github.com/giygas/telehealth-api/logging"
)

var _ interfaces.CatalogStore = (*CatalogContainer)(nil)

// snapshot keeps a catalog and the resolver built from it together
type snapshot struct {
	catalog  *diagnosis.Catalog
	resolver *diagnosis.Resolver
	updated  time.Time
}

type CatalogContainer struct {
	current         atomic.Value // *snapshot
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewCatalogContainer starts with an empty catalog and a zero update time
func NewCatalogContainer() *CatalogContainer {
	empty, _ := diagnosis.NewCatalog(nil)
	cc := &CatalogContainer{}
	cc.current.Store(&snapshot{
		catalog:  empty,
		resolver: diagnosis.NewResolver(empty, nil),
	})
	cc.serverStartTime.Store(time.Time{})
	return cc
}

func (cc *CatalogContainer) load() *snapshot {
	if s, ok := cc.current.Load().(*snapshot); ok && s != nil {
		return s
	}
	logging.Warn("Catalog container holds no snapshot")
	empty, _ := diagnosis.NewCatalog(nil)
	return &snapshot{catalog: empty, resolver: diagnosis.NewResolver(empty, nil)}
}

func (cc *CatalogContainer) GetCatalog() *diagnosis.Catalog {
	return cc.load().catalog
}

func (cc *CatalogContainer) GetResolver() *diagnosis.Resolver {
	return cc.load().resolver
}

// GetLastUpdated is zero until the first UpdateCatalog
func (cc *CatalogContainer) GetLastUpdated() time.Time {
	return cc.load().updated
}

func (cc *CatalogContainer) IsUpdating() bool {
	return cc.updating.Load()
}

func (cc *CatalogContainer) SetServerStartTime(t time.Time) {
	cc.serverStartTime.Store(t)
}

func (cc *CatalogContainer) GetServerStartTime() time.Time {
	t, _ := cc.serverStartTime.Load().(time.Time)
	return t
}

// UpdateCatalog swaps in a new catalog. A nil resolver is built from the
// catalog with the default aliases. A nil catalog is ignored.
func (cc *CatalogContainer) UpdateCatalog(catalog *diagnosis.Catalog, resolver *diagnosis.Resolver) {
	if catalog == nil {
		logging.Warn("Ignoring nil catalog update")
		return
	}
	if resolver == nil {
		resolver = diagnosis.NewResolver(catalog, diagnosis.DefaultAliases())
	}
	cc.current.Store(&snapshot{catalog: catalog, resolver: resolver, updated: time.Now()})
}

// BeginUpdate returns false when another update is already running
func (cc *CatalogContainer) BeginUpdate() bool {
	return cc.updating.CompareAndSwap(false, true)
}

func (cc *CatalogContainer) EndUpdate() {
	cc.updating.Store(false)
}
