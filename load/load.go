// Package load stages normalized and derived entities into the persistent
// store. Each entity kind is loaded in its own transaction which replaces
// the kind's table wholesale; stages must run in dependency order.
package load

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"

	"github.com/georef-ar/go-georef-etl"
	"github.com/georef-ar/go-georef-etl/departments"
	"github.com/georef-ar/go-georef-etl/localities"
	"github.com/georef-ar/go-georef-etl/municipalities"
	"github.com/georef-ar/go-georef-etl/provinces"
	"github.com/georef-ar/go-georef-etl/streets"
	"github.com/georef-ar/go-georef-etl/topology"
)

const srid = 4326

var stage_deps = map[georef.Kind][]georef.Kind{
	georef.ProvinceKind:     nil,
	georef.DepartmentKind:   {georef.ProvinceKind},
	georef.MunicipalityKind: {georef.ProvinceKind, georef.DepartmentKind},
	georef.LocalityKind:     {georef.DepartmentKind},
	georef.StreetKind:       {georef.LocalityKind},
	georef.IntersectionKind: {georef.StreetKind},
	georef.BlockKind:        {georef.StreetKind, georef.IntersectionKind},
}

// Manager owns every write to the persistent store. Writes are serialized:
// one stage at a time.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger

	mu   sync.Mutex
	done map[georef.Kind]bool
}

func NewManager(db *sql.DB) *Manager {

	return &Manager{
		db:     db,
		logger: slog.Default(),
		done:   make(map[georef.Kind]bool),
	}
}

// Stages returns the fixed load order.
func Stages() []georef.Kind {
	return georef.Kinds()
}

func (m *Manager) LoadProvinces(ctx context.Context, items []*provinces.Province) error {

	columns := []string{"code", "name", "source", "geometry"}

	return m.stage(ctx, georef.ProvinceKind, "provinces", columns, len(items), func(i int) ([]interface{}, error) {

		p := items[i]

		geom, err := geomValue(p.Geometry)

		if err != nil {
			return nil, err
		}

		return []interface{}{p.Code, p.Name, p.Source, geom}, nil
	})
}

func (m *Manager) LoadDepartments(ctx context.Context, items []*departments.Department) error {

	columns := []string{"code", "name", "province_code", "source", "geometry"}

	return m.stage(ctx, georef.DepartmentKind, "departments", columns, len(items), func(i int) ([]interface{}, error) {

		d := items[i]

		geom, err := geomValue(d.Geometry)

		if err != nil {
			return nil, err
		}

		return []interface{}{d.Code, d.Name, d.ProvinceCode, d.Source, geom}, nil
	})
}

func (m *Manager) LoadMunicipalities(ctx context.Context, items []*municipalities.Municipality) error {

	columns := []string{"code", "name", "category", "province_code", "department_code", "source", "geometry"}

	return m.stage(ctx, georef.MunicipalityKind, "municipalities", columns, len(items), func(i int) ([]interface{}, error) {

		mn := items[i]

		geom, err := geomValue(mn.Geometry)

		if err != nil {
			return nil, err
		}

		return []interface{}{mn.Code, mn.Name, nullString(mn.Category), mn.ProvinceCode, nullString(mn.DepartmentCode), mn.Source, geom}, nil
	})
}

func (m *Manager) LoadLocalities(ctx context.Context, items []*localities.Locality) error {

	columns := []string{"code", "name", "category", "department_code", "source", "geometry"}

	return m.stage(ctx, georef.LocalityKind, "localities", columns, len(items), func(i int) ([]interface{}, error) {

		l := items[i]

		geom, err := geomValue(l.Geometry)

		if err != nil {
			return nil, err
		}

		return []interface{}{l.Code, l.Name, nullString(l.Category), l.DepartmentCode, l.Source, geom}, nil
	})
}

func (m *Manager) LoadStreets(ctx context.Context, items []*streets.Street) error {

	columns := []string{
		"code", "name", "category", "locality_code", "source",
		"start_left", "start_right", "end_left", "end_right", "geometry",
	}

	return m.stage(ctx, georef.StreetKind, "streets", columns, len(items), func(i int) ([]interface{}, error) {

		s := items[i]

		geom, err := geomValue(s.Geometry)

		if err != nil {
			return nil, err
		}

		return []interface{}{
			s.Code, s.Name, nullString(s.Category), s.LocalityCode, s.Source,
			s.DoorNumbers.StartLeft, s.DoorNumbers.StartRight,
			s.DoorNumbers.EndLeft, s.DoorNumbers.EndRight,
			geom,
		}, nil
	})
}

func (m *Manager) LoadIntersections(ctx context.Context, items []*topology.Intersection) error {

	columns := []string{"code", "street_a_code", "street_b_code", "geometry"}

	return m.stage(ctx, georef.IntersectionKind, "intersections", columns, len(items), func(i int) ([]interface{}, error) {

		x := items[i]

		geom, err := geomValue(x.Geometry)

		if err != nil {
			return nil, err
		}

		return []interface{}{x.Code, x.StreetACode, x.StreetBCode, geom}, nil
	})
}

func (m *Manager) LoadBlocks(ctx context.Context, items []*topology.Block) error {

	columns := []string{
		"code", "street_code", "from_intersection_code", "to_intersection_code",
		"start_left", "start_right", "end_left", "end_right", "geometry",
	}

	return m.stage(ctx, georef.BlockKind, "blocks", columns, len(items), func(i int) ([]interface{}, error) {

		b := items[i]

		geom, err := geomValue(b.Geometry)

		if err != nil {
			return nil, err
		}

		return []interface{}{
			b.Code, b.StreetCode,
			nullString(b.FromIntersectionCode), nullString(b.ToIntersectionCode),
			b.DoorNumbers.StartLeft, b.DoorNumbers.StartRight,
			b.DoorNumbers.EndLeft, b.DoorNumbers.EndRight,
			geom,
		}, nil
	})
}

// stage replaces one kind's table inside a single transaction: truncate,
// bulk copy, commit. Any referential failure rolls the whole stage back.
func (m *Manager) stage(ctx context.Context, kind georef.Kind, table string, columns []string, count int, row func(int) ([]interface{}, error)) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	// Loading a child kind before its parent stage has committed is a
	// programming error in the driver, not a runtime condition.
	for _, dep := range stage_deps[kind] {

		if !m.done[dep] {
			panic(fmt.Sprintf("stage %s loaded before %s", kind, dep))
		}
	}

	tx, err := m.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("Failed to begin transaction for %s, %w", kind, err)
	}

	err = m.copyRows(ctx, tx, kind, table, columns, count, row)

	if err != nil {
		tx.Rollback()
		return classify(kind, err)
	}

	err = tx.Commit()

	if err != nil {
		return classify(kind, err)
	}

	m.done[kind] = true
	m.logger.Info("stage committed", "kind", kind, "count", count)

	return nil
}

func (m *Manager) copyRows(ctx context.Context, tx *sql.Tx, kind georef.Kind, table string, columns []string, count int, row func(int) ([]interface{}, error)) error {

	_, err := tx.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", pq.QuoteIdentifier(table)))

	if err != nil {
		return fmt.Errorf("Failed to truncate %s, %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))

	if err != nil {
		return fmt.Errorf("Failed to prepare copy for %s, %w", table, err)
	}

	for i := 0; i < count; i++ {

		values, err := row(i)

		if err != nil {
			stmt.Close()
			return fmt.Errorf("Failed to derive row %d for %s, %w", i, table, err)
		}

		_, err = stmt.ExecContext(ctx, values...)

		if err != nil {
			stmt.Close()
			return fmt.Errorf("Failed to copy row %d for %s, %w", i, table, err)
		}
	}

	_, err = stmt.ExecContext(ctx)

	if err != nil {
		stmt.Close()
		return fmt.Errorf("Failed to flush copy for %s, %w", table, err)
	}

	return stmt.Close()
}

// classify maps Postgres integrity-constraint errors (class 23) to the
// stage-fatal `ReferentialViolation` kind.
func classify(kind georef.Kind, err error) error {

	var pq_err *pq.Error

	if errors.As(err, &pq_err) && pq_err.Code.Class() == "23" {
		return georef.ReferentialViolation{Kind: kind, Err: err}
	}

	return err
}

// geomValue encodes a geometry as hex EWKB, which the PostGIS input parser
// accepts directly in COPY text format.
func geomValue(g orb.Geometry) (interface{}, error) {

	if g == nil {
		return nil, nil
	}

	buf, err := ewkb.Marshal(g, srid)

	if err != nil {
		return nil, fmt.Errorf("Failed to marshal geometry, %w", err)
	}

	return hex.EncodeToString(buf), nil
}

func nullString(s string) interface{} {

	if s == "" {
		return nil
	}

	return s
}
