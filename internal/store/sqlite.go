package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/stadtatlas/civic-cli/internal/geometry"
	"github.com/stadtatlas/civic-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS city (
	id            TEXT PRIMARY KEY,
	slug          TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	state         TEXT NOT NULL DEFAULT '',
	center_lat    REAL NOT NULL DEFAULT 0,
	center_lng    REAL NOT NULL DEFAULT 0,
	default_zoom  INTEGER NOT NULL DEFAULT 12,
	primary_color TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS layer (
	id        TEXT PRIMARY KEY,
	city_id   TEXT NOT NULL REFERENCES city(id),
	slug      TEXT NOT NULL,
	name      TEXT NOT NULL,
	icon      TEXT NOT NULL DEFAULT '',
	color     TEXT NOT NULL DEFAULT '',
	visible   INTEGER NOT NULL DEFAULT 1,
	last_sync DATETIME,
	UNIQUE (city_id, slug)
);

CREATE TABLE IF NOT EXISTS poi (
	id         TEXT PRIMARY KEY,
	city_id    TEXT NOT NULL REFERENCES city(id),
	layer_id   TEXT NOT NULL REFERENCES layer(id),
	name       TEXT NOT NULL,
	lat        REAL NOT NULL,
	lng        REAL NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	district   TEXT NOT NULL DEFAULT '',
	attributes TEXT,
	source_id  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS district (
	id         TEXT PRIMARY KEY,
	city_id    TEXT NOT NULL REFERENCES city(id),
	slug       TEXT NOT NULL,
	name       TEXT NOT NULL,
	ring       TEXT,
	population INTEGER,
	area_km2   REAL,
	UNIQUE (city_id, slug)
);

CREATE INDEX IF NOT EXISTS idx_layer_city_id ON layer(city_id);
CREATE INDEX IF NOT EXISTS idx_poi_city_id ON poi(city_id);
CREATE INDEX IF NOT EXISTS idx_poi_layer_id ON poi(layer_id);
CREATE INDEX IF NOT EXISTS idx_poi_district ON poi(district);
CREATE INDEX IF NOT EXISTS idx_district_city_id ON district(city_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCity(ctx context.Context, city model.City) (*model.City, error) {
	if city.ID == "" {
		city.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO city (id, slug, name, state, center_lat, center_lng, default_zoom, primary_color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (slug) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			center_lat = excluded.center_lat,
			center_lng = excluded.center_lng,
			default_zoom = excluded.default_zoom,
			primary_color = excluded.primary_color,
			updated_at = excluded.updated_at`,
		city.ID, city.Slug, city.Name, city.State, city.CenterLat, city.CenterLng,
		city.DefaultZoom, city.PrimaryColor, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert city %s", city.Slug)
	}
	return s.GetCityBySlug(ctx, city.Slug)
}

func (s *SQLiteStore) GetCityBySlug(ctx context.Context, slug string) (*model.City, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, state, center_lat, center_lng, default_zoom, primary_color, created_at, updated_at
		 FROM city WHERE slug = ?`,
		slug,
	)
	c, err := scanCity(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("city not found: %s", slug)
	}
	return c, err
}

func (s *SQLiteStore) ListCities(ctx context.Context) ([]model.City, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slug, name, state, center_lat, center_lng, default_zoom, primary_color, created_at, updated_at
		 FROM city ORDER BY slug`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cities")
	}
	defer rows.Close()

	var cities []model.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, *c)
	}
	return cities, eris.Wrap(rows.Err(), "sqlite: list cities iterate")
}

func (s *SQLiteStore) UpsertLayer(ctx context.Context, layer model.Layer) (*model.Layer, error) {
	if layer.ID == "" {
		layer.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO layer (id, city_id, slug, name, icon, color, visible)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (city_id, slug) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			color = excluded.color,
			visible = excluded.visible`,
		layer.ID, layer.CityID, layer.Slug, layer.Name, layer.Icon, layer.Color, boolToInt(layer.VisibleByDefault),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert layer %s", layer.Slug)
	}
	return s.GetLayerBySlug(ctx, layer.CityID, layer.Slug)
}

func (s *SQLiteStore) GetLayerBySlug(ctx context.Context, cityID, slug string) (*model.Layer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, city_id, slug, name, icon, color, visible, last_sync
		 FROM layer WHERE city_id = ? AND slug = ?`,
		cityID, slug,
	)
	l, err := scanLayer(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("layer not found: %s", slug)
	}
	return l, err
}

func (s *SQLiteStore) ListLayers(ctx context.Context, cityID string) ([]model.Layer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, city_id, slug, name, icon, color, visible, last_sync
		 FROM layer WHERE city_id = ? ORDER BY slug`,
		cityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list layers")
	}
	defer rows.Close()

	var layers []model.Layer
	for rows.Next() {
		l, err := scanLayer(rows)
		if err != nil {
			return nil, err
		}
		layers = append(layers, *l)
	}
	return layers, eris.Wrap(rows.Err(), "sqlite: list layers iterate")
}

func (s *SQLiteStore) TouchLayerSync(ctx context.Context, layerID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE layer SET last_sync = ? WHERE id = ?`,
		at.UTC(), layerID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: touch layer %s", layerID)
	}
	return checkRowsAffected(res, "layer", layerID)
}

// ReplaceLayerPoints swaps out the full point set of a layer in one
// transaction and returns the number of points inserted.
func (s *SQLiteStore) ReplaceLayerPoints(ctx context.Context, layerID string, points []model.Point) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin replace points")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM poi WHERE layer_id = ?`, layerID); err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete points of layer %s", layerID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO poi (id, city_id, layer_id, name, lat, lng, address, district, attributes, source_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert point")
	}
	defer stmt.Close()

	for _, p := range points {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		var attrs any
		if len(p.Attributes) > 0 {
			b, err := json.Marshal(p.Attributes)
			if err != nil {
				return 0, eris.Wrapf(err, "sqlite: marshal attributes of %s", p.Name)
			}
			attrs = string(b)
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.CityID, layerID, p.Name, p.Lat, p.Lng, p.Address, p.District, attrs, p.SourceID,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert point %s", p.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit replace points")
	}
	return len(points), nil
}

func (s *SQLiteStore) ListPoints(ctx context.Context, filter PointFilter) ([]model.Point, error) {
	query := `SELECT id, city_id, layer_id, name, lat, lng, address, district, attributes, source_id
		 FROM poi WHERE 1=1`
	var args []any

	if filter.CityID != "" {
		query += ` AND city_id = ?`
		args = append(args, filter.CityID)
	}
	if filter.LayerID != "" {
		query += ` AND layer_id = ?`
		args = append(args, filter.LayerID)
	}
	if filter.District != "" {
		query += ` AND district = ?`
		args = append(args, filter.District)
	}
	if filter.BBox != nil {
		query += ` AND lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?`
		args = append(args, filter.BBox.MinLat, filter.BBox.MaxLat, filter.BBox.MinLng, filter.BBox.MaxLng)
	}
	query += ` ORDER BY name, id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list points")
	}
	defer rows.Close()

	var points []model.Point
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, *p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: list points iterate")
}

func (s *SQLiteStore) CountPoints(ctx context.Context, filter PointFilter) (int, error) {
	query := `SELECT COUNT(*) FROM poi WHERE 1=1`
	var args []any

	if filter.CityID != "" {
		query += ` AND city_id = ?`
		args = append(args, filter.CityID)
	}
	if filter.LayerID != "" {
		query += ` AND layer_id = ?`
		args = append(args, filter.LayerID)
	}
	if filter.District != "" {
		query += ` AND district = ?`
		args = append(args, filter.District)
	}
	if filter.BBox != nil {
		query += ` AND lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?`
		args = append(args, filter.BBox.MinLat, filter.BBox.MaxLat, filter.BBox.MinLng, filter.BBox.MaxLng)
	}

	var n int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count points")
}

func (s *SQLiteStore) SearchPoints(ctx context.Context, cityID, query string, limit int) ([]model.Point, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, city_id, layer_id, name, lat, lng, address, district, attributes, source_id
		 FROM poi WHERE city_id = ? AND (name LIKE ? COLLATE NOCASE OR address LIKE ? COLLATE NOCASE)
		 ORDER BY name, id LIMIT ?`,
		cityID, "%"+query+"%", "%"+query+"%", limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search points")
	}
	defer rows.Close()

	var points []model.Point
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, *p)
	}
	return points, eris.Wrap(rows.Err(), "sqlite: search points iterate")
}

// ApplyLabels writes district display names onto points by ID and returns
// the number of points updated.
func (s *SQLiteStore) ApplyLabels(ctx context.Context, labels map[string]string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin apply labels")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE poi SET district = ? WHERE id = ? AND district != ?`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare apply labels")
	}
	defer stmt.Close()

	var updated int64
	for id, name := range labels {
		res, err := stmt.ExecContext(ctx, name, id, name)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: label point %s", id)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		updated += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit apply labels")
	}
	return int(updated), nil
}

func (s *SQLiteStore) ClearLabels(ctx context.Context, cityID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE poi SET district = '' WHERE city_id = ? AND district != ''`,
		cityID,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: clear labels for city %s", cityID)
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// ReplaceDistricts swaps out the full district set of a city in one
// transaction.
func (s *SQLiteStore) ReplaceDistricts(ctx context.Context, cityID string, districts []model.District) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace districts")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM district WHERE city_id = ?`, cityID); err != nil {
		return eris.Wrapf(err, "sqlite: delete districts of city %s", cityID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO district (id, city_id, slug, name, ring, population, area_km2)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert district")
	}
	defer stmt.Close()

	for _, d := range districts {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		var ring any
		if len(d.Ring) > 0 {
			b, err := json.Marshal(d.Ring)
			if err != nil {
				return eris.Wrapf(err, "sqlite: marshal ring of %s", d.Name)
			}
			ring = string(b)
		}
		var pop, area any
		if d.Population != nil {
			pop = *d.Population
		}
		if d.AreaKm2 != nil {
			area = *d.AreaKm2
		}
		if _, err := stmt.ExecContext(ctx, d.ID, cityID, d.Slug, d.Name, ring, pop, area); err != nil {
			return eris.Wrapf(err, "sqlite: insert district %s", d.Name)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace districts")
}

func (s *SQLiteStore) ListDistricts(ctx context.Context, cityID string) ([]model.District, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, city_id, slug, name, ring, population, area_km2
		 FROM district WHERE city_id = ? ORDER BY slug`,
		cityID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list districts")
	}
	defer rows.Close()

	var districts []model.District
	for rows.Next() {
		var d model.District
		var ringJSON sql.NullString
		var pop sql.NullInt64
		var area sql.NullFloat64

		if err := rows.Scan(&d.ID, &d.CityID, &d.Slug, &d.Name, &ringJSON, &pop, &area); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan district")
		}
		if ringJSON.Valid {
			var ring geometry.Ring
			if err := json.Unmarshal([]byte(ringJSON.String), &ring); err != nil {
				return nil, eris.Wrapf(err, "sqlite: unmarshal ring of %s", d.Name)
			}
			d.Ring = ring
		}
		if pop.Valid {
			v := pop.Int64
			d.Population = &v
		}
		if area.Valid {
			v := area.Float64
			d.AreaKm2 = &v
		}
		districts = append(districts, d)
	}
	return districts, eris.Wrap(rows.Err(), "sqlite: list districts iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCity(row scannable) (*model.City, error) {
	var c model.City
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.State, &c.CenterLat, &c.CenterLng,
		&c.DefaultZoom, &c.PrimaryColor, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan city")
	}
	return &c, nil
}

func scanLayer(row scannable) (*model.Layer, error) {
	var l model.Layer
	var visible int
	var lastSync sql.NullTime

	err := row.Scan(&l.ID, &l.CityID, &l.Slug, &l.Name, &l.Icon, &l.Color, &visible, &lastSync)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan layer")
	}
	l.VisibleByDefault = visible != 0
	if lastSync.Valid {
		t := lastSync.Time
		l.LastSync = &t
	}
	return &l, nil
}

func scanPoint(row scannable) (*model.Point, error) {
	var p model.Point
	var attrsJSON sql.NullString

	err := row.Scan(&p.ID, &p.CityID, &p.LayerID, &p.Name, &p.Lat, &p.Lng,
		&p.Address, &p.District, &attrsJSON, &p.SourceID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan point")
	}
	if attrsJSON.Valid && attrsJSON.String != "" {
		if err := json.Unmarshal([]byte(attrsJSON.String), &p.Attributes); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal attributes")
		}
	}
	return &p, nil
}
