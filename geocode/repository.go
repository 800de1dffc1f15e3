// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uber/h3-go/v4"

	"github.com/jamaicageo/jamlocate/geocode/utils"
	"github.com/jamaicageo/jamlocate/spatial"
)

// CachedResolution is a resolved query as stored in the cache: the winning
// point, its quality and strategy, the administrative identity, and the H3
// cells of the point at the resolutions useful at island scale.
type CachedResolution struct {
	ID              int            `json:"id"`
	Query           string         `json:"query"`
	Point           *spatial.Point `json:"point"`
	Quality         string         `json:"quality"`
	Strategy        string         `json:"strategy"`
	ParishCode      string         `json:"parish_pcode"`
	ParishName      string         `json:"parish_name"`
	CommunityCode   string         `json:"community_pcode"`
	CommunityName   string         `json:"community_name"`
	NearestBoundary bool           `json:"nearest_boundary"`
	LocationTypes   []string       `json:"location_types"`
	DisplayName     string         `json:"display_name,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	H3Res5          int64          `json:"-"`
	H3Res6          int64          `json:"-"`
	H3Res7          int64          `json:"-"`
	H3Res8          int64          `json:"-"`
}

// NewCachedResolution snapshots a resolution for storage under its query.
func NewCachedResolution(query string, res *Resolution) *CachedResolution {
	pt := res.Point

	return &CachedResolution{
		Query:           query,
		Point:           &pt,
		Quality:         res.Quality.String(),
		Strategy:        res.Strategy.String(),
		ParishCode:      res.ParishCode,
		ParishName:      res.ParishName,
		CommunityCode:   res.CommunityCode,
		CommunityName:   res.CommunityName,
		NearestBoundary: res.NearestBoundary,
		LocationTypes:   res.Types,
		DisplayName:     res.DisplayName,
	}
}

// Resolution rebuilds the pipeline result this entry was saved from.
func (c *CachedResolution) Resolution() *Resolution {
	res := &Resolution{
		Quality:         ParseQuality(c.Quality),
		Strategy:        ParseStrategy(c.Strategy),
		Types:           c.LocationTypes,
		DisplayName:     c.DisplayName,
		ParishCode:      c.ParishCode,
		ParishName:      c.ParishName,
		CommunityCode:   c.CommunityCode,
		CommunityName:   c.CommunityName,
		NearestBoundary: c.NearestBoundary,
	}

	if c.Point != nil {
		res.Point = *c.Point
	}

	return res
}

func (c *CachedResolution) computeH3() error {
	if c.Point == nil {
		c.H3Res5 = 0
		c.H3Res6 = 0
		c.H3Res7 = 0
		c.H3Res8 = 0

		return nil
	}

	latLng := h3.NewLatLng(c.Point.Lat, c.Point.Lng)
	for res := 5; res <= 8; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 5:
			c.H3Res5 = int64(cell)
		case 6:
			c.H3Res6 = int64(cell)
		case 7:
			c.H3Res7 = int64(cell)
		case 8:
			c.H3Res8 = int64(cell)
		}
	}

	return nil
}

// ResolutionRepository persists resolved queries so batch re-runs skip the
// provider round trips.
type ResolutionRepository interface {
	// CreateSchema creates the resolutions table
	CreateSchema() error

	// Save inserts or refreshes the entry for its query
	Save(entry *CachedResolution) error

	// Get returns the entry for a query, or nil when absent
	Get(query string) (*CachedResolution, error)

	// List returns entries ordered by query
	List(limit, offset int) ([]*CachedResolution, error)

	// Count returns the total number of entries
	Count() (int, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a resolution cache over a DuckDB handle.
func NewResolutionRepository(db *sql.DB) ResolutionRepository {
	return &sqlResolutionRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlResolutionRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlResolutionRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS resolutions_seq START 1;

		CREATE TABLE IF NOT EXISTS resolutions (
			id INTEGER PRIMARY KEY DEFAULT nextval('resolutions_seq'),
			query VARCHAR NOT NULL UNIQUE,
			point POINT_2D NOT NULL,
			quality VARCHAR NOT NULL,
			strategy VARCHAR NOT NULL,
			parish_pcode VARCHAR,
			parish_name VARCHAR,
			community_pcode VARCHAR,
			community_name VARCHAR,
			nearest_boundary BOOLEAN DEFAULT FALSE,
			location_types VARCHAR[],
			display_name VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);
	`)

	return err
}

func (r *sqlResolutionRepository) Save(entry *CachedResolution) error {
	if entry.Point == nil {
		return errors.New("point can't be null")
	}

	if err := entry.computeH3(); err != nil {
		return err
	}

	entry.UpdatedAt = time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.UpdatedAt
	}

	_, err := r.db.Exec(`
		INSERT INTO resolutions(
			query, point, quality, strategy,
			parish_pcode, parish_name, community_pcode, community_name,
			nearest_boundary, location_types, display_name,
			created_at, updated_at,
			h3_res5, h3_res6, h3_res7, h3_res8
		)
		VALUES (?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			point = excluded.point,
			quality = excluded.quality,
			strategy = excluded.strategy,
			parish_pcode = excluded.parish_pcode,
			parish_name = excluded.parish_name,
			community_pcode = excluded.community_pcode,
			community_name = excluded.community_name,
			nearest_boundary = excluded.nearest_boundary,
			location_types = excluded.location_types,
			display_name = excluded.display_name,
			updated_at = excluded.updated_at,
			h3_res5 = excluded.h3_res5,
			h3_res6 = excluded.h3_res6,
			h3_res7 = excluded.h3_res7,
			h3_res8 = excluded.h3_res8;
	`,
		entry.Query,
		entry.Point.Lng,
		entry.Point.Lat,
		entry.Quality,
		entry.Strategy,
		entry.ParishCode,
		entry.ParishName,
		entry.CommunityCode,
		entry.CommunityName,
		entry.NearestBoundary,
		entry.LocationTypes,
		entry.DisplayName,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.H3Res5,
		entry.H3Res6,
		entry.H3Res7,
		entry.H3Res8,
	)

	return err
}

func (r *sqlResolutionRepository) Get(query string) (*CachedResolution, error) {
	entry := &CachedResolution{Point: &spatial.Point{}}

	var parishCode, parishName, communityCode, communityName, displayName sql.NullString

	var locationTypes any

	var h3Res5, h3Res6, h3Res7, h3Res8 sql.NullInt64

	err := r.db.QueryRow(`
		SELECT id, query, point, quality, strategy,
		       parish_pcode, parish_name, community_pcode, community_name,
		       nearest_boundary, location_types, display_name,
		       created_at, updated_at,
		       h3_res5, h3_res6, h3_res7, h3_res8
		FROM resolutions
		WHERE query = ?
	`, query).Scan(
		&entry.ID,
		&entry.Query,
		&entry.Point,
		&entry.Quality,
		&entry.Strategy,
		&parishCode,
		&parishName,
		&communityCode,
		&communityName,
		&entry.NearestBoundary,
		&locationTypes,
		&displayName,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&h3Res5,
		&h3Res6,
		&h3Res7,
		&h3Res8,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	entry.ParishCode = parishCode.String
	entry.ParishName = parishName.String
	entry.CommunityCode = communityCode.String
	entry.CommunityName = communityName.String
	entry.DisplayName = displayName.String

	if locationTypes != nil {
		types, ok := utils.AnyToStringSlice(locationTypes)
		if !ok {
			return nil, fmt.Errorf("failed to convert location_types to []string for query: %s", entry.Query)
		}

		entry.LocationTypes = types
	}

	if h3Res5.Valid {
		entry.H3Res5 = h3Res5.Int64
	}

	if h3Res6.Valid {
		entry.H3Res6 = h3Res6.Int64
	}

	if h3Res7.Valid {
		entry.H3Res7 = h3Res7.Int64
	}

	if h3Res8.Valid {
		entry.H3Res8 = h3Res8.Int64
	}

	return entry, nil
}

func (r *sqlResolutionRepository) List(limit, offset int) ([]*CachedResolution, error) {
	rows, err := r.db.Query(`
		SELECT id, query, point, quality, strategy,
		       parish_pcode, parish_name, community_pcode, community_name,
		       nearest_boundary, location_types, display_name,
		       created_at, updated_at,
		       h3_res5, h3_res6, h3_res7, h3_res8
		FROM resolutions
		ORDER BY query
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*CachedResolution

	for rows.Next() {
		entry := &CachedResolution{Point: &spatial.Point{}}

		var parishCode, parishName, communityCode, communityName, displayName sql.NullString

		var locationTypes any

		var h3Res5, h3Res6, h3Res7, h3Res8 sql.NullInt64

		if err := rows.Scan(
			&entry.ID,
			&entry.Query,
			&entry.Point,
			&entry.Quality,
			&entry.Strategy,
			&parishCode,
			&parishName,
			&communityCode,
			&communityName,
			&entry.NearestBoundary,
			&locationTypes,
			&displayName,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&h3Res5,
			&h3Res6,
			&h3Res7,
			&h3Res8,
		); err != nil {
			return nil, err
		}

		entry.ParishCode = parishCode.String
		entry.ParishName = parishName.String
		entry.CommunityCode = communityCode.String
		entry.CommunityName = communityName.String
		entry.DisplayName = displayName.String

		if locationTypes != nil {
			types, ok := utils.AnyToStringSlice(locationTypes)
			if !ok {
				return nil, fmt.Errorf("failed to convert location_types to []string for query: %s", entry.Query)
			}

			entry.LocationTypes = types
		}

		if h3Res5.Valid {
			entry.H3Res5 = h3Res5.Int64
		}

		if h3Res6.Valid {
			entry.H3Res6 = h3Res6.Int64
		}

		if h3Res7.Valid {
			entry.H3Res7 = h3Res7.Int64
		}

		if h3Res8.Valid {
			entry.H3Res8 = h3Res8.Int64
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *sqlResolutionRepository) Count() (int, error) {
	var count int

	err := r.db.QueryRow(`SELECT COUNT(*) FROM resolutions`).Scan(&count)

	return count, err
}
