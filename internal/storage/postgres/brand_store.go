// Package postgres implements the durable brand-profile store on pgx.
//
// Expected schema:
//
//	CREATE TABLE brands (
//	    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	    website_url TEXT NOT NULL UNIQUE,
//	    name TEXT,
//	    about TEXT,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE TABLE products (
//	    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	    brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    source_id TEXT,
//	    title TEXT NOT NULL,
//	    handle TEXT,
//	    url TEXT,
//	    price DOUBLE PRECISION,
//	    currency TEXT,
//	    is_hero BOOLEAN NOT NULL DEFAULT FALSE,
//	    image_url TEXT,
//	    vendor TEXT,
//	    product_type TEXT,
//	    description TEXT,
//	    UNIQUE (brand_id, handle)
//	);
//	CREATE TABLE policies (
//	    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	    brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    kind TEXT NOT NULL,
//	    url TEXT,
//	    content TEXT,
//	    UNIQUE (brand_id, kind)
//	);
//	CREATE TABLE faqs (
//	    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	    brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    question TEXT NOT NULL,
//	    answer TEXT,
//	    url TEXT
//	);
//	CREATE TABLE social_handles (
//	    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	    brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    platform TEXT NOT NULL,
//	    url TEXT NOT NULL,
//	    UNIQUE (brand_id, platform)
//	);
//	CREATE TABLE contact_details (
//	    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	    brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    kind TEXT NOT NULL,
//	    value TEXT NOT NULL,
//	    UNIQUE (brand_id, kind)
//	);
//	CREATE TABLE important_links (
//	    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//	    brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    kind TEXT NOT NULL,
//	    url TEXT NOT NULL,
//	    label TEXT,
//	    UNIQUE (brand_id, kind)
//	);
//	CREATE TABLE competitor_map (
//	    brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    competitor_brand_id BIGINT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
//	    PRIMARY KEY (brand_id, competitor_brand_id)
//	);
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopsight/shopsight/internal/brand"
)

// ErrNotFound is returned when a requested profile does not exist.
var ErrNotFound = errors.New("profile not found")

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it in
// tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// querier is implemented by both DB and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config controls the Postgres connection pool.
type Config struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

// Store persists brand profiles.
type Store struct {
	db DB
}

// NewStore connects a pool and wraps it in a Store.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{db: pool}, nil
}

// NewStoreWithDB constructs a Store from an existing pool (primarily for
// testing).
func NewStoreWithDB(db DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
}

// Reconcile merges a freshly normalized profile into stored state inside a
// single transaction, keyed by website_url, and returns the persisted
// profile with assigned identifiers. Any failure rolls the whole
// transaction back.
func (s *Store) Reconcile(ctx context.Context, profile brand.Profile) (brand.Profile, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return brand.Profile{}, fmt.Errorf("begin reconcile: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	persisted := profile

	row, err := s.reconcileBrand(ctx, tx, profile)
	if err != nil {
		return brand.Profile{}, err
	}
	persisted.ID = row.ID
	persisted.Name = row.Name
	persisted.About = row.About

	persisted.Products, err = s.reconcileProducts(ctx, tx, row.ID, profile.Products)
	if err != nil {
		return brand.Profile{}, err
	}
	persisted.HeroProducts = heroSubset(persisted.Products)

	if persisted.Policies, err = s.reconcilePolicies(ctx, tx, row.ID, profile.Policies); err != nil {
		return brand.Profile{}, err
	}
	if err = s.replaceFAQs(ctx, tx, row.ID, profile.FAQs); err != nil {
		return brand.Profile{}, err
	}
	if err = s.reconcileSocials(ctx, tx, row.ID, profile.Socials); err != nil {
		return brand.Profile{}, err
	}
	if err = s.reconcileContacts(ctx, tx, row.ID, profile.Contacts); err != nil {
		return brand.Profile{}, err
	}
	if persisted.Links, err = s.reconcileLinks(ctx, tx, row.ID, profile.Links); err != nil {
		return brand.Profile{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return brand.Profile{}, fmt.Errorf("commit reconcile: %w", err)
	}
	return persisted, nil
}

func heroSubset(products []brand.Product) []brand.Product {
	var heroes []brand.Product
	for _, p := range products {
		if p.IsHero {
			heroes = append(heroes, p)
		}
	}
	return heroes
}

func (s *Store) reconcileBrand(ctx context.Context, q querier, profile brand.Profile) (profileRow, error) {
	var old profileRow
	err := q.QueryRow(ctx,
		`SELECT id, COALESCE(name,''), COALESCE(about,'') FROM brands WHERE website_url = $1`,
		profile.WebsiteURL,
	).Scan(&old.ID, &old.Name, &old.About)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		var id int64
		err := q.QueryRow(ctx,
			`INSERT INTO brands (website_url, name, about) VALUES ($1, NULLIF($2,''), NULLIF($3,'')) RETURNING id`,
			profile.WebsiteURL, profile.Name, profile.About,
		).Scan(&id)
		if err != nil {
			return profileRow{}, fmt.Errorf("insert brand: %w", err)
		}
		return profileRow{ID: id, Name: profile.Name, About: profile.About}, nil
	case err != nil:
		return profileRow{}, fmt.Errorf("find brand: %w", err)
	}

	merged := mergeProfileRow(old, profile)
	if _, err := q.Exec(ctx,
		`UPDATE brands SET name = NULLIF($1,''), about = NULLIF($2,''), updated_at = NOW() WHERE id = $3`,
		merged.Name, merged.About, merged.ID,
	); err != nil {
		return profileRow{}, fmt.Errorf("update brand: %w", err)
	}
	return merged, nil
}

func (s *Store) reconcileProducts(ctx context.Context, q querier, brandID int64, products []brand.Product) ([]brand.Product, error) {
	rows, err := q.Query(ctx,
		`SELECT id, COALESCE(source_id,''), COALESCE(handle,''), title FROM products WHERE brand_id = $1 ORDER BY id`,
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	byHandle := make(map[string]brand.Product)
	byTitle := make(map[string]brand.Product)
	for rows.Next() {
		var p brand.Product
		if err := rows.Scan(&p.ID, &p.SourceID, &p.Handle, &p.Title); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		keyKind, key := productKey(p)
		if keyKind == "handle" {
			byHandle[key] = p
		} else {
			byTitle[key] = p
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	persisted := make([]brand.Product, 0, len(products))
	for _, fresh := range products {
		keyKind, key := productKey(fresh)
		var old brand.Product
		var found bool
		if keyKind == "handle" {
			old, found = byHandle[key]
		} else {
			old, found = byTitle[key]
		}

		if !found {
			row := fresh
			err := q.QueryRow(ctx,
				`INSERT INTO products (brand_id, source_id, title, handle, url, price, currency, is_hero, image_url, vendor, product_type, description)
				 VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), NULLIF($5,''), $6, NULLIF($7,''), $8, NULLIF($9,''), NULLIF($10,''), NULLIF($11,''), NULLIF($12,''))
				 RETURNING id`,
				brandID, fresh.SourceID, fresh.Title, fresh.Handle, fresh.URL, fresh.Price,
				fresh.Currency, fresh.IsHero, fresh.ImageURL, fresh.Vendor, fresh.ProductType, fresh.Description,
			).Scan(&row.ID)
			if err != nil {
				return nil, fmt.Errorf("insert product %q: %w", fresh.Title, err)
			}
			persisted = append(persisted, row)
			continue
		}

		merged := mergeProductRow(old, fresh)
		if _, err := q.Exec(ctx,
			`UPDATE products SET source_id = NULLIF($1,''), title = $2, handle = NULLIF($3,''), url = NULLIF($4,''), price = $5,
			 currency = NULLIF($6,''), is_hero = $7, image_url = NULLIF($8,''), vendor = NULLIF($9,''), product_type = NULLIF($10,''), description = NULLIF($11,'')
			 WHERE id = $12`,
			merged.SourceID, merged.Title, merged.Handle, merged.URL, merged.Price,
			merged.Currency, merged.IsHero, merged.ImageURL, merged.Vendor, merged.ProductType, merged.Description,
			merged.ID,
		); err != nil {
			return nil, fmt.Errorf("update product %q: %w", merged.Title, err)
		}
		persisted = append(persisted, merged)
	}
	return persisted, nil
}

func (s *Store) reconcilePolicies(ctx context.Context, q querier, brandID int64, policies map[brand.PolicyKind]brand.Policy) (map[brand.PolicyKind]brand.Policy, error) {
	rows, err := q.Query(ctx,
		`SELECT kind, COALESCE(url,''), content FROM policies WHERE brand_id = $1`,
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	existing := make(map[brand.PolicyKind]brand.Policy)
	for rows.Next() {
		var p brand.Policy
		if err := rows.Scan(&p.Kind, &p.URL, &p.Content); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		existing[p.Kind] = p
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}

	persisted := make(map[brand.PolicyKind]brand.Policy, len(policies))
	for _, kind := range brand.PolicyKinds() {
		fresh, ok := policies[kind]
		if !ok {
			continue
		}
		old, found := existing[kind]
		if !found {
			if _, err := q.Exec(ctx,
				`INSERT INTO policies (brand_id, kind, url, content) VALUES ($1, $2, NULLIF($3,''), $4)`,
				brandID, kind, fresh.URL, fresh.Content,
			); err != nil {
				return nil, fmt.Errorf("insert policy %s: %w", kind, err)
			}
			persisted[kind] = fresh
			continue
		}
		merged := mergePolicyRow(old, fresh)
		if _, err := q.Exec(ctx,
			`UPDATE policies SET url = NULLIF($1,''), content = $2 WHERE brand_id = $3 AND kind = $4`,
			merged.URL, merged.Content, brandID, kind,
		); err != nil {
			return nil, fmt.Errorf("update policy %s: %w", kind, err)
		}
		persisted[kind] = merged
	}
	return persisted, nil
}

// replaceFAQs deletes and reinserts the full FAQ set: FAQ pages are volatile
// content best treated as a clean snapshot.
func (s *Store) replaceFAQs(ctx context.Context, q querier, brandID int64, faqs []brand.FAQ) error {
	if _, err := q.Exec(ctx, `DELETE FROM faqs WHERE brand_id = $1`, brandID); err != nil {
		return fmt.Errorf("delete faqs: %w", err)
	}
	for _, faq := range faqs {
		if _, err := q.Exec(ctx,
			`INSERT INTO faqs (brand_id, question, answer, url) VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''))`,
			brandID, faq.Question, faq.Answer, faq.URL,
		); err != nil {
			return fmt.Errorf("insert faq: %w", err)
		}
	}
	return nil
}

func (s *Store) reconcileSocials(ctx context.Context, q querier, brandID int64, socials map[brand.SocialPlatform]brand.SocialHandle) error {
	platforms := make([]string, 0, len(socials))
	for platform := range socials {
		platforms = append(platforms, string(platform))
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		handle := socials[brand.SocialPlatform(platform)]
		if _, err := q.Exec(ctx,
			`INSERT INTO social_handles (brand_id, platform, url) VALUES ($1, $2, $3)
			 ON CONFLICT (brand_id, platform) DO UPDATE SET url = EXCLUDED.url`,
			brandID, platform, handle.URL,
		); err != nil {
			return fmt.Errorf("upsert social %s: %w", platform, err)
		}
	}
	return nil
}

func (s *Store) reconcileContacts(ctx context.Context, q querier, brandID int64, contacts map[brand.ContactKind]brand.ContactDetail) error {
	kinds := make([]string, 0, len(contacts))
	for kind := range contacts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		detail := contacts[brand.ContactKind(kind)]
		if _, err := q.Exec(ctx,
			`INSERT INTO contact_details (brand_id, kind, value) VALUES ($1, $2, $3)
			 ON CONFLICT (brand_id, kind) DO UPDATE SET value = EXCLUDED.value`,
			brandID, kind, detail.Value,
		); err != nil {
			return fmt.Errorf("upsert contact %s: %w", kind, err)
		}
	}
	return nil
}

func (s *Store) reconcileLinks(ctx context.Context, q querier, brandID int64, links map[brand.LinkKind]brand.ImportantLink) (map[brand.LinkKind]brand.ImportantLink, error) {
	rows, err := q.Query(ctx,
		`SELECT kind, url, COALESCE(label,'') FROM important_links WHERE brand_id = $1`,
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	existing := make(map[brand.LinkKind]brand.ImportantLink)
	for rows.Next() {
		var l brand.ImportantLink
		if err := rows.Scan(&l.Kind, &l.URL, &l.Label); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan link: %w", err)
		}
		existing[l.Kind] = l
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	persisted := make(map[brand.LinkKind]brand.ImportantLink, len(links))
	for _, kind := range brand.LinkKinds() {
		fresh, ok := links[kind]
		if !ok {
			continue
		}
		old, found := existing[kind]
		if !found {
			if _, err := q.Exec(ctx,
				`INSERT INTO important_links (brand_id, kind, url, label) VALUES ($1, $2, $3, NULLIF($4,''))`,
				brandID, kind, fresh.URL, fresh.Label,
			); err != nil {
				return nil, fmt.Errorf("insert link %s: %w", kind, err)
			}
			persisted[kind] = fresh
			continue
		}
		merged := mergeLinkRow(old, fresh)
		if _, err := q.Exec(ctx,
			`UPDATE important_links SET url = $1, label = NULLIF($2,'') WHERE brand_id = $3 AND kind = $4`,
			merged.URL, merged.Label, brandID, kind,
		); err != nil {
			return nil, fmt.Errorf("update link %s: %w", kind, err)
		}
		persisted[kind] = merged
	}
	return persisted, nil
}
