package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shopsight/shopsight/internal/brand"
)

// GetProfile hydrates a full brand profile by id.
func (s *Store) GetProfile(ctx context.Context, brandID int64) (brand.Profile, error) {
	var profile brand.Profile
	err := s.db.QueryRow(ctx,
		`SELECT id, website_url, COALESCE(name,''), COALESCE(about,''), updated_at FROM brands WHERE id = $1`,
		brandID,
	).Scan(&profile.ID, &profile.WebsiteURL, &profile.Name, &profile.About, &profile.ScrapedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return brand.Profile{}, ErrNotFound
	}
	if err != nil {
		return brand.Profile{}, fmt.Errorf("load brand %d: %w", brandID, err)
	}
	if err := s.hydrate(ctx, &profile); err != nil {
		return brand.Profile{}, err
	}
	return profile, nil
}

// GetProfileByURL hydrates a full brand profile by its canonical website URL.
func (s *Store) GetProfileByURL(ctx context.Context, websiteURL string) (brand.Profile, error) {
	var id int64
	err := s.db.QueryRow(ctx, `SELECT id FROM brands WHERE website_url = $1`, websiteURL).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return brand.Profile{}, ErrNotFound
	}
	if err != nil {
		return brand.Profile{}, fmt.Errorf("find brand %q: %w", websiteURL, err)
	}
	return s.GetProfile(ctx, id)
}

func (s *Store) hydrate(ctx context.Context, profile *brand.Profile) error {
	if err := s.loadProducts(ctx, profile); err != nil {
		return err
	}
	if err := s.loadPolicies(ctx, profile); err != nil {
		return err
	}
	if err := s.loadFAQs(ctx, profile); err != nil {
		return err
	}
	if err := s.loadSocials(ctx, profile); err != nil {
		return err
	}
	if err := s.loadContacts(ctx, profile); err != nil {
		return err
	}
	return s.loadLinks(ctx, profile)
}

func (s *Store) loadProducts(ctx context.Context, profile *brand.Profile) error {
	rows, err := s.db.Query(ctx,
		`SELECT id, COALESCE(source_id,''), title, COALESCE(handle,''), COALESCE(url,''), price,
		 COALESCE(currency,''), is_hero, COALESCE(image_url,''), COALESCE(vendor,''), COALESCE(product_type,''), COALESCE(description,'')
		 FROM products WHERE brand_id = $1 ORDER BY id`,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p brand.Product
		if err := rows.Scan(&p.ID, &p.SourceID, &p.Title, &p.Handle, &p.URL, &p.Price,
			&p.Currency, &p.IsHero, &p.ImageURL, &p.Vendor, &p.ProductType, &p.Description); err != nil {
			return fmt.Errorf("scan product: %w", err)
		}
		profile.Products = append(profile.Products, p)
		if p.IsHero {
			profile.HeroProducts = append(profile.HeroProducts, p)
		}
	}
	return rows.Err()
}

func (s *Store) loadPolicies(ctx context.Context, profile *brand.Profile) error {
	rows, err := s.db.Query(ctx,
		`SELECT kind, COALESCE(url,''), content FROM policies WHERE brand_id = $1`,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("load policies: %w", err)
	}
	defer rows.Close()

	profile.Policies = make(map[brand.PolicyKind]brand.Policy)
	for rows.Next() {
		var p brand.Policy
		if err := rows.Scan(&p.Kind, &p.URL, &p.Content); err != nil {
			return fmt.Errorf("scan policy: %w", err)
		}
		profile.Policies[p.Kind] = p
	}
	return rows.Err()
}

func (s *Store) loadFAQs(ctx context.Context, profile *brand.Profile) error {
	rows, err := s.db.Query(ctx,
		`SELECT question, COALESCE(answer,''), COALESCE(url,'') FROM faqs WHERE brand_id = $1 ORDER BY id`,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("load faqs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f brand.FAQ
		if err := rows.Scan(&f.Question, &f.Answer, &f.URL); err != nil {
			return fmt.Errorf("scan faq: %w", err)
		}
		profile.FAQs = append(profile.FAQs, f)
	}
	return rows.Err()
}

func (s *Store) loadSocials(ctx context.Context, profile *brand.Profile) error {
	rows, err := s.db.Query(ctx,
		`SELECT platform, url FROM social_handles WHERE brand_id = $1`,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("load socials: %w", err)
	}
	defer rows.Close()

	profile.Socials = make(map[brand.SocialPlatform]brand.SocialHandle)
	for rows.Next() {
		var h brand.SocialHandle
		if err := rows.Scan(&h.Platform, &h.URL); err != nil {
			return fmt.Errorf("scan social: %w", err)
		}
		profile.Socials[h.Platform] = h
	}
	return rows.Err()
}

func (s *Store) loadContacts(ctx context.Context, profile *brand.Profile) error {
	rows, err := s.db.Query(ctx,
		`SELECT kind, value FROM contact_details WHERE brand_id = $1`,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	defer rows.Close()

	profile.Contacts = make(map[brand.ContactKind]brand.ContactDetail)
	for rows.Next() {
		var c brand.ContactDetail
		if err := rows.Scan(&c.Kind, &c.Value); err != nil {
			return fmt.Errorf("scan contact: %w", err)
		}
		profile.Contacts[c.Kind] = c
	}
	return rows.Err()
}

func (s *Store) loadLinks(ctx context.Context, profile *brand.Profile) error {
	rows, err := s.db.Query(ctx,
		`SELECT kind, url, COALESCE(label,'') FROM important_links WHERE brand_id = $1`,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("load links: %w", err)
	}
	defer rows.Close()

	profile.Links = make(map[brand.LinkKind]brand.ImportantLink)
	for rows.Next() {
		var l brand.ImportantLink
		if err := rows.Scan(&l.Kind, &l.URL, &l.Label); err != nil {
			return fmt.Errorf("scan link: %w", err)
		}
		profile.Links[l.Kind] = l
	}
	return rows.Err()
}
