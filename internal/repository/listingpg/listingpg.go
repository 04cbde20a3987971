package listingpg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/UnendingLoop/AccountStore/internal/model"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

// CreateListing inserts one listing row. ID and CreatedAt are assigned here -
// callers treat the id as an opaque store-assigned value.
func (p PostgresRepo) CreateListing(ctx context.Context, l *model.Listing) error {
	l.ID = uuid.New()
	now := time.Now().UTC()
	l.CreatedAt = &now

	query := `INSERT INTO listings (id, title, price, description, main_acc, image_url, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := p.DB.ExecContext(ctx, query, l.ID, l.Title, l.Price, l.Description, l.MainAcc, l.ImageURL, l.CreatedAt); err != nil {
		return fmt.Errorf("%w: insert listing: %v", model.ErrRelational, err)
	}
	return nil
}

func (p PostgresRepo) CreateListingImage(ctx context.Context, img *model.ListingImage) error {
	now := time.Now().UTC()
	img.CreatedAt = &now

	query := `INSERT INTO listing_images (listing_id, image_url, created_at)
	VALUES ($1, $2, $3)
	RETURNING id`

	if err := p.DB.QueryRowContext(ctx, query, img.ListingID, img.ImageURL, img.CreatedAt).Scan(&img.ID); err != nil {
		return fmt.Errorf("%w: insert listing image: %v", model.ErrRelational, err)
	}
	return nil
}

func (p PostgresRepo) Get(ctx context.Context, id string) (*model.Listing, error) {
	query := `SELECT id, title, price, description, main_acc, image_url, created_at
	FROM listings
	WHERE id = $1`
	var l model.Listing

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&l.ID,
		&l.Title,
		&l.Price,
		&l.Description,
		&l.MainAcc,
		&l.ImageURL,
		&l.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrListingNotFound
		default:
			return nil, fmt.Errorf("%w: get listing: %v", model.ErrRelational, err)
		}
	}
	return &l, nil
}

func (p PostgresRepo) GetList(ctx context.Context, req *model.ListRequest) ([]model.Listing, error) {
	query := fmt.Sprintf(`SELECT id, title, price, description, main_acc, image_url, created_at
	FROM listings
	ORDER BY %s %s
	LIMIT $1
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list listings: %v", model.ErrRelational, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	listings := make([]model.Listing, 0, req.Limit)
	for rows.Next() {
		var l model.Listing
		if err := rows.Scan(&l.ID,
			&l.Title,
			&l.Price,
			&l.Description,
			&l.MainAcc,
			&l.ImageURL,
			&l.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan listing: %v", model.ErrRelational, err)
		}
		listings = append(listings, l)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: list listings: %v", model.ErrRelational, rows.Err())
	}

	return listings, nil
}

// Update patches listing metadata only. Image ownership is immutable by
// design - the lifecycle orchestrator is the only writer of image columns.
func (p PostgresRepo) Update(ctx context.Context, id string, upd *model.ListingUpdate) error {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)

	appendSet := func(column string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		appendSet("title", *upd.Title)
	}
	if upd.Price != nil {
		appendSet("price", *upd.Price)
	}
	if upd.Description != nil {
		appendSet("description", *upd.Description)
	}
	if upd.MainAcc != nil {
		appendSet("main_acc", *upd.MainAcc)
	}

	if len(set) == 0 {
		return fmt.Errorf("%w: nothing to update", model.ErrIncorrectQuery)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE listings SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	res, err := p.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update listing: %v", model.ErrRelational, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update listing: %v", model.ErrRelational, err)
	}
	if affected == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

// ImageRefs returns gallery references for one listing ordered by creation
// time. The primary reference lives on the listing row itself.
func (p PostgresRepo) ImageRefs(ctx context.Context, id string) ([]string, error) {
	query := `SELECT image_url
	FROM listing_images
	WHERE listing_id = $1
	ORDER BY created_at`

	return p.scanRefs(ctx, query, id)
}

func (p PostgresRepo) DeleteImages(ctx context.Context, id string) error {
	query := `DELETE FROM listing_images
	WHERE listing_id = $1`

	if _, err := p.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%w: delete listing images: %v", model.ErrRelational, err)
	}
	return nil
}

func (p PostgresRepo) DeleteListing(ctx context.Context, id string) error {
	query := `DELETE FROM listings
	WHERE id = $1`

	res, err := p.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: delete listing: %v", model.ErrRelational, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete listing: %v", model.ErrRelational, err)
	}
	if affected == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

// AllImageRefs returns every reference known to the relational store,
// primary and gallery together. Used by the orphan sweeper.
func (p PostgresRepo) AllImageRefs(ctx context.Context) ([]string, error) {
	query := `SELECT image_url FROM listings WHERE image_url <> ''
	UNION
	SELECT image_url FROM listing_images`

	return p.scanRefs(ctx, query)
}

func (p PostgresRepo) scanRefs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch image refs: %v", model.ErrRelational, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	var refs []string
	for rows.Next() {
		ref := ""
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("%w: scan image ref: %v", model.ErrRelational, err)
		}
		refs = append(refs, ref)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: fetch image refs: %v", model.ErrRelational, rows.Err())
	}

	return refs, nil
}
