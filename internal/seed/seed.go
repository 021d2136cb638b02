package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	apikeydomain "github.com/smallbiznis/faktura/internal/apikey/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"

	// devAPIKey is only ever inserted outside production.
	devAPIKey = "fk_dev_0000000000000000"
)

// EnsureDefaultOrg seeds the default organization with billing settings so
// a fresh database is usable immediately.
func EnsureDefaultOrg(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureDefaultOrgTx(ctx, tx, node)
		return err
	})
}

// EnsureDefaultOrgAndKey additionally seeds a well-known API key for local
// development and integration tests.
func EnsureDefaultOrgAndKey(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orgID, err := ensureDefaultOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureDevKeyTx(ctx, tx, node, orgID)
	})
}

func ensureDefaultOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (snowflake.ID, error) {
	var orgID snowflake.ID
	err := tx.WithContext(ctx).
		Table("organizations").
		Select("id").
		Where("slug = ?", defaultOrgSlug).
		Scan(&orgID).Error
	if err != nil {
		return 0, err
	}
	if orgID != 0 {
		return orgID, nil
	}

	orgID = node.Generate()
	now := time.Now().UTC()
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO organizations (id, name, slug, country, created_at, updated_at)
		 VALUES (?, ?, ?, 'CH', ?, ?)`,
		orgID, defaultOrgName, defaultOrgSlug, now, now,
	).Error; err != nil {
		return 0, err
	}

	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO billing_settings (org_id, country, default_currency, default_tax_rate, invoice_prefix, created_at, updated_at)
		 VALUES (?, 'CH', 'CHF', 8.1, 'INV-', ?, ?)`,
		orgID, now, now,
	).Error; err != nil {
		return 0, err
	}
	return orgID, nil
}

func ensureDevKeyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, orgID snowflake.ID) error {
	hash := apikeydomain.HashAPIKey(strings.TrimSpace(devAPIKey))

	var existing int64
	if err := tx.WithContext(ctx).
		Table("api_keys").
		Where("key_hash = ?", hash).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	return tx.WithContext(ctx).Exec(
		`INSERT INTO api_keys (id, org_id, key_hash, is_active, created_at)
		 VALUES (?, ?, ?, true, ?)`,
		node.Generate(), orgID, hash, time.Now().UTC(),
	).Error
}
