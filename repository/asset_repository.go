package repository

import (
	"database/sql"
	"fmt"
	"time"

	"cutroom/db"
	"cutroom/model"
)

// AssetRepository defines the interface for media asset metadata.
type AssetRepository interface {
	CreateAsset(asset *model.Asset) error
	GetAssetByID(id string) (*model.Asset, error)
	GetAssetByObjectPath(userID int64, objectPath string) (*model.Asset, error)
	GetAllAssetsByUserID(userID int64) ([]*model.Asset, error)
	DeleteAsset(id string) error
}

// mysqlAssetRepository implements AssetRepository for MySQL.
type mysqlAssetRepository struct {
	DB *sql.DB
}

// NewMySQLAssetRepository creates a new instance of mysqlAssetRepository.
func NewMySQLAssetRepository() AssetRepository {
	return &mysqlAssetRepository{DB: db.DB}
}

// CreateAsset adds a new asset row.
func (r *mysqlAssetRepository) CreateAsset(asset *model.Asset) error {
	query := `INSERT INTO assets (id, user_id, name, kind, object_path, duration, width, height, size_bytes, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for CreateAsset: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.Exec(asset.ID, asset.UserID, asset.Name, asset.Kind, asset.ObjectPath,
		asset.Duration, asset.Width, asset.Height, asset.SizeBytes, now, now)
	if err != nil {
		return fmt.Errorf("failed to execute CreateAsset: %w", err)
	}
	return nil
}

// GetAssetByID retrieves an asset by its ID.
func (r *mysqlAssetRepository) GetAssetByID(id string) (*model.Asset, error) {
	query := `SELECT id, user_id, name, kind, object_path, duration, width, height, size_bytes, created_at, updated_at
	           FROM assets WHERE id = ?`
	return r.scanAsset(r.DB.QueryRow(query, id))
}

// GetAssetByObjectPath looks an asset up by its storage key, used by the
// import watcher to skip files already registered.
func (r *mysqlAssetRepository) GetAssetByObjectPath(userID int64, objectPath string) (*model.Asset, error) {
	query := `SELECT id, user_id, name, kind, object_path, duration, width, height, size_bytes, created_at, updated_at
	           FROM assets WHERE user_id = ? AND object_path = ?`
	return r.scanAsset(r.DB.QueryRow(query, userID, objectPath))
}

// GetAllAssetsByUserID retrieves all assets belonging to a user.
func (r *mysqlAssetRepository) GetAllAssetsByUserID(userID int64) ([]*model.Asset, error) {
	query := `SELECT id, user_id, name, kind, object_path, duration, width, height, size_bytes, created_at, updated_at
	           FROM assets WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	assets := make([]*model.Asset, 0)
	for rows.Next() {
		asset := &model.Asset{}
		err := rows.Scan(&asset.ID, &asset.UserID, &asset.Name, &asset.Kind, &asset.ObjectPath,
			&asset.Duration, &asset.Width, &asset.Height, &asset.SizeBytes, &asset.CreatedAt, &asset.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset in GetAllAssetsByUserID: %w", err)
		}
		assets = append(assets, asset)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllAssetsByUserID: %w", err)
	}

	return assets, nil
}

// DeleteAsset removes an asset row.
func (r *mysqlAssetRepository) DeleteAsset(id string) error {
	_, err := r.DB.Exec("DELETE FROM assets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete asset %s: %w", id, err)
	}
	return nil
}

func (r *mysqlAssetRepository) scanAsset(row *sql.Row) (*model.Asset, error) {
	asset := &model.Asset{}
	err := row.Scan(&asset.ID, &asset.UserID, &asset.Name, &asset.Kind, &asset.ObjectPath,
		&asset.Duration, &asset.Width, &asset.Height, &asset.SizeBytes, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Asset not found
		}
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}
	return asset, nil
}
