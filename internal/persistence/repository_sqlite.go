package persistence

import (
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dungeonaut-arena/internal/models"
)

// playerRecord is the persisted lifetime counter row for a username.
type playerRecord struct {
	ID       uint   `gorm:"primarykey"`
	Username string `gorm:"uniqueIndex"`
	Wins     int
	Losses   int
	Matches  int
}

// leaderboardRecord is one finished match on the public board.
type leaderboardRecord struct {
	ID        uint `gorm:"primarykey"`
	Winner    string
	Loser     string
	Turns     int `gorm:"index"`
	QueueType string
	Date      time.Time
}

type sqliteRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the SQLite database at the given path and
// keeps the schema updated via AutoMigrate.
func OpenSQLite(dataSourceName string) (Repository, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&playerRecord{}, &leaderboardRecord{}); err != nil {
		return nil, err
	}
	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) RecordResult(entry models.LeaderboardEntry, maxEntries int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		rec := leaderboardRecord{
			Winner:    entry.Winner,
			Loser:     entry.Loser,
			Turns:     entry.Turns,
			QueueType: string(entry.QueueType),
			Date:      entry.Date,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}

		if err := bumpPlayer(tx, entry.Winner, true); err != nil {
			return err
		}
		if err := bumpPlayer(tx, entry.Loser, false); err != nil {
			return err
		}

		if maxEntries > 0 {
			var keep []uint
			if err := tx.Model(&leaderboardRecord{}).
				Order("turns asc, date asc").
				Limit(maxEntries).
				Pluck("id", &keep).Error; err != nil {
				return err
			}
			if len(keep) == maxEntries {
				if err := tx.Where("id NOT IN ?", keep).
					Delete(&leaderboardRecord{}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func bumpPlayer(tx *gorm.DB, username string, won bool) error {
	var rec playerRecord
	err := tx.Where("username = ?", username).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rec = playerRecord{Username: username}
	} else if err != nil {
		return err
	}
	rec.Matches++
	if won {
		rec.Wins++
	} else {
		rec.Losses++
	}
	return tx.Save(&rec).Error
}

func (r *sqliteRepository) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	var recs []leaderboardRecord
	q := r.db.Order("turns asc, date asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, models.LeaderboardEntry{
			Winner:    rec.Winner,
			Loser:     rec.Loser,
			Turns:     rec.Turns,
			QueueType: models.QueueType(rec.QueueType),
			Date:      rec.Date,
		})
	}
	return entries, nil
}

func (r *sqliteRepository) PlayerStats(username string) (models.PlayerStats, error) {
	var rec playerRecord
	err := r.db.Where("username = ?", username).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PlayerStats{}, nil
	}
	if err != nil {
		return models.PlayerStats{}, err
	}
	return models.PlayerStats{Wins: rec.Wins, Losses: rec.Losses, Matches: rec.Matches}, nil
}

func (r *sqliteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
